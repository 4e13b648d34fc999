package rpc

// DropTransport closes the raw network connection under the adapter without a close handshake.
func DropTransport(a *SubstrateNodeAdapter) {
	a.mu.Lock()
	conn := a.conn
	a.mu.Unlock()
	if conn != nil {
		_ = conn.UnderlyingConn().Close()
	}
}
