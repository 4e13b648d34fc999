// Package rpc implements a Substrate client using JSON-RPC over a persistent WebSocket connection.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"acuity_offchain_worker/internal/core/domain"
	"acuity_offchain_worker/internal/core/domain/client"
	"acuity_offchain_worker/internal/logger"
	"acuity_offchain_worker/internal/metrics"
	"acuity_offchain_worker/internal/utils"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrNotConnected is returned when a query is issued before Connect succeeded.
	ErrNotConnected = fmt.Errorf("not connected to node: %w", domain.ErrChainNotReady)

	// ErrConnectionClosed is returned for queries pending on, or issued after, a closed connection.
	ErrConnectionClosed = fmt.Errorf("node connection closed: %w", domain.ErrChainUnavailable)

	// ErrAlreadyConnected is returned when Connect is called twice.
	ErrAlreadyConnected = errors.New("already connected to node")
)

const closeWriteTimeout = time.Second

// SubstrateNodeAdapter implements the client.ChainClient interface by making JSON-RPC calls to a Substrate node.
type SubstrateNodeAdapter struct {
	endpoint  string
	dialer    *websocket.Dialer
	logger    logger.AppLogger
	requestID atomic.Uint64

	// writeMu serialises writes; gorilla connections allow one concurrent writer.
	writeMu sync.Mutex

	mu       sync.Mutex
	conn     *websocket.Conn
	pending  map[uint64]chan *JSONRPCResponse
	closeErr error

	closeOnce sync.Once
	done      chan struct{}
}

// Compile-time check to ensure SubstrateNodeAdapter implements client.ChainClient
var _ client.ChainClient = (*SubstrateNodeAdapter)(nil)

// NewSubstrateNodeAdapter creates a new RPC adapter for the given ws:// or wss:// endpoint.
func NewSubstrateNodeAdapter(endpoint string, dialer *websocket.Dialer, appLogger logger.AppLogger) *SubstrateNodeAdapter {
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	if appLogger == nil {
		appLogger = logger.NewDiscardLogger()
	}
	return &SubstrateNodeAdapter{
		endpoint: endpoint,
		dialer:   dialer,
		logger:   appLogger.With("component", "substrate_rpc", "endpoint", endpoint),
		pending:  make(map[uint64]chan *JSONRPCResponse),
		done:     make(chan struct{}),
	}
}

// Connect dials the node and starts the response reader.
func (a *SubstrateNodeAdapter) Connect(ctx context.Context) error {
	if err := a.checkDialable(); err != nil {
		return err
	}

	a.logger.Debug("Dialing node")
	conn, resp, err := a.dialer.DialContext(ctx, a.endpoint, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("failed to dial node %s: %w", a.endpoint, err)
	}

	a.mu.Lock()
	if a.closeErr != nil || a.conn != nil {
		dialErr := a.closeErr
		if dialErr == nil {
			dialErr = ErrAlreadyConnected
		}
		a.mu.Unlock()
		_ = conn.Close()
		return dialErr
	}
	a.conn = conn
	a.mu.Unlock()

	go a.readLoop(conn)
	a.logger.Info("Connected to node")
	return nil
}

func (a *SubstrateNodeAdapter) checkDialable() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closeErr != nil {
		return a.closeErr
	}
	if a.conn != nil {
		return ErrAlreadyConnected
	}
	return nil
}

// SystemInfo fetches chain name, node name and node version in parallel.
func (a *SubstrateNodeAdapter) SystemInfo(ctx context.Context) (domain.ChainInfo, error) {
	var info domain.ChainInfo
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		info.Chain, err = a.callString(gctx, "system_chain")
		return err
	})
	g.Go(func() (err error) {
		info.NodeName, err = a.callString(gctx, "system_name")
		return err
	})
	g.Go(func() (err error) {
		info.NodeVersion, err = a.callString(gctx, "system_version")
		return err
	})

	if err := g.Wait(); err != nil {
		return domain.ChainInfo{}, err
	}
	return info, nil
}

// TotalIssuance reads Balances.TotalIssuance. An unset value decodes to zero.
func (a *SubstrateNodeAdapter) TotalIssuance(ctx context.Context) (domain.Balance, error) {
	const method = "state_getStorage"
	key := StorageKey("Balances", "TotalIssuance")

	respBody, err := a.call(ctx, method, []interface{}{key})
	if err != nil {
		return domain.Balance{}, err
	}

	if isNullResult(respBody.Result) {
		a.logger.Debug("TotalIssuance storage is empty, defaulting to zero", "key", key)
		return domain.Balance{}, nil
	}

	var resultStr string
	if err := json.Unmarshal(respBody.Result, &resultStr); err != nil {
		return domain.Balance{}, fmt.Errorf("%w: failed to unmarshal storage result: %v", domain.ErrInvalidStorageValue, err)
	}

	raw, err := utils.HexToBytes(resultStr)
	if err != nil {
		return domain.Balance{}, fmt.Errorf("%w: %v", domain.ErrInvalidStorageValue, err)
	}

	value, err := decodeU128(raw)
	if err != nil {
		return domain.Balance{}, err
	}
	return domain.NewBalanceFromBigInt(value)
}

// Close sends a close frame, tears down the socket and fails every pending call.
func (a *SubstrateNodeAdapter) Close() error {
	var err error
	a.closeOnce.Do(func() {
		a.fail(ErrConnectionClosed)

		a.mu.Lock()
		conn := a.conn
		a.mu.Unlock()
		if conn == nil {
			return
		}

		a.writeMu.Lock()
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(closeWriteTimeout),
		)
		a.writeMu.Unlock()

		err = conn.Close()
		<-a.done
		a.logger.Info("Node connection closed")
	})
	return err
}

// callString performs a call whose result is a JSON string.
func (a *SubstrateNodeAdapter) callString(ctx context.Context, method string) (string, error) {
	respBody, err := a.call(ctx, method, nil)
	if err != nil {
		return "", err
	}
	var s string
	if err := json.Unmarshal(respBody.Result, &s); err != nil {
		return "", fmt.Errorf("failed to unmarshal %s result: %w", method, err)
	}
	return s, nil
}

// call wraps doRPC with metrics and method context.
func (a *SubstrateNodeAdapter) call(ctx context.Context, method string, params []interface{}) (*JSONRPCResponse, error) {
	started := time.Now()
	respBody, err := a.doRPC(ctx, method, params)
	metrics.ObserveRPC(method, started, err)
	if err != nil {
		return nil, fmt.Errorf("%s RPC call failed: %w", method, err)
	}
	return respBody, nil
}

// doRPC sends one request and waits for the matching response.
func (a *SubstrateNodeAdapter) doRPC(
	ctx context.Context,
	method string,
	params []interface{},
) (*JSONRPCResponse, error) {
	if params == nil {
		params = []interface{}{}
	}
	reqBody := JSONRPCRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      a.requestID.Add(1),
	}

	jsonReqBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal RPC request: %w", err)
	}

	// An expired deadline would become a sticky write error on the shared connection.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	respChan := make(chan *JSONRPCResponse, 1)

	a.mu.Lock()
	if a.closeErr != nil {
		closeErr := a.closeErr
		a.mu.Unlock()
		return nil, closeErr
	}
	if a.conn == nil {
		a.mu.Unlock()
		return nil, ErrNotConnected
	}
	conn := a.conn
	a.pending[reqBody.ID] = respChan
	a.mu.Unlock()

	a.writeMu.Lock()
	deadline, _ := ctx.Deadline()
	_ = conn.SetWriteDeadline(deadline)
	err = conn.WriteMessage(websocket.TextMessage, jsonReqBody)
	a.writeMu.Unlock()
	if err != nil {
		// gorilla write errors are permanent for the connection.
		sendErr := fmt.Errorf("%w: failed to send RPC request: %v", ErrConnectionClosed, err)
		a.fail(sendErr)
		_ = conn.Close()
		a.logger.Warn("Node connection broken on write", "error", err)
		return nil, sendErr
	}

	select {
	case rpcResp, ok := <-respChan:
		if !ok {
			return nil, a.closeError()
		}
		if rpcResp.Error != nil {
			return nil, rpcResp.Error
		}
		return rpcResp, nil
	case <-ctx.Done():
		a.forget(reqBody.ID)
		return nil, ctx.Err()
	}
}

// readLoop dispatches responses to their waiting callers until the socket fails.
func (a *SubstrateNodeAdapter) readLoop(conn *websocket.Conn) {
	defer close(a.done)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			a.fail(fmt.Errorf("%w: %v", ErrConnectionClosed, err))
			a.logger.Warn("Node connection read loop stopped", "error", err)
			return
		}

		var rpcResp JSONRPCResponse
		if err := json.Unmarshal(data, &rpcResp); err != nil {
			a.logger.Warn("Discarding malformed RPC message", "error", err)
			continue
		}
		if rpcResp.ID == nil {
			a.logger.Debug("Ignoring RPC notification", "method", rpcResp.Method)
			continue
		}

		a.mu.Lock()
		respChan, ok := a.pending[*rpcResp.ID]
		delete(a.pending, *rpcResp.ID)
		a.mu.Unlock()

		if !ok {
			a.logger.Debug("Ignoring RPC response without a waiting caller", "id", *rpcResp.ID)
			continue
		}
		respChan <- &rpcResp
	}
}

// fail records the first terminal error and releases every pending caller.
func (a *SubstrateNodeAdapter) fail(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closeErr == nil {
		a.closeErr = err
		metrics.SetChainReady(false)
	}
	for id, respChan := range a.pending {
		close(respChan)
		delete(a.pending, id)
	}
}

func (a *SubstrateNodeAdapter) forget(id uint64) {
	a.mu.Lock()
	delete(a.pending, id)
	a.mu.Unlock()
}

func (a *SubstrateNodeAdapter) closeError() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closeErr == nil {
		return ErrConnectionClosed
	}
	return a.closeErr
}

func isNullResult(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
