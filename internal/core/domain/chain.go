// Package domain defines the core domain models and business logic entities.
package domain

import "errors"

var (
	// ErrChainNotReady indicates that the node connection has not finished its handshake yet.
	ErrChainNotReady = errors.New("chain connection not ready")

	// ErrChainUnavailable indicates that the node connection failed or was closed.
	ErrChainUnavailable = errors.New("chain connection unavailable")

	// ErrQueryTimeout indicates that a node query did not complete within its deadline.
	ErrQueryTimeout = errors.New("chain query timed out")

	// ErrInvalidStorageValue indicates that a storage value returned by the node could not be decoded.
	ErrInvalidStorageValue = errors.New("invalid storage value")
)

// ChainInfo describes the node the worker is connected to.
type ChainInfo struct {
	Chain       string
	NodeName    string
	NodeVersion string
}
