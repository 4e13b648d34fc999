// Package offchain defines the public API contracts for the Acuity off-chain worker.
package offchain

import (
	"context"
)

// BlockNumberResponse is the payload served in static mode.
type BlockNumberResponse struct {
	BlockNumber int64 `json:"blockNumber"`
}

// TotalIssuanceResponse is the payload served in chain mode.
// The value is a decimal string because it can exceed the range of a JSON number.
type TotalIssuanceResponse struct {
	TotalIssuance string `json:"totalIssuance"`
}

// Worker defines the public interface of the off-chain worker service.
type Worker interface {
	// Payload computes the JSON payload for one request.
	Payload(ctx context.Context) (payload any, err error)

	// Start initiates any background work the worker needs, without blocking on it.
	Start(ctx context.Context) (err error)

	// WaitReady blocks until the worker can serve payloads, it failed to become ready, or ctx ends.
	WaitReady(ctx context.Context) (err error)

	// Stop releases the worker's resources.
	Stop(ctx context.Context) (err error)
}
