// Package client defines interfaces for external service clients, such as a Substrate node client.
//
//go:generate mockery --name=ChainClient --output=../../application/mocks/mock_client --outpkg=mock_client
package client

import (
	"context"

	"acuity_offchain_worker/internal/core/domain"
)

// ChainClient defines the interface for interacting with a Substrate node.
type ChainClient interface {
	// Connect establishes the connection to the node. It must succeed before any query is issued.
	Connect(ctx context.Context) error

	// SystemInfo fetches the chain name, node name and node version.
	SystemInfo(ctx context.Context) (domain.ChainInfo, error)

	// TotalIssuance fetches the total issuance of the chain's native balance.
	TotalIssuance(ctx context.Context) (domain.Balance, error)

	// Close tears the connection down. Pending and future queries fail.
	Close() error
}
