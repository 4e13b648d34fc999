// Package application contains the core application service logic for the off-chain worker.
package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"acuity_offchain_worker/internal/core/domain"
	"acuity_offchain_worker/internal/core/domain/client"
	"acuity_offchain_worker/internal/logger"
	"acuity_offchain_worker/internal/metrics"
	"acuity_offchain_worker/pkg/offchain"
)

// errStopped fails the readiness gate when the worker stops before the node connection resolves.
var errStopped = errors.New("worker stopped")

// Config holds configuration needed by the ChainService.
type Config struct {
	DialTimeout   time.Duration
	QueryTimeout  time.Duration
	TokenDecimals uint
}

// ChainService implements the offchain.Worker interface on top of a Substrate node connection.
type ChainService struct {
	chain     client.ChainClient
	logger    logger.AppLogger
	cfg       Config
	readiness *Readiness

	mu          sync.Mutex
	started     bool
	stopped     bool
	cancel      context.CancelFunc
	connectDone chan struct{}
}

// Compile-time check to ensure ChainService implements offchain.Worker
var _ offchain.Worker = (*ChainService)(nil)

// NewChainService creates a new instance of ChainService.
func NewChainService(
	chainClient client.ChainClient,
	appLogger logger.AppLogger,
	cfg Config,
) (*ChainService, error) {
	if appLogger == nil {
		return nil, errors.New("NewChainService: appLogger is nil")
	}
	if chainClient == nil {
		appLogger.Error("NewChainService: chainClient is nil")
		return nil, errors.New("NewChainService: chainClient is nil")
	}
	if cfg.DialTimeout <= 0 || cfg.QueryTimeout <= 0 {
		appLogger.Error("NewChainService: timeouts must be positive",
			"dialTimeout", cfg.DialTimeout, "queryTimeout", cfg.QueryTimeout)
		return nil, errors.New("NewChainService: timeouts must be positive")
	}

	metrics.SetChainReady(false)
	return &ChainService{
		chain:     chainClient,
		logger:    appLogger.With("mode", "chain"),
		cfg:       cfg,
		readiness: NewReadiness(),
	}, nil
}

// Start launches the node connection in the background and returns immediately.
func (s *ChainService) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		s.logger.Info("Chain worker is already running.")
		return fmt.Errorf("service already running")
	}
	s.started = true

	connectCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.connectDone = make(chan struct{})

	go s.connect(connectCtx)
	return nil
}

// connect dials the node, logs its identity and resolves the readiness gate.
func (s *ChainService) connect(ctx context.Context) {
	defer close(s.connectDone)

	dialCtx, cancel := context.WithTimeout(ctx, s.cfg.DialTimeout)
	defer cancel()

	s.logger.Info("Connecting to node...")
	if err := s.chain.Connect(dialCtx); err != nil {
		s.logger.Error("Failed to connect to node", "error", err)
		s.readiness.Fail(err)
		return
	}

	info, err := s.chain.SystemInfo(dialCtx)
	if err != nil {
		s.logger.Warn("Connected to node but failed to fetch system info", "error", err)
	} else {
		s.logger.Info("Connected to chain",
			"chain", info.Chain,
			"nodeName", info.NodeName,
			"nodeVersion", info.NodeVersion,
		)
	}

	if s.readiness.Open() {
		metrics.SetChainReady(true)
	}
}

// WaitReady blocks until the node connection is ready or has failed.
func (s *ChainService) WaitReady(ctx context.Context) error {
	return s.readiness.Wait(ctx)
}

// Payload queries the total issuance and scales it down to whole units.
// It fails fast with domain.ErrChainNotReady while the connection is pending.
func (s *ChainService) Payload(ctx context.Context) (any, error) {
	if err := s.readiness.Check(); err != nil {
		return nil, err
	}

	queryCtx, cancel := context.WithTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	issuance, err := s.chain.TotalIssuance(queryCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", domain.ErrQueryTimeout, err)
		}
		return nil, fmt.Errorf("failed to query total issuance: %w", err)
	}

	return offchain.TotalIssuanceResponse{
		TotalIssuance: issuance.ScaleDown(s.cfg.TokenDecimals).String(),
	}, nil
}

// Stop cancels a pending connection attempt and closes the node connection.
func (s *ChainService) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started || s.stopped {
		s.mu.Unlock()
		s.logger.Info("Chain worker is not running or already stopped.")
		return nil
	}
	s.stopped = true
	s.mu.Unlock()

	s.logger.Info("Stopping chain worker...")
	s.cancel()

	var waitErr error
	select {
	case <-s.connectDone:
	case <-ctx.Done():
		// The client is closed anyway; a late Connect sees it closed and drops its socket.
		waitErr = ctx.Err()
		s.logger.Error("Chain worker stop timed out waiting for connect.", "error", waitErr)
	}

	s.readiness.Fail(errStopped)
	metrics.SetChainReady(false)

	if err := s.chain.Close(); err != nil {
		s.logger.Warn("Failed to close node connection", "error", err)
		return fmt.Errorf("failed to close node connection: %w", err)
	}
	if waitErr != nil {
		return waitErr
	}
	s.logger.Info("Chain worker stopped gracefully.")
	return nil
}
