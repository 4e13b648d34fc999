package application

import (
	"context"
	"errors"

	"acuity_offchain_worker/internal/logger"
	"acuity_offchain_worker/pkg/offchain"
)

// StaticService serves a constant block number and has no external dependencies.
type StaticService struct {
	blockNumber int64
	logger      logger.AppLogger
}

// Compile-time check to ensure StaticService implements offchain.Worker
var _ offchain.Worker = (*StaticService)(nil)

// NewStaticService creates a new instance of StaticService.
func NewStaticService(blockNumber int64, appLogger logger.AppLogger) (*StaticService, error) {
	if appLogger == nil {
		return nil, errors.New("NewStaticService: appLogger is nil")
	}
	return &StaticService{
		blockNumber: blockNumber,
		logger:      appLogger.With("mode", "static"),
	}, nil
}

// Payload returns the configured block number.
func (s *StaticService) Payload(_ context.Context) (any, error) {
	return offchain.BlockNumberResponse{BlockNumber: s.blockNumber}, nil
}

// Start is a no-op; the static worker is ready as soon as it exists.
func (s *StaticService) Start(_ context.Context) error {
	s.logger.Info("Static worker started", "blockNumber", s.blockNumber)
	return nil
}

// WaitReady returns immediately.
func (s *StaticService) WaitReady(_ context.Context) error {
	return nil
}

// Stop is a no-op.
func (s *StaticService) Stop(_ context.Context) error {
	return nil
}
