package application_test

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"acuity_offchain_worker/internal/core/application"
	"acuity_offchain_worker/internal/core/application/mocks/mock_client"
	"acuity_offchain_worker/internal/core/domain"
	applogger "acuity_offchain_worker/internal/logger"
	"acuity_offchain_worker/pkg/offchain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testInfo = domain.ChainInfo{Chain: "Acuity", NodeName: "acuity-node", NodeVersion: "1.0.0"}

func newChainService(t *testing.T, queryTimeout time.Duration) (*application.ChainService, *mock_client.ChainClient) {
	t.Helper()
	mockChain := mock_client.NewChainClient(t)

	service, err := application.NewChainService(mockChain, applogger.NewDiscardLogger(), application.Config{
		DialTimeout:   time.Second,
		QueryTimeout:  queryTimeout,
		TokenDecimals: 18,
	})
	require.NoError(t, err)
	return service, mockChain
}

// startReady starts the service against a mock that connects successfully and waits for readiness.
func startReady(t *testing.T, service *application.ChainService, mockChain *mock_client.ChainClient) {
	t.Helper()
	mockChain.On("Connect", mock.Anything).Return(nil).Once()
	mockChain.On("SystemInfo", mock.Anything).Return(testInfo, nil).Once()
	mockChain.On("Close").Return(nil).Once()

	require.NoError(t, service.Start(context.Background()))
	t.Cleanup(func() { _ = service.Stop(context.Background()) })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, service.WaitReady(ctx))
}

func mustBalance(t *testing.T, s string) domain.Balance {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok)
	b, err := domain.NewBalanceFromBigInt(v)
	require.NoError(t, err)
	return b
}

func TestNewChainService_Validation(t *testing.T) {
	cfg := application.Config{DialTimeout: time.Second, QueryTimeout: time.Second}

	_, err := application.NewChainService(mock_client.NewChainClient(t), nil, cfg)
	assert.Error(t, err)

	_, err = application.NewChainService(nil, applogger.NewDiscardLogger(), cfg)
	assert.Error(t, err)

	_, err = application.NewChainService(mock_client.NewChainClient(t), applogger.NewDiscardLogger(), application.Config{})
	assert.Error(t, err)
}

func TestChainService_Payload_ScalesIssuance(t *testing.T) {
	tests := []struct {
		name     string
		issuance string
		want     string
	}{
		{name: "5000 whole units", issuance: "5000000000000000000000", want: "5000"},
		{name: "Below one unit truncates", issuance: "1", want: "0"},
		{name: "Zero", issuance: "0", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, mockChain := newChainService(t, time.Second)
			startReady(t, service, mockChain)

			mockChain.On("TotalIssuance", mock.Anything).Return(mustBalance(t, tt.issuance), nil).Once()

			got, err := service.Payload(context.Background())
			require.NoError(t, err)
			assert.Equal(t, offchain.TotalIssuanceResponse{TotalIssuance: tt.want}, got)
		})
	}
}

func TestChainService_Payload_NotReadyBeforeStart(t *testing.T) {
	service, _ := newChainService(t, time.Second)

	_, err := service.Payload(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrChainNotReady))
}

func TestChainService_Payload_NotReadyWhileConnecting(t *testing.T) {
	service, mockChain := newChainService(t, time.Second)

	release := make(chan struct{})
	mockChain.On("Connect", mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(nil).Once()
	mockChain.On("SystemInfo", mock.Anything).Return(testInfo, nil).Once()
	mockChain.On("Close").Return(nil).Once()

	require.NoError(t, service.Start(context.Background()))

	_, err := service.Payload(context.Background())
	assert.True(t, errors.Is(err, domain.ErrChainNotReady))

	close(release)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, service.WaitReady(ctx))
	require.NoError(t, service.Stop(context.Background()))
}

func TestChainService_ConnectFailure(t *testing.T) {
	service, mockChain := newChainService(t, time.Second)
	dialErr := errors.New("connection refused")

	mockChain.On("Connect", mock.Anything).Return(dialErr).Once()
	mockChain.On("Close").Return(nil).Once()

	require.NoError(t, service.Start(context.Background()))
	t.Cleanup(func() { _ = service.Stop(context.Background()) })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := service.WaitReady(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrChainUnavailable))
	assert.Contains(t, err.Error(), "connection refused")

	_, err = service.Payload(context.Background())
	assert.True(t, errors.Is(err, domain.ErrChainUnavailable))
}

func TestChainService_SystemInfoFailureStillReady(t *testing.T) {
	service, mockChain := newChainService(t, time.Second)

	mockChain.On("Connect", mock.Anything).Return(nil).Once()
	mockChain.On("SystemInfo", mock.Anything).Return(domain.ChainInfo{}, errors.New("system_name failed")).Once()
	mockChain.On("Close").Return(nil).Once()

	require.NoError(t, service.Start(context.Background()))
	t.Cleanup(func() { _ = service.Stop(context.Background()) })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, service.WaitReady(ctx))
}

func TestChainService_Payload_QueryTimeout(t *testing.T) {
	service, mockChain := newChainService(t, 20*time.Millisecond)
	startReady(t, service, mockChain)

	mockChain.On("TotalIssuance", mock.Anything).
		Return(func(ctx context.Context) (domain.Balance, error) {
			<-ctx.Done()
			return domain.Balance{}, ctx.Err()
		}).Once()

	_, err := service.Payload(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrQueryTimeout))
}

func TestChainService_Payload_QueryError(t *testing.T) {
	service, mockChain := newChainService(t, time.Second)
	startReady(t, service, mockChain)

	mockChain.On("TotalIssuance", mock.Anything).
		Return(domain.Balance{}, domain.ErrInvalidStorageValue).Once()

	_, err := service.Payload(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidStorageValue))
	assert.False(t, errors.Is(err, domain.ErrQueryTimeout))
}

func TestChainService_StartTwice(t *testing.T) {
	service, mockChain := newChainService(t, time.Second)
	startReady(t, service, mockChain)

	assert.Error(t, service.Start(context.Background()))
}

func TestChainService_StopCancelsPendingConnect(t *testing.T) {
	service, mockChain := newChainService(t, time.Second)

	mockChain.On("Connect", mock.Anything).
		Return(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}).Once()
	mockChain.On("Close").Return(nil).Once()

	require.NoError(t, service.Start(context.Background()))
	require.NoError(t, service.Stop(context.Background()))
	assert.NoError(t, service.Stop(context.Background()))

	_, err := service.Payload(context.Background())
	assert.True(t, errors.Is(err, domain.ErrChainUnavailable))
}

func TestChainService_StopTimeoutStillClosesClient(t *testing.T) {
	service, mockChain := newChainService(t, time.Second)

	release := make(chan struct{})
	defer close(release)
	mockChain.On("Connect", mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(errors.New("dial aborted")).Once()
	mockChain.On("Close").Return(nil).Once()

	require.NoError(t, service.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := service.Stop(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	mockChain.AssertCalled(t, "Close")

	_, err = service.Payload(context.Background())
	assert.True(t, errors.Is(err, domain.ErrChainUnavailable))
}

func TestChainService_StopWithoutStart(t *testing.T) {
	service, _ := newChainService(t, time.Second)
	assert.NoError(t, service.Stop(context.Background()))
}
