package restapi_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"syscall"
	"testing"
	"time"

	"acuity_offchain_worker/internal/adapters/restapi"
	"acuity_offchain_worker/internal/config"
	applogger "acuity_offchain_worker/internal/logger"
	"acuity_offchain_worker/pkg/offchain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for concurrent log writes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestServer_ListenAnnouncesPortAndServes(t *testing.T) {
	var logs syncBuffer
	l, err := applogger.NewAppLoggerTo(config.LoggerConfig{Level: config.LogLevelInfo, Format: config.LogFormatText}, &logs)
	require.NoError(t, err)

	server, err := restapi.NewServer(
		&stubWorker{payload: offchain.BlockNumberResponse{BlockNumber: 1234}},
		l,
		&config.ServerConfig{Port: "127.0.0.1:0"},
	)
	require.NoError(t, err)
	require.NoError(t, server.Listen())

	_, port, err := net.SplitHostPort(server.Addr())
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "Acuity off-chain worker listening on port "+port+".")

	serveErr := make(chan error, 1)
	go func() { serveErr <- server.Start() }()

	resp, err := http.Get("http://" + server.Addr() + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, `{"blockNumber":1234}`, string(body))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, server.Shutdown(ctx))
	assert.NoError(t, <-serveErr)
}

func TestServer_SecondBindFailsWithAddressInUse(t *testing.T) {
	first, err := restapi.NewServer(&stubWorker{}, applogger.NewDiscardLogger(), &config.ServerConfig{Port: "127.0.0.1:0"})
	require.NoError(t, err)
	require.NoError(t, first.Listen())
	t.Cleanup(func() { _ = first.Shutdown(context.Background()) })

	go func() { _ = first.Start() }()

	second, err := restapi.NewServer(&stubWorker{}, applogger.NewDiscardLogger(), &config.ServerConfig{Port: first.Addr()})
	require.NoError(t, err)

	err = second.Listen()
	require.Error(t, err)
	assert.True(t, errors.Is(err, syscall.EADDRINUSE), "got %v", err)

	assert.Error(t, first.Listen(), "listening twice on the same server must fail")
}
