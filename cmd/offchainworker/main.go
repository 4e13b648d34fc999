package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"acuity_offchain_worker/internal/adapters/restapi"
	"acuity_offchain_worker/internal/adapters/rpc"
	"acuity_offchain_worker/internal/config"
	"acuity_offchain_worker/internal/core/application"
	"acuity_offchain_worker/internal/logger"
	"acuity_offchain_worker/internal/metrics"
	"acuity_offchain_worker/pkg/offchain"

	"github.com/gorilla/websocket"
)

// main is entry point of application.
func main() {
	configFile := flag.String("config", "", "Path to YAML configuration file (default: config/config.yml)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	appLogger, err := logger.NewAppLogger(cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	appLogger.Debug("Configuration loaded", "mode", cfg.Mode, "port", cfg.Server.Port)

	worker, err := newWorker(cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to create worker", "error", err)
		os.Exit(1)
	}

	apiServer, err := restapi.NewServer(worker, appLogger, &cfg.Server)
	if err != nil {
		appLogger.Error("Failed to create API server", "error", err)
		os.Exit(1)
	}

	var metricsServer *metrics.Server
	if cfg.Metrics.ListenAddress != "" {
		metricsServer = metrics.NewServer(cfg.Metrics.ListenAddress, appLogger)
	}

	if err := run(cfg, appLogger, worker, apiServer, metricsServer); err != nil {
		appLogger.Error("Application stopped with error", "error", err)
		os.Exit(1)
	}
	appLogger.Info("Application shut down gracefully.")
}

// newWorker builds the worker for the configured mode.
func newWorker(cfg *config.Config, appLogger logger.AppLogger) (offchain.Worker, error) {
	if cfg.Mode == config.ModeStatic {
		return application.NewStaticService(cfg.Static.BlockNumber, appLogger)
	}

	dialTimeout := time.Duration(cfg.Chain.DialTimeoutSeconds) * time.Second
	dialer := &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: dialTimeout,
	}
	chainClient := rpc.NewSubstrateNodeAdapter(cfg.Chain.NodeURL, dialer, appLogger)

	return application.NewChainService(chainClient, appLogger, application.Config{
		DialTimeout:   dialTimeout,
		QueryTimeout:  time.Duration(cfg.Chain.QueryTimeoutSeconds) * time.Second,
		TokenDecimals: uint(cfg.Chain.TokenDecimals),
	})
}

// run starts the worker and servers, then blocks until a signal or a fatal server error.
func run(
	cfg *config.Config,
	appLogger logger.AppLogger,
	worker offchain.Worker,
	apiServer *restapi.Server,
	metricsServer *metrics.Server,
) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := worker.Start(ctx); err != nil {
		return fmt.Errorf("worker start error: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := worker.Stop(stopCtx); err != nil {
			appLogger.Error("Worker shutdown error", "error", err)
		}
	}()

	if cfg.Mode == config.ModeChain && cfg.Chain.WaitForReady {
		appLogger.Info("Waiting for chain connection before accepting requests...")
		if err := worker.WaitReady(ctx); err != nil {
			return fmt.Errorf("chain connection did not become ready: %w", err)
		}
	}

	errChan := make(chan error, 2)
	go func() {
		if errServ := apiServer.Start(); errServ != nil && !errors.Is(errServ, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", errServ)
		}
	}()
	if metricsServer != nil {
		go func() {
			if errServ := metricsServer.Start(); errServ != nil {
				errChan <- fmt.Errorf("metrics server error: %w", errServ)
			}
		}()
	}

	var runErr error
	select {
	case runErr = <-errChan:
		appLogger.Error("Shutting down due to error", "error", runErr)
	case <-ctx.Done():
		appLogger.Info("Shutting down due to OS signal...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server shutdown error", "error", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("Metrics server shutdown error", "error", err)
		}
	}
	return runErr
}
