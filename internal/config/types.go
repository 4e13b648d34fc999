package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Default config values.
const (
	DefaultConfigFile                     = "config/config.yml"
	DefaultMode                           = ModeChain
	DefaultServerPort                     = ":4000"
	DefaultLoggerLevel                    = LogLevelInfo
	DefaultLoggerFormat                   = LogFormatJSON
	DefaultServerReadTimeoutSeconds       = 30
	DefaultServerWriteTimeoutSeconds      = 30
	DefaultServerIdleTimeoutSeconds       = 60
	DefaultServerReadHeaderTimeoutSeconds = 30
	DefaultServerShutdownTimeoutSeconds   = 15
	DefaultRateLimitBurst                 = 20
	DefaultChainNodeURL                   = "wss://acuity.social:9961"
	DefaultChainDialTimeoutSeconds        = 30
	DefaultChainQueryTimeoutSeconds       = 10
	DefaultChainTokenDecimals             = 18
	DefaultStaticBlockNumber              = 1234
)

// Mode selects which payload the responder serves.
type Mode string

// Supported worker modes.
const (
	// ModeStatic serves a constant block number.
	ModeStatic Mode = "static"
	// ModeChain serves the total issuance read from the node.
	ModeChain Mode = "chain"
)

// LogLevel defines the type for logger levels.
type LogLevel string

// LogFormat defines the type for logger output formats.
type LogFormat string

// Defines the supported logger levels.
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Defines the supported logger output formats.
const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

// Config holds all configuration for the application.
type Config struct {
	Mode    Mode          `yaml:"mode"`
	Server  ServerConfig  `yaml:"server"`
	Logger  LoggerConfig  `yaml:"logger"`
	Chain   ChainConfig   `yaml:"chain"`
	Static  StaticConfig  `yaml:"static"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ServerConfig holds all configuration related to the HTTP server.
type ServerConfig struct {
	Port                     string  `yaml:"port"`
	ReadTimeoutSeconds       int     `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds      int     `yaml:"write_timeout_seconds"`
	IdleTimeoutSeconds       int     `yaml:"idle_timeout_seconds"`
	ReadHeaderTimeoutSeconds int     `yaml:"read_header_timeout_seconds"`
	ShutdownTimeoutSeconds   int     `yaml:"shutdown_timeout_seconds"`
	RateLimitRPS             float64 `yaml:"rate_limit_rps"`
	RateLimitBurst           int     `yaml:"rate_limit_burst"`
}

// LoggerConfig holds all configuration related to logging.
type LoggerConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// ChainConfig holds all configuration related to the Substrate node connection.
type ChainConfig struct {
	NodeURL             string `yaml:"node_url"`
	DialTimeoutSeconds  int    `yaml:"dial_timeout_seconds"`
	QueryTimeoutSeconds int    `yaml:"query_timeout_seconds"`
	TokenDecimals       int    `yaml:"token_decimals"`
	WaitForReady        bool   `yaml:"wait_for_ready"`
}

// StaticConfig holds the payload served in static mode.
type StaticConfig struct {
	BlockNumber int64 `yaml:"block_number"`
}

// MetricsConfig holds the Prometheus exporter configuration. An empty address disables it.
type MetricsConfig struct {
	ListenAddress string `yaml:"listen_address"`
}

// Validate checks if the configuration values are valid.
func (c *Config) Validate() error {
	if c.Mode != ModeStatic && c.Mode != ModeChain {
		return fmt.Errorf("invalid mode (config key: mode): '%s', must be one of: static, chain", c.Mode)
	}

	if c.Server.Port == "" || (strings.HasPrefix(c.Server.Port, ":") && len(c.Server.Port) == 1) {
		return errors.New("server port (config key: server.port) cannot be empty or just ':'")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(string(c.Logger.Level))] {
		return fmt.Errorf(
			"invalid logger level (config key: logger.level): '%s', must be one of: debug, info, warn, error",
			c.Logger.Level,
		)
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(string(c.Logger.Format))] {
		return fmt.Errorf(
			"invalid logger format (config key: logger.format): '%s', must be one of: json, text",
			c.Logger.Format,
		)
	}

	if c.Server.ReadTimeoutSeconds < 0 {
		return errors.New("server read timeout seconds (config key: server.read_timeout_seconds) cannot be negative")
	}
	if c.Server.WriteTimeoutSeconds < 0 {
		return errors.New("server write timeout seconds (config key: server.write_timeout_seconds) cannot be negative")
	}
	if c.Server.IdleTimeoutSeconds < 0 {
		return errors.New("server idle timeout seconds (config key: server.idle_timeout_seconds) cannot be negative")
	}
	if c.Server.ReadHeaderTimeoutSeconds < 0 {
		return errors.New(
			"server read header timeout seconds (config key: server.read_header_timeout_seconds) cannot be negative",
		)
	}
	if c.Server.ShutdownTimeoutSeconds <= 0 {
		return errors.New("server shutdown timeout seconds (config key: server.shutdown_timeout_seconds) must be greater than 0")
	}
	if c.Server.RateLimitRPS < 0 {
		return errors.New("server rate limit rps (config key: server.rate_limit_rps) cannot be negative")
	}
	if c.Server.RateLimitRPS > 0 && c.Server.RateLimitBurst <= 0 {
		return errors.New("server rate limit burst (config key: server.rate_limit_burst) must be greater than 0 when rate limiting is enabled")
	}

	if c.Mode == ModeStatic {
		return nil
	}

	if c.Chain.NodeURL == "" {
		return errors.New("chain node URL (config key: chain.node_url) cannot be empty")
	}
	u, err := url.Parse(c.Chain.NodeURL)
	if err != nil {
		return fmt.Errorf("invalid chain node URL (config key: chain.node_url): %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("chain node URL (config key: chain.node_url) must use ws or wss scheme, got '%s'", u.Scheme)
	}
	if c.Chain.DialTimeoutSeconds <= 0 {
		return errors.New("chain dial timeout seconds (config key: chain.dial_timeout_seconds) must be greater than 0")
	}
	if c.Chain.QueryTimeoutSeconds <= 0 {
		return errors.New("chain query timeout seconds (config key: chain.query_timeout_seconds) must be greater than 0")
	}
	if c.Chain.TokenDecimals < 0 || c.Chain.TokenDecimals > 38 {
		return errors.New("chain token decimals (config key: chain.token_decimals) must be between 0 and 38")
	}

	return nil
}
