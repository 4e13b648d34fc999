// Package config implements application configuration loading and management.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default returns a Config populated with the built-in defaults.
func Default() *Config {
	return &Config{
		Mode: DefaultMode,
		Server: ServerConfig{
			Port:                     DefaultServerPort,
			ReadTimeoutSeconds:       DefaultServerReadTimeoutSeconds,
			WriteTimeoutSeconds:      DefaultServerWriteTimeoutSeconds,
			IdleTimeoutSeconds:       DefaultServerIdleTimeoutSeconds,
			ReadHeaderTimeoutSeconds: DefaultServerReadHeaderTimeoutSeconds,
			ShutdownTimeoutSeconds:   DefaultServerShutdownTimeoutSeconds,
			RateLimitBurst:           DefaultRateLimitBurst,
		},
		Logger: LoggerConfig{
			Level:  DefaultLoggerLevel,
			Format: DefaultLoggerFormat,
		},
		Chain: ChainConfig{
			NodeURL:             DefaultChainNodeURL,
			DialTimeoutSeconds:  DefaultChainDialTimeoutSeconds,
			QueryTimeoutSeconds: DefaultChainQueryTimeoutSeconds,
			TokenDecimals:       DefaultChainTokenDecimals,
		},
		Static: StaticConfig{
			BlockNumber: DefaultStaticBlockNumber,
		},
	}
}

// LoadConfig loads the configuration from a YAML file and validates it.
// A missing default file is not an error: the built-in defaults are used.
func LoadConfig(filePath string) (*Config, error) {
	cfg := Default()

	loadPath := filePath
	if loadPath == "" {
		loadPath = DefaultConfigFile
	}

	fileBytes, err := os.ReadFile(loadPath)
	if err != nil {
		if os.IsNotExist(err) && (filePath == "" || filePath == DefaultConfigFile) {
			return cfg, cfg.Validate()
		}
		return nil, fmt.Errorf("failed to read config file '%s': %w", loadPath, err)
	}

	type partialConfig struct {
		Mode    Mode           `yaml:"mode"`
		Server  *ServerConfig  `yaml:"server"`
		Logger  *LoggerConfig  `yaml:"logger"`
		Chain   *ChainConfig   `yaml:"chain"`
		Static  *StaticConfig  `yaml:"static"`
		Metrics *MetricsConfig `yaml:"metrics"`
	}
	var pCfg partialConfig

	if err := yaml.Unmarshal(fileBytes, &pCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", loadPath, err)
	}

	if pCfg.Mode != "" {
		cfg.Mode = pCfg.Mode
	}
	if pCfg.Server != nil {
		mergeServer(&cfg.Server, pCfg.Server)
	}
	if pCfg.Logger != nil {
		if pCfg.Logger.Level != "" {
			cfg.Logger.Level = pCfg.Logger.Level
		}
		if pCfg.Logger.Format != "" {
			cfg.Logger.Format = pCfg.Logger.Format
		}
	}
	if pCfg.Chain != nil {
		mergeChain(&cfg.Chain, pCfg.Chain)
	}
	if pCfg.Static != nil && pCfg.Static.BlockNumber != 0 {
		cfg.Static.BlockNumber = pCfg.Static.BlockNumber
	}
	if pCfg.Metrics != nil {
		cfg.Metrics.ListenAddress = pCfg.Metrics.ListenAddress
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file '%s': %w", loadPath, err)
	}
	return cfg, nil
}

// mergeServer copies every non-zero field of src over dst.
func mergeServer(dst, src *ServerConfig) {
	if src.Port != "" {
		dst.Port = src.Port
	}
	if src.ReadTimeoutSeconds != 0 {
		dst.ReadTimeoutSeconds = src.ReadTimeoutSeconds
	}
	if src.WriteTimeoutSeconds != 0 {
		dst.WriteTimeoutSeconds = src.WriteTimeoutSeconds
	}
	if src.IdleTimeoutSeconds != 0 {
		dst.IdleTimeoutSeconds = src.IdleTimeoutSeconds
	}
	if src.ReadHeaderTimeoutSeconds != 0 {
		dst.ReadHeaderTimeoutSeconds = src.ReadHeaderTimeoutSeconds
	}
	if src.ShutdownTimeoutSeconds != 0 {
		dst.ShutdownTimeoutSeconds = src.ShutdownTimeoutSeconds
	}
	if src.RateLimitRPS != 0 {
		dst.RateLimitRPS = src.RateLimitRPS
	}
	if src.RateLimitBurst != 0 {
		dst.RateLimitBurst = src.RateLimitBurst
	}
}

// mergeChain copies every non-zero field of src over dst.
func mergeChain(dst, src *ChainConfig) {
	if src.NodeURL != "" {
		dst.NodeURL = src.NodeURL
	}
	if src.DialTimeoutSeconds != 0 {
		dst.DialTimeoutSeconds = src.DialTimeoutSeconds
	}
	if src.QueryTimeoutSeconds != 0 {
		dst.QueryTimeoutSeconds = src.QueryTimeoutSeconds
	}
	if src.TokenDecimals != 0 {
		dst.TokenDecimals = src.TokenDecimals
	}
	dst.WaitForReady = src.WaitForReady
}
