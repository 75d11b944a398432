package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/liquidity-explorer/explorer/chain/evm/rpcclient"
	"github.com/liquidity-explorer/explorer/engine/config"
	"github.com/liquidity-explorer/explorer/engine/config/network"
	"github.com/liquidity-explorer/explorer/explorer"
	"github.com/liquidity-explorer/explorer/pkg/logger"
)

// ConfigLoaderFunc loads the settings from an optional file, the environment and the
// explicitly set flags.
type ConfigLoaderFunc func(filePath string, flags *pflag.FlagSet) (*config.Config, error)

// ClientLoaderFunc builds the explorer client for the loaded settings. The returned func
// releases the client's connections.
type ClientLoaderFunc func(cfg *config.Config, lggr logger.Logger) (*explorer.Client, func(), error)

// LoggerLoaderFunc builds the logger used when Config.Logger is nil.
type LoggerLoaderFunc func(cfg *config.Config) (logger.Logger, error)

// defaultConfigLoader is the production implementation that loads config.
func defaultConfigLoader(filePath string, flags *pflag.FlagSet) (*config.Config, error) {
	return config.Load(filePath, flags)
}

// defaultClientLoader is the production implementation that dials the configured RPCs.
func defaultClientLoader(cfg *config.Config, lggr logger.Logger) (*explorer.Client, func(), error) {
	rpcCfg, err := rpcConfigFor(cfg)
	if err != nil {
		return nil, nil, err
	}

	mc, err := rpcclient.NewMultiClient(lggr, rpcCfg,
		rpcclient.WithRetryConfig(cfg.RPC.RetryAttempts, cfg.RPC.RetryDelay, cfg.RPC.Timeout),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to %s: %w", rpcCfg.ChainName, err)
	}

	return explorer.New(mc, lggr), mc.Close, nil
}

// defaultLoggerLoader is the production implementation that logs to stderr at the
// configured level.
func defaultLoggerLoader(cfg *config.Config) (logger.Logger, error) {
	lvl, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	return (&logger.Config{Level: lvl}).New()
}

// rpcConfigFor resolves the RPCs to dial. An explicit RPC URL wins over the network manifest.
func rpcConfigFor(cfg *config.Config) (rpcclient.RPCConfig, error) {
	if cfg.RPCURL != "" {
		rpc := rpcclient.RPC{Name: "rpc-url"}
		if strings.HasPrefix(cfg.RPCURL, "ws://") || strings.HasPrefix(cfg.RPCURL, "wss://") {
			rpc.WSURL = cfg.RPCURL
		} else {
			rpc.HTTPURL = cfg.RPCURL
		}

		return rpcclient.RPCConfig{ChainName: "custom", RPCs: []rpcclient.RPC{rpc}}, nil
	}

	networks := network.Default()
	if cfg.NetworksFile != "" {
		var err error
		if networks, err = network.Load(cfg.NetworksFile); err != nil {
			return rpcclient.RPCConfig{}, err
		}
	}

	n, err := networks.NetworkByName(cfg.Network)
	if err != nil {
		return rpcclient.RPCConfig{}, err
	}

	return n.RPCConfig()
}

// Deps holds the injectable dependencies for the explorer commands.
// All fields are optional; nil values will use production defaults.
type Deps struct {
	// ConfigLoader loads the settings.
	// Default: config.Load
	ConfigLoader ConfigLoaderFunc

	// ClientLoader builds the explorer client.
	// Default: a rpcclient.MultiClient over the selected network's RPCs
	ClientLoader ClientLoaderFunc

	// LoggerLoader builds the logger when none is configured.
	// Default: a zap production logger writing to stderr
	LoggerLoader LoggerLoaderFunc
}

// applyDefaults fills in nil dependencies with production defaults.
func (d *Deps) applyDefaults() {
	if d.ConfigLoader == nil {
		d.ConfigLoader = defaultConfigLoader
	}
	if d.ClientLoader == nil {
		d.ClientLoader = defaultClientLoader
	}
	if d.LoggerLoader == nil {
		d.LoggerLoader = defaultLoggerLoader
	}
}
