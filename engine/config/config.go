// Package config loads the explorer settings from an optional YAML file, environment
// variables and explicitly set command line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/liquidity-explorer/explorer/engine/config/network"
	"github.com/liquidity-explorer/explorer/pkg/logger"
)

// Output formats supported by the commands.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// RPCConfig tunes how the RPC client retries and times out.
type RPCConfig struct {
	RetryAttempts uint          `mapstructure:"retry_attempts" yaml:"retry_attempts"` // Attempts per RPC before failing over, at least 1
	RetryDelay    time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"`       // Delay between attempts
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"`               // Timeout of a single RPC call
}

// Config wraps the entire configuration of the explorer.
type Config struct {
	RPCURL       string    `mapstructure:"rpc_url" yaml:"rpc_url"`             // A single RPC endpoint. When set it replaces the network's RPCs.
	Network      string    `mapstructure:"network" yaml:"network"`             // Name of the network to connect to
	NetworksFile string    `mapstructure:"networks_file" yaml:"networks_file"` // Optional networks manifest merged over the built-in networks
	LogLevel     string    `mapstructure:"log_level" yaml:"log_level"`
	Output       string    `mapstructure:"output" yaml:"output"`
	RPC          RPCConfig `mapstructure:"rpc" yaml:"rpc"`
}

// Validate checks that the loaded values are usable.
func (c *Config) Validate() error {
	var errs []error

	if c.Network == "" && c.RPCURL == "" {
		errs = append(errs, errors.New("either a network or an RPC URL is required"))
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.Output != OutputText && c.Output != OutputJSON {
		errs = append(errs, fmt.Errorf("invalid output format %q, must be %q or %q", c.Output, OutputText, OutputJSON))
	}
	if c.RPC.RetryAttempts == 0 {
		errs = append(errs, errors.New("rpc retry attempts must be at least 1"))
	}
	if c.RPC.Timeout <= 0 {
		errs = append(errs, errors.New("rpc timeout must be positive"))
	}
	if c.RPC.RetryDelay < 0 {
		errs = append(errs, errors.New("rpc retry delay must not be negative"))
	}

	return errors.Join(errs...)
}

// Load loads the config from the file path, falling back to env vars if the file does not exist.
// If the file exists, any env vars that are set will override the values loaded from the file.
// Flags in flags that were set explicitly override both. flags may be nil.
func Load(filePath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	if filePath != "" {
		v.SetConfigFile(filePath)

		if _, err := os.Stat(filePath); !errors.Is(err, fs.ErrNotExist) {
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file %s: %w", filePath, err)
			}
		}
	}

	applyFlags(v, flags)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return cfg, nil
}

// Defaults for every setting.
const (
	DefaultLogLevel      = "warn"
	DefaultRetryAttempts = 1
	DefaultRetryDelay    = time.Second
	DefaultTimeout       = 10 * time.Second
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("network", network.DefaultNetwork)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("output", OutputText)
	v.SetDefault("rpc.retry_attempts", DefaultRetryAttempts)
	v.SetDefault("rpc.retry_delay", DefaultRetryDelay)
	v.SetDefault("rpc.timeout", DefaultTimeout)
}

var (
	// envBindings maps config keys to the environment variables that can provide them.
	envBindings = map[string][]string{
		"rpc_url":            {"EXPLORER_RPC_URL"},
		"network":            {"EXPLORER_NETWORK"},
		"networks_file":      {"EXPLORER_NETWORKS_FILE"},
		"log_level":          {"EXPLORER_LOG_LEVEL"},
		"output":             {"EXPLORER_OUTPUT"},
		"rpc.retry_attempts": {"EXPLORER_RPC_RETRY_ATTEMPTS"},
		"rpc.retry_delay":    {"EXPLORER_RPC_RETRY_DELAY"},
		"rpc.timeout":        {"EXPLORER_RPC_TIMEOUT"},
	}

	// flagBindings maps config keys to the command line flags that can override them.
	flagBindings = map[string]string{
		"rpc_url":            "rpc-url",
		"network":            "network",
		"networks_file":      "networks-file",
		"log_level":          "log-level",
		"output":             "output",
		"rpc.retry_attempts": "retry-attempts",
		"rpc.retry_delay":    "retry-delay",
		"rpc.timeout":        "timeout",
	}
)

// bindEnvs binds the environment variables to the viper instance.
func bindEnvs(v *viper.Viper) error {
	for key, envs := range envBindings {
		// Prepend the env key to the start of the arguments
		inputs := slices.Insert(slices.Clone(envs), 0, key)

		if err := v.BindEnv(inputs...); err != nil {
			return err
		}
	}

	return nil
}

// applyFlags overrides keys with the flags the user set explicitly. Flag defaults never
// override file or env values.
func applyFlags(v *viper.Viper, flags *pflag.FlagSet) {
	if flags == nil {
		return
	}

	for key, name := range flagBindings {
		if f := flags.Lookup(name); f != nil && f.Changed {
			v.Set(key, f.Value.String())
		}
	}
}
