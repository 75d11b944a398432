// Package commands provides the explorer CLI.
//
// The root command is built with NewCommand and carries the connection flags shared by every
// subcommand:
//
//	cmd := commands.NewCommand(commands.Config{
//	    Version: version,
//	    Deps:    commands.Deps{...}, // inject fakes for testing
//	})
//	return cmd.ExecuteContext(ctx)
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/liquidity-explorer/explorer/engine/commands/flags"
	"github.com/liquidity-explorer/explorer/engine/commands/text"
	"github.com/liquidity-explorer/explorer/engine/config"
	"github.com/liquidity-explorer/explorer/engine/config/network"
	"github.com/liquidity-explorer/explorer/explorer"
	"github.com/liquidity-explorer/explorer/pkg/logger"
)

var (
	rootShort = "Ethereum Liquidity Explorer"

	rootLong = text.LongDesc(`
		Reads ERC20 token metadata and balances from an EVM chain.

		The chain is reached through the RPCs of a named network (Optimism by default) or a
		single endpoint given with --rpc-url. Settings can also come from a config file and
		EXPLORER_* environment variables; explicitly set flags take precedence over both.
	`)
)

// Config holds the configuration for the explorer commands.
type Config struct {
	// Logger is the logger to use for command output. If nil, a production logger at the
	// configured level is built when a command runs.
	Logger logger.Logger

	// Version is reported by --version. Defaults to "dev".
	Version string

	// Deps holds optional dependencies that can be overridden.
	// If fields are nil, production defaults are used.
	Deps Deps
}

// deps returns the Deps with defaults applied.
func (c *Config) deps() *Deps {
	c.Deps.applyDefaults()

	return &c.Deps
}

// session is the state shared by the subcommands of one invocation.
type session struct {
	cfg      Config
	settings *config.Config
	lggr     logger.Logger
}

// load reads the settings and prepares the logger. It runs before every subcommand.
func (s *session) load(cmd *cobra.Command) error {
	deps := s.cfg.deps()

	configPath := flags.MustString(cmd.Flags().GetString("config"))
	settings, err := deps.ConfigLoader(configPath, cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	s.settings = settings

	s.lggr = s.cfg.Logger
	if s.lggr == nil {
		if s.lggr, err = deps.LoggerLoader(settings); err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
	}

	return nil
}

// client builds the explorer client. Callers must invoke the returned func when done.
func (s *session) client() (*explorer.Client, func(), error) {
	c, closeFn, err := s.cfg.deps().ClientLoader(s.settings, s.lggr)
	if err != nil {
		return nil, nil, err
	}
	if closeFn == nil {
		closeFn = func() {}
	}

	return c, func() {
		closeFn()
		_ = s.lggr.Sync()
	}, nil
}

// output returns the printer for the selected output format.
func (s *session) output(cmd *cobra.Command) printer {
	return printer{cmd: cmd, json: s.settings.Output == config.OutputJSON}
}

// NewCommand creates the explorer root command with all subcommands.
func NewCommand(cfg Config) *cobra.Command {
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	cfg.deps()
	s := &session{cfg: cfg}

	cmd := &cobra.Command{
		Use:           "explorer",
		Short:         rootShort,
		Long:          rootLong,
		Version:       cfg.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return s.load(cmd)
		},
	}
	cmd.SetGlobalNormalizationFunc(flags.WordSepNormalize)

	pf := cmd.PersistentFlags()
	pf.StringP("rpc-url", "r", network.DefaultRPCURL, "RPC endpoint URL; when set it replaces the network's RPCs")
	pf.String("network", network.DefaultNetwork, "Network to connect to")
	pf.String("networks-file", "", "Manifest of additional networks (yaml or toml)")
	pf.String("config", "", "Config file (yaml, json or toml)")
	pf.String("log-level", config.DefaultLogLevel, "Log level: debug, info, warn or error")
	pf.Uint("retry-attempts", config.DefaultRetryAttempts, "Attempts per RPC call before failing over")
	pf.Duration("retry-delay", config.DefaultRetryDelay, "Delay between RPC attempts")
	pf.Duration("timeout", config.DefaultTimeout, "Timeout of a single RPC call")
	flags.Output(cmd)

	cmd.AddCommand(newInfoCmd(s))
	cmd.AddCommand(newBalanceCmd(s))
	cmd.AddCommand(newChainCmd(s))

	return cmd
}
