package commands

import (
	"github.com/spf13/cobra"

	"github.com/liquidity-explorer/explorer/engine/commands/flags"
	"github.com/liquidity-explorer/explorer/engine/commands/text"
)

var (
	infoShort = "Get basic token information"

	infoLong = text.LongDesc(`
		Prints the name, symbol, decimals and total supply of an ERC20 token.

		The total supply is shown both as the raw on-chain integer and scaled by the token's
		decimals.
	`)

	infoExample = text.Examples(`
		# OP token on Optimism
		explorer info -a 0x4200000000000000000000000000000000000042

		# As JSON
		explorer info -a 0x4200000000000000000000000000000000000042 --output json
	`)
)

func newInfoCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "info",
		Short:   infoShort,
		Long:    infoLong,
		Example: infoExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInfo(cmd, s, flags.MustString(cmd.Flags().GetString("address")))
		},
	}

	flags.Address(cmd, "address", "a", "Token address")

	return cmd
}

func runInfo(cmd *cobra.Command, s *session, address string) error {
	c, done, err := s.client()
	if err != nil {
		return err
	}
	defer done()

	data, err := c.TokenData(cmd.Context(), address)
	if err != nil {
		return err
	}

	return s.output(cmd).tokenInfo(data)
}
