package commands

import (
	"github.com/spf13/cobra"

	"github.com/liquidity-explorer/explorer/engine/commands/flags"
	"github.com/liquidity-explorer/explorer/engine/commands/text"
)

var (
	balanceShort = "Check token balance for an address"

	balanceLong = text.LongDesc(`
		Prints the balance a wallet holds of an ERC20 token, as the raw on-chain integer and
		scaled by the token's decimals.
	`)

	balanceExample = text.Examples(`
		explorer balance -t 0x4200000000000000000000000000000000000042 -w 0x2A82Ae142b2e62Cb7D10b55E323ACB1Cab663a26
	`)
)

func newBalanceCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "balance",
		Short:   balanceShort,
		Long:    balanceLong,
		Example: balanceExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBalance(cmd, s,
				flags.MustString(cmd.Flags().GetString("token")),
				flags.MustString(cmd.Flags().GetString("wallet")),
			)
		},
	}

	flags.Address(cmd, "token", "t", "Token address")
	flags.Address(cmd, "wallet", "w", "Wallet address to check")

	return cmd
}

func runBalance(cmd *cobra.Command, s *session, token, wallet string) error {
	c, done, err := s.client()
	if err != nil {
		return err
	}
	defer done()

	balance, err := c.Balance(cmd.Context(), token, wallet)
	if err != nil {
		return err
	}

	return s.output(cmd).balance(balance)
}
