package commands

import (
	"github.com/spf13/cobra"
)

func newChainCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "chain",
		Short: "Show the connected chain and its latest block",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, done, err := s.client()
			if err != nil {
				return err
			}
			defer done()

			info, err := c.ChainInfo(cmd.Context())
			if err != nil {
				return err
			}

			return s.output(cmd).chain(info)
		},
	}
}
