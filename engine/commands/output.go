package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/liquidity-explorer/explorer/engine/commands/text"
	"github.com/liquidity-explorer/explorer/explorer"
	"github.com/liquidity-explorer/explorer/pkg/tokenamount"
)

// unavailable replaces a formatted amount the token's decimals do not allow.
const unavailable = "n/a"

// printer writes command results to stdout. Logs go to stderr.
type printer struct {
	cmd  *cobra.Command
	json bool
}

// print writes v as indented JSON, or fields as aligned text.
func (p printer) print(v any, fields ...text.Field) error {
	if !p.json {
		text.WriteFields(p.cmd.OutOrStdout(), fields...)

		return nil
	}

	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(p.cmd.OutOrStdout(), string(b))

	return err
}

type tokenInfoOutput struct {
	Address              string `json:"address"`
	Name                 string `json:"name"`
	Symbol               string `json:"symbol"`
	Decimals             uint8  `json:"decimals"`
	TotalSupply          string `json:"totalSupply"`
	FormattedTotalSupply string `json:"formattedTotalSupply,omitempty"`
}

func (p printer) tokenInfo(data explorer.TokenData) error {
	formatted, err := data.FormattedTotalSupply()
	if err != nil && !errors.Is(err, tokenamount.ErrUnrepresentable) {
		return fmt.Errorf("failed to format total supply of %s: %w", data.Symbol, err)
	}

	supply := unavailable
	if formatted != "" {
		supply = formatted + " " + data.Symbol
	}

	out := tokenInfoOutput{
		Address:              data.Address.Hex(),
		Name:                 data.Name,
		Symbol:               data.Symbol,
		Decimals:             data.Decimals,
		TotalSupply:          data.TotalSupply.String(),
		FormattedTotalSupply: formatted,
	}

	return p.print(out,
		text.Field{Label: "Address", Value: out.Address},
		text.Field{Label: "Name", Value: out.Name},
		text.Field{Label: "Symbol", Value: out.Symbol},
		text.Field{Label: "Decimals", Value: strconv.Itoa(int(out.Decimals))},
		text.Field{Label: "Total supply (raw)", Value: out.TotalSupply},
		text.Field{Label: "Total supply", Value: supply},
	)
}

type balanceOutput struct {
	Token            string `json:"token"`
	Symbol           string `json:"symbol"`
	Decimals         uint8  `json:"decimals"`
	Wallet           string `json:"wallet"`
	Balance          string `json:"balance"`
	FormattedBalance string `json:"formattedBalance,omitempty"`
}

func (p printer) balance(b explorer.TokenBalance) error {
	out := balanceOutput{
		Token:            b.Token.Address.Hex(),
		Symbol:           b.Token.Symbol,
		Decimals:         b.Token.Decimals,
		Wallet:           b.Wallet.Hex(),
		Balance:          b.Raw.String(),
		FormattedBalance: b.Formatted,
	}

	formatted := unavailable
	if out.FormattedBalance != "" {
		formatted = out.FormattedBalance + " " + out.Symbol
	}

	return p.print(out,
		text.Field{Label: "Token", Value: out.Token + " (" + out.Symbol + ")"},
		text.Field{Label: "Wallet", Value: out.Wallet},
		text.Field{Label: "Balance (raw)", Value: out.Balance},
		text.Field{Label: "Balance", Value: formatted},
	)
}

type chainOutput struct {
	ChainID     string `json:"chainId"`
	Name        string `json:"name,omitempty"`
	BlockNumber uint64 `json:"blockNumber"`
}

func (p printer) chain(info explorer.ChainInfo) error {
	out := chainOutput{
		ChainID:     info.ChainID.String(),
		Name:        info.Name,
		BlockNumber: info.BlockNumber,
	}

	name := out.Name
	if name == "" {
		name = "unknown"
	}

	return p.print(out,
		text.Field{Label: "Chain ID", Value: out.ChainID},
		text.Field{Label: "Chain", Value: name},
		text.Field{Label: "Latest block", Value: strconv.FormatUint(out.BlockNumber, 10)},
	)
}
