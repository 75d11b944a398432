// Package explorer queries ERC20 token metadata and balances from an EVM chain.
//
// Every query fails fast: an invalid address, an RPC failure or undecodable return data
// aborts the query with an error. No value is ever substituted for a failed read.
package explorer

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/liquidity-explorer/explorer/chain/evm"
	"github.com/liquidity-explorer/explorer/chain/evm/erc20"
	"github.com/liquidity-explorer/explorer/chain/utils"
	"github.com/liquidity-explorer/explorer/pkg/logger"
	"github.com/liquidity-explorer/explorer/pkg/tokenamount"
)

// Backend is the read-only chain access the explorer needs.
type Backend interface {
	bind.ContractCaller
	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// ReaderFactory binds an ERC20 reader to a token address.
type ReaderFactory func(token common.Address, backend bind.ContractCaller) erc20.Reader

// TokenData is the metadata of an ERC20 token.
type TokenData struct {
	Address     common.Address
	Name        string
	Symbol      string
	Decimals    uint8
	TotalSupply *big.Int
}

// FormattedTotalSupply renders the total supply using the token's decimals.
func (t TokenData) FormattedTotalSupply() (string, error) {
	return tokenamount.Format(t.TotalSupply, uint(t.Decimals))
}

// TokenBalance is a wallet's balance of a token.
type TokenBalance struct {
	Token     TokenData
	Wallet    common.Address
	Raw       *big.Int
	Formatted string
}

// ChainInfo describes the chain the explorer is connected to.
type ChainInfo struct {
	ChainID     *big.Int
	Name        string
	BlockNumber uint64
}

// Option configures a Client.
type Option func(*Client)

// WithReaderFactory replaces the ERC20 reader constructor.
func WithReaderFactory(f ReaderFactory) Option {
	return func(c *Client) { c.newReader = f }
}

// Client runs explorer queries against a Backend.
type Client struct {
	backend   Backend
	lggr      logger.Logger
	newReader ReaderFactory
}

// New returns a Client reading from backend.
func New(backend Backend, lggr logger.Logger, opts ...Option) *Client {
	c := &Client{
		backend:   backend,
		lggr:      lggr,
		newReader: erc20.NewReader,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// TokenData fetches name, symbol, decimals and total supply of the token at tokenAddress.
func (c *Client) TokenData(ctx context.Context, tokenAddress string) (TokenData, error) {
	addr, err := c.parseAddress("token", tokenAddress)
	if err != nil {
		return TokenData{}, err
	}

	return c.tokenData(ctx, addr)
}

func (c *Client) tokenData(ctx context.Context, addr common.Address) (TokenData, error) {
	c.lggr.Debugw("Fetching token data", "token", addr.Hex())
	r := c.newReader(addr, c.backend)

	name, err := r.Name(ctx)
	if err != nil {
		return TokenData{}, fmt.Errorf("failed to get token name: %w", err)
	}
	symbol, err := r.Symbol(ctx)
	if err != nil {
		return TokenData{}, fmt.Errorf("failed to get token symbol: %w", err)
	}
	decimals, err := r.Decimals(ctx)
	if err != nil {
		return TokenData{}, fmt.Errorf("failed to get token decimals: %w", err)
	}
	totalSupply, err := r.TotalSupply(ctx)
	if err != nil {
		return TokenData{}, fmt.Errorf("failed to get token total supply: %w", err)
	}

	return TokenData{
		Address:     addr,
		Name:        name,
		Symbol:      symbol,
		Decimals:    decimals,
		TotalSupply: totalSupply,
	}, nil
}

// TokenBalance fetches the raw balance of walletAddress for the token at tokenAddress.
func (c *Client) TokenBalance(ctx context.Context, tokenAddress, walletAddress string) (*big.Int, error) {
	token, wallet, err := c.parsePair(tokenAddress, walletAddress)
	if err != nil {
		return nil, err
	}

	return c.tokenBalance(ctx, token, wallet)
}

func (c *Client) tokenBalance(ctx context.Context, token, wallet common.Address) (*big.Int, error) {
	c.lggr.Debugw("Fetching token balance", "token", token.Hex(), "wallet", wallet.Hex())

	balance, err := c.newReader(token, c.backend).BalanceOf(ctx, wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to get token balance: %w", err)
	}

	return balance, nil
}

// Balance fetches the token metadata and the wallet balance concurrently and formats the
// balance with the token's decimals. Formatted is empty when the decimals are too large to
// format.
func (c *Client) Balance(ctx context.Context, tokenAddress, walletAddress string) (TokenBalance, error) {
	token, wallet, err := c.parsePair(tokenAddress, walletAddress)
	if err != nil {
		return TokenBalance{}, err
	}

	var (
		data TokenData
		raw  *big.Int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var gerr error
		data, gerr = c.tokenData(gctx, token)

		return gerr
	})
	g.Go(func() error {
		var gerr error
		raw, gerr = c.tokenBalance(gctx, token, wallet)

		return gerr
	})
	if err := g.Wait(); err != nil {
		return TokenBalance{}, err
	}

	formatted, err := tokenamount.Format(raw, uint(data.Decimals))
	switch {
	case errors.Is(err, tokenamount.ErrUnrepresentable):
		c.lggr.Warnw("Balance cannot be formatted, only the raw amount is reported", "token", token.Hex(), "decimals", data.Decimals, "err", err)
	case err != nil:
		return TokenBalance{}, fmt.Errorf("failed to format balance of %s: %w", data.Symbol, err)
	}

	return TokenBalance{
		Token:     data,
		Wallet:    wallet,
		Raw:       raw,
		Formatted: formatted,
	}, nil
}

// ChainInfo reports the connected chain's ID, its registry name and the latest block.
// Name is empty for chains unknown to the registry.
func (c *Client) ChainInfo(ctx context.Context) (ChainInfo, error) {
	id, err := c.backend.ChainID(ctx)
	if err != nil {
		return ChainInfo{}, fmt.Errorf("failed to get chain ID: %w", err)
	}

	block, err := c.backend.BlockNumber(ctx)
	if err != nil {
		return ChainInfo{}, fmt.Errorf("failed to get block number: %w", err)
	}

	info := ChainInfo{ChainID: id, BlockNumber: block}
	details, err := utils.EVMChainInfo(id)
	if err != nil {
		c.lggr.Debugw("Chain not found in registry", "chainID", id.String(), "err", err)
	} else {
		info.Name = details.ChainName
	}

	return info, nil
}

func (c *Client) parsePair(tokenAddress, walletAddress string) (common.Address, common.Address, error) {
	token, err := c.parseAddress("token", tokenAddress)
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	wallet, err := c.parseAddress("wallet", walletAddress)
	if err != nil {
		return common.Address{}, common.Address{}, err
	}

	return token, wallet, nil
}

// parseAddress parses a user supplied address. A bad EIP-55 checksum is only logged.
func (c *Client) parseAddress(role, address string) (common.Address, error) {
	addr, err := evm.ParseAddress(address)
	if err != nil {
		return common.Address{}, fmt.Errorf("%s address: %w", role, err)
	}
	if evm.ChecksumMismatch(address) {
		c.lggr.Warnw("Address does not match its EIP-55 checksum", role, address, "checksummed", addr.Hex())
	}

	return addr, nil
}
