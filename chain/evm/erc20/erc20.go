// Package erc20 provides read-only access to ERC20 token contracts.
package erc20

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// ABIJSON is the subset of the ERC20 interface the explorer reads.
const ABIJSON = `[
	{"inputs":[],"name":"name","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"totalSupply","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"account","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"}
]`

// ErrDecode is returned when a contract call succeeds but its return data does not have the
// expected ABI shape.
var ErrDecode = errors.New("unexpected contract return data")

var erc20ABI = mustParseABI(ABIJSON)

func mustParseABI(abiJSON string) *abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		panic("failed to parse ABI: " + err.Error())
	}

	return &parsed
}

// ABI returns the parsed ERC20 ABI.
func ABI() *abi.ABI { return erc20ABI }

// Reader reads ERC20 view functions of a single token contract.
type Reader interface {
	Name(ctx context.Context) (string, error)
	Symbol(ctx context.Context) (string, error)
	Decimals(ctx context.Context) (uint8, error)
	TotalSupply(ctx context.Context) (*big.Int, error)
	BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error)
}

// NewReader binds the ERC20 ABI to address on backend.
func NewReader(address common.Address, backend bind.ContractCaller) Reader {
	return &caller{
		address:  address,
		contract: bind.NewBoundContract(address, *erc20ABI, backend, nil, nil),
	}
}

type caller struct {
	address  common.Address
	contract *bind.BoundContract
}

func (c *caller) Name(ctx context.Context) (string, error) {
	return call[string](ctx, c, "name")
}

func (c *caller) Symbol(ctx context.Context) (string, error) {
	return call[string](ctx, c, "symbol")
}

func (c *caller) Decimals(ctx context.Context) (uint8, error) {
	return call[uint8](ctx, c, "decimals")
}

func (c *caller) TotalSupply(ctx context.Context) (*big.Int, error) {
	return call[*big.Int](ctx, c, "totalSupply")
}

func (c *caller) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	return call[*big.Int](ctx, c, "balanceOf", owner)
}

// call invokes a single-output view method and converts its result to T.
func call[T any](ctx context.Context, c *caller, method string, args ...any) (T, error) {
	var zero T
	var out []any

	err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, method, args...)
	if err != nil {
		if isUnpackErr(err) {
			return zero, fmt.Errorf("%s on %s: %w: %w", method, c.address.Hex(), ErrDecode, err)
		}

		return zero, fmt.Errorf("%s on %s: %w", method, c.address.Hex(), err)
	}

	if len(out) == 0 {
		return zero, fmt.Errorf("%s on %s: %w: no data returned", method, c.address.Hex(), ErrDecode)
	}

	v, ok := out[0].(T)
	if !ok {
		return zero, fmt.Errorf("%s on %s: %w: expected %T, got %T", method, c.address.Hex(), ErrDecode, zero, out[0])
	}

	return v, nil
}

// isUnpackErr reports whether err came from ABI decoding rather than the transport.
func isUnpackErr(err error) bool {
	if errors.Is(err, bind.ErrNoCode) {
		return true
	}

	// abi.Unpack has no sentinel errors. The prefixes below are the ones go-ethereum v1.15.7
	// uses and TestIsUnpackErr decodes real return data to catch a rewording on upgrade.
	msg := err.Error()

	return strings.Contains(msg, "abi: ") || strings.Contains(msg, "cannot marshal")
}
