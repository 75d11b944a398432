// Package tokenamount renders raw ERC20 integer amounts as decimal strings.
package tokenamount

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// MaxDecimals is the largest decimals value Format accepts.
const MaxDecimals = 30

var (
	// ErrUnrepresentable is returned when the decimals value is too large to build a divisor for.
	ErrUnrepresentable = errors.New("token amount is unrepresentable")
	// ErrNegativeAmount is returned for nil or negative amounts.
	ErrNegativeAmount = errors.New("token amount must be a non-negative integer")
)

var ten = big.NewInt(10)

// Format converts a raw token amount into a decimal string using the token's decimals.
//
// The whole part is always present. The fractional part is padded to decimals digits,
// stripped of trailing zeros and omitted entirely when it is zero, so 1500000000000000000
// with 18 decimals renders as "1.5" and 5 with 3 decimals as "0.005".
func Format(amount *big.Int, decimals uint) (string, error) {
	if decimals > MaxDecimals {
		return "", fmt.Errorf("%w: decimals %d exceeds %d", ErrUnrepresentable, decimals, MaxDecimals)
	}
	if amount == nil || amount.Sign() < 0 {
		return "", ErrNegativeAmount
	}

	divisor := new(big.Int).Exp(ten, new(big.Int).SetUint64(uint64(decimals)), nil)
	if divisor.Sign() == 0 {
		return "", fmt.Errorf("%w: zero divisor for decimals %d", ErrUnrepresentable, decimals)
	}

	whole, fraction := new(big.Int).QuoRem(amount, divisor, new(big.Int))

	frac := fraction.String()
	if pad := int(decimals) - len(frac); pad > 0 {
		frac = strings.Repeat("0", pad) + frac
	}
	frac = strings.TrimRight(frac, "0")

	if frac == "" {
		return whole.String(), nil
	}

	return whole.String() + "." + frac, nil
}

// MustFormat is like Format but panics on error.
func MustFormat(amount *big.Int, decimals uint) string {
	s, err := Format(amount, decimals)
	if err != nil {
		panic(err)
	}

	return s
}
