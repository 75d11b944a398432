package evm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ErrInvalidAddress is returned for user supplied strings that are not EVM addresses.
var ErrInvalidAddress = errors.New("invalid EVM address")

// ParseAddress converts an EVM address string to a common.Address.
// EVM addresses are hex strings (with or without 0x prefix) representing 20 bytes. The case of
// the hex digits is not checked, see ChecksumMismatch.
func ParseAddress(address string) (common.Address, error) {
	address = strings.TrimSpace(address)
	if !common.IsHexAddress(address) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}

	return common.HexToAddress(address), nil
}

// ChecksumMismatch reports whether a mixed case address does not match its EIP-55 checksum.
// All lower or all upper case addresses carry no checksum and never mismatch.
func ChecksumMismatch(address string) bool {
	address = strings.TrimSpace(address)
	if !common.IsHexAddress(address) || !isMixedCase(address) {
		return false
	}

	return common.HexToAddress(address).Hex() != withPrefix(address)
}

func withPrefix(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return "0x" + s[2:]
	}

	return "0x" + s
}

func isMixedCase(s string) bool {
	hex := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")

	return strings.ToLower(hex) != hex && strings.ToUpper(hex) != hex
}
