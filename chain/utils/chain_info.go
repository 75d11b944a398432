package utils

import (
	"errors"
	"fmt"
	"math/big"

	chain_selectors "github.com/smartcontractkit/chain-selectors"
)

// ErrUnknownChain is returned when a chain ID has no entry in the chain-selectors registry.
var ErrUnknownChain = errors.New("unknown chain")

// ChainInfo returns the chain info for the given selector.
// It returns an error if the selector is invalid or if the chain info cannot be retrieved.
func ChainInfo(cs uint64) (chain_selectors.ChainDetails, error) {
	id, err := chain_selectors.GetChainIDFromSelector(cs)
	if err != nil {
		return chain_selectors.ChainDetails{}, err
	}
	family, err := chain_selectors.GetSelectorFamily(cs)
	if err != nil {
		return chain_selectors.ChainDetails{}, err
	}
	info, err := chain_selectors.GetChainDetailsByChainIDAndFamily(id, family)
	if err != nil {
		return chain_selectors.ChainDetails{}, err
	}

	return info, nil
}

// EVMChainInfo returns the chain info for an EVM chain ID as reported by eth_chainId.
func EVMChainInfo(chainID *big.Int) (chain_selectors.ChainDetails, error) {
	if chainID == nil || chainID.Sign() <= 0 {
		return chain_selectors.ChainDetails{}, fmt.Errorf("%w: invalid chain ID %v", ErrUnknownChain, chainID)
	}

	info, err := chain_selectors.GetChainDetailsByChainIDAndFamily(chainID.String(), chain_selectors.FamilyEVM)
	if err != nil {
		return chain_selectors.ChainDetails{}, fmt.Errorf("%w: chain ID %s: %w", ErrUnknownChain, chainID, err)
	}

	return info, nil
}
