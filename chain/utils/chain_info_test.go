package utils_test

import (
	"math/big"
	"testing"

	chainsel "github.com/smartcontractkit/chain-selectors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liquidity-explorer/explorer/chain/utils"
)

func TestChainInfo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		selector      uint64
		expectError   string
		validateChain func(t *testing.T, info chainsel.ChainDetails)
	}{
		{
			name:     "returns details for optimism",
			selector: chainsel.ETHEREUM_MAINNET_OPTIMISM_1.Selector,
			validateChain: func(t *testing.T, info chainsel.ChainDetails) {
				t.Helper()
				assert.Equal(t, chainsel.ETHEREUM_MAINNET_OPTIMISM_1.Name, info.ChainName)
				assert.Equal(t, chainsel.ETHEREUM_MAINNET_OPTIMISM_1.Selector, info.ChainSelector)
			},
		},
		{
			name:        "returns error for invalid chain selector",
			selector:    0, // Invalid selector
			expectError: "unknown chain selector 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			info, err := utils.ChainInfo(tt.selector)

			if len(tt.expectError) > 0 {
				assert.ErrorContains(t, err, tt.expectError)
				return
			}

			require.NoError(t, err)
			if tt.validateChain != nil {
				tt.validateChain(t, info)
			}
		})
	}
}

func TestEVMChainInfo(t *testing.T) {
	t.Parallel()

	info, err := utils.EVMChainInfo(big.NewInt(10))
	require.NoError(t, err)
	assert.Equal(t, chainsel.ETHEREUM_MAINNET_OPTIMISM_1.Name, info.ChainName)
	assert.Equal(t, chainsel.ETHEREUM_MAINNET_OPTIMISM_1.Selector, info.ChainSelector)

	_, err = utils.EVMChainInfo(big.NewInt(999999999999))
	require.ErrorIs(t, err, utils.ErrUnknownChain)

	_, err = utils.EVMChainInfo(nil)
	require.ErrorIs(t, err, utils.ErrUnknownChain)
}
