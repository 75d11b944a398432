package network

import (
	"errors"
	"fmt"

	chain_selectors "github.com/smartcontractkit/chain-selectors"

	"github.com/liquidity-explorer/explorer/chain/evm/rpcclient"
	"github.com/liquidity-explorer/explorer/chain/utils"
)

// Network represents a network configuration.
type Network struct {
	Name          string `yaml:"name" toml:"name"`
	ChainSelector uint64 `yaml:"chain_selector" toml:"chain_selector"`
	RPCs          []RPC  `yaml:"rpcs" toml:"rpcs"`
}

// ChainName returns the chain-selectors name of the network, e.g. ethereum-mainnet-optimism-1.
func (n *Network) ChainName() (string, error) {
	info, err := utils.ChainInfo(n.ChainSelector)
	if err != nil {
		return "", err
	}

	return info.ChainName, nil
}

// Validate validates the network configuration to ensure that all required fields are set.
func (n *Network) Validate() error {
	if n.Name == "" {
		return errors.New("name is required")
	}

	if n.ChainSelector == 0 {
		return errors.New("chain selector is required")
	}

	family, err := chain_selectors.GetSelectorFamily(n.ChainSelector)
	if err != nil {
		return fmt.Errorf("chain selector %d: %w", n.ChainSelector, err)
	}
	if family != chain_selectors.FamilyEVM {
		return fmt.Errorf("chain selector %d belongs to the %s family, only EVM chains are supported", n.ChainSelector, family)
	}

	if len(n.RPCs) == 0 {
		return errors.New("at least one RPC is required")
	}

	for i, rpc := range n.RPCs {
		if _, err := rpc.ToRPCClient(); err != nil {
			return fmt.Errorf("rpc %d: %w", i, err)
		}
	}

	return nil
}

// RPCConfig converts the network into the configuration of a rpcclient.MultiClient.
func (n *Network) RPCConfig() (rpcclient.RPCConfig, error) {
	if err := n.Validate(); err != nil {
		return rpcclient.RPCConfig{}, fmt.Errorf("network %q: %w", n.Name, err)
	}

	chainName, err := n.ChainName()
	if err != nil {
		chainName = n.Name
	}

	rpcs := make([]rpcclient.RPC, 0, len(n.RPCs))
	for _, rpc := range n.RPCs {
		r, _ := rpc.ToRPCClient()
		rpcs = append(rpcs, r)
	}

	return rpcclient.RPCConfig{ChainName: chainName, RPCs: rpcs}, nil
}

// RPC represents an RPC configuration in the flattened structure
type RPC struct {
	RPCName            string `yaml:"rpc_name" toml:"rpc_name"`
	PreferredURLScheme string `yaml:"preferred_url_scheme" toml:"preferred_url_scheme"`
	HTTPURL            string `yaml:"http_url" toml:"http_url"`
	WSURL              string `yaml:"ws_url" toml:"ws_url"`
}

// ToRPCClient converts the manifest entry into a rpcclient.RPC.
func (rpc *RPC) ToRPCClient() (rpcclient.RPC, error) {
	pref, err := rpcclient.URLSchemePreferenceFromString(rpc.PreferredURLScheme)
	if err != nil {
		return rpcclient.RPC{}, err
	}

	r := rpcclient.RPC{
		Name:               rpc.RPCName,
		HTTPURL:            rpc.HTTPURL,
		WSURL:              rpc.WSURL,
		PreferredURLScheme: pref,
	}
	if _, err := r.ToEndpoint(); err != nil {
		return rpcclient.RPC{}, err
	}

	return r, nil
}
