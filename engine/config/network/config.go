package network

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	chain_selectors "github.com/smartcontractkit/chain-selectors"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultNetwork is the network used when none is selected.
	DefaultNetwork = "optimism"
	// DefaultRPCURL is the public Optimism endpoint of the default network.
	DefaultRPCURL = "https://optimism.drpc.org"
)

// Manifest is the file representation of network configuration.
type Manifest struct {
	// An array of networks.
	Networks []Network `yaml:"networks" toml:"networks"`
}

// Config represents a collection of networks keyed by name.
type Config struct {
	networks map[string]Network
}

// NewConfig creates a new config from a slice of networks. Later entries with a duplicate
// name overwrite earlier ones.
func NewConfig(networks []Network) *Config {
	nmap := make(map[string]Network)

	for _, network := range networks {
		nmap[network.Name] = network
	}

	return &Config{
		networks: nmap,
	}
}

// Default returns the built-in networks.
func Default() *Config {
	return NewConfig([]Network{
		{
			Name:          DefaultNetwork,
			ChainSelector: chain_selectors.ETHEREUM_MAINNET_OPTIMISM_1.Selector,
			RPCs: []RPC{
				{RPCName: "drpc", PreferredURLScheme: "http", HTTPURL: DefaultRPCURL},
			},
		},
	})
}

// Load reads a manifest from filePath and merges it over the built-in networks. Files with a
// .toml extension are decoded as TOML, everything else as YAML.
func Load(filePath string) (*Config, error) {
	b, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read networks manifest: %w", err)
	}

	fileCfg, err := decode(filePath, b)
	if err != nil {
		return nil, fmt.Errorf("failed to parse networks manifest %s: %w", filePath, err)
	}

	if err := fileCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid networks manifest %s: %w", filePath, err)
	}

	cfg := Default()
	cfg.Merge(fileCfg)

	return cfg, nil
}

func decode(filePath string, b []byte) (*Config, error) {
	if strings.EqualFold(filepath.Ext(filePath), ".toml") {
		var manifest Manifest
		if err := toml.Unmarshal(b, &manifest); err != nil {
			return nil, err
		}

		return NewConfig(manifest.Networks), nil
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that all networks are valid.
func (c *Config) Validate() error {
	for _, network := range c.Networks() {
		if err := network.Validate(); err != nil {
			return fmt.Errorf("network %q: %w", network.Name, err)
		}
	}

	return nil
}

// Networks returns all networks sorted by name.
func (c *Config) Networks() []Network {
	networks := make([]Network, 0, len(c.networks))
	for _, name := range c.Names() {
		networks = append(networks, c.networks[name])
	}

	return networks
}

// Names returns the sorted network names.
func (c *Config) Names() []string {
	return slices.Sorted(maps.Keys(c.networks))
}

// NetworkByName retrieves a network by name. If the network is not found, an error is returned.
func (c *Config) NetworkByName(name string) (Network, error) {
	network, ok := c.networks[name]
	if !ok {
		return Network{}, fmt.Errorf("network %q not found in configuration, known networks: %v", name, c.Names())
	}

	return network, nil
}

// Merge merges another config into the current config.
// It overwrites any networks with the same name.
func (c *Config) Merge(other *Config) {
	maps.Copy(c.networks, other.networks)
}

// MarshalYAML implements the yaml.Marshaler interface for the Config struct.
func (c *Config) MarshalYAML() (any, error) {
	return Manifest{Networks: c.Networks()}, nil
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for the Config struct.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	node := Manifest{}

	if err := value.Decode(&node); err != nil {
		return err
	}

	*c = *NewConfig(node.Networks)

	return nil
}
