package network

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// presetNames are the BEPRO development chains that are always resolvable by name.
var presetNames = []string{"seneca", "diogenes", "aurelius", "afrodite", "irene", "apollodorus"}

// presetURL returns the RPC URL of a preset chain.
func presetURL(name string) string {
	return fmt.Sprintf("https://eth-%s.taikai.network:8080", name)
}

// Manifest is the YAML representation of network configuration.
type Manifest struct {
	// A YAML array of networks.
	Networks []Network `yaml:"networks"`
}

// Config is the static table of networks, keyed by lower cased name.
type Config struct {
	networks map[string]Network
}

// NewConfig creates a new config from a slice of networks. Any duplicate names will be
// overwritten.
func NewConfig(networks []Network) *Config {
	nmap := make(map[string]Network)

	for _, network := range networks {
		nmap[key(network.Name)] = network
	}

	return &Config{
		networks: nmap,
	}
}

// Presets returns the built-in static table.
func Presets() *Config {
	networks := make([]Network, 0, len(presetNames))
	for _, name := range presetNames {
		networks = append(networks, Network{
			Name: name,
			RPCs: []RPC{{RPCName: name, HTTPURL: presetURL(name)}},
		})
	}

	return NewConfig(networks)
}

// Validate ensures that all networks are valid.
func (c *Config) Validate() error {
	for _, network := range c.Networks() {
		if err := network.Validate(); err != nil {
			return fmt.Errorf("network %s: %w", network.Name, err)
		}
	}

	return nil
}

// Networks returns all networks in the config, sorted by name.
func (c *Config) Networks() []Network {
	networks := slices.Collect(maps.Values(c.networks))
	slices.SortFunc(networks, func(a, b Network) int {
		return strings.Compare(key(a.Name), key(b.Name))
	})

	return networks
}

// NetworkByName retrieves a network by its name. The second return value is false when no
// network matches.
func (c *Config) NetworkByName(name string) (Network, bool) {
	network, ok := c.networks[key(name)]

	return network, ok
}

// NetworkByChainID retrieves a network whose chain ID is known and equals chainID.
func (c *Config) NetworkByChainID(chainID uint64) (Network, bool) {
	if chainID == 0 {
		return Network{}, false
	}
	for _, network := range c.Networks() {
		if network.ChainID == chainID {
			return network, true
		}
	}

	return Network{}, false
}

// Merge merges another config into the current config.
// It overwrites any networks with the same name.
func (c *Config) Merge(other *Config) {
	maps.Copy(c.networks, other.networks)
}

// MarshalYAML implements the yaml.Marshaler interface for the Config struct.
// It converts the internal map structure to a YAML format with a top-level "networks" key.
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

// transformHTTPURLs transforms the HTTP URLs of the networks in the config.
func (c *Config) transformHTTPURLs(transform URLTransformer) {
	for k, n := range c.networks {
		for i, rpc := range n.RPCs {
			rpc.HTTPURL = transform(rpc.HTTPURL)

			n.RPCs[i] = rpc
		}

		c.networks[k] = n
	}
}

// Load returns the preset table merged with the networks of the given manifest files. Later
// files override earlier ones and the presets.
func Load(filePaths []string, opts ...LoadOption) (*Config, error) {
	cfg := Presets()

	loadCfg := &loadConfig{}
	for _, opt := range opts {
		opt(loadCfg)
	}

	for _, fp := range filePaths {
		data, err := os.ReadFile(fp)
		if err != nil {
			return nil, fmt.Errorf("failed to read networks file: %w", err)
		}

		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal networks YAML: %w", err)
		}

		cfg.Merge(&fileCfg)
	}

	if loadCfg.HTTPURLTransformer != nil {
		cfg.transformHTTPURLs(loadCfg.HTTPURLTransformer)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate networks configuration: %w", err)
	}

	return cfg, nil
}

// LoadOption defines a function which modifies the load configuration.
type LoadOption func(*loadConfig)

// loadConfig holds the configuration for loading the config.
type loadConfig struct {
	HTTPURLTransformer URLTransformer
}

// URLTransformer is a function that transforms a URL.
type URLTransformer func(string) string

// WithHTTPURLTransformer transforms the HTTP URLs of the networks RPCs after loading.
// e.g. WithHTTPURLTransformer(os.ExpandEnv) to inject API keys from the environment.
func WithHTTPURLTransformer(t URLTransformer) LoadOption {
	return func(opts *loadConfig) {
		opts.HTTPURLTransformer = t
	}
}
