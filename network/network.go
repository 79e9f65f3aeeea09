package network

import (
	"errors"
	"strings"
)

// Network is a statically known chain the deployer can target by name.
type Network struct {
	// Name is the identifier users pass on the command line. Lookups are case insensitive.
	Name string `yaml:"name"`
	// ChainID is the EVM chain ID when known, zero otherwise. A non-zero ChainID lets the network
	// also be addressed by its numeric identifier.
	ChainID uint64 `yaml:"chain_id"`
	RPCs    []RPC  `yaml:"rpcs"`
}

// Validate validates the network configuration to ensure that all required fields are set.
func (n *Network) Validate() error {
	if n.Name == "" {
		return errors.New("name is required")
	}

	if len(n.RPCs) == 0 {
		return errors.New("at least one RPC is required")
	}

	for _, rpc := range n.RPCs {
		if rpc.PreferredEndpoint() == "" {
			return errors.New("rpc " + rpc.RPCName + " has no endpoint")
		}
	}

	return nil
}

// Endpoint returns the preferred endpoint of the first RPC.
func (n *Network) Endpoint() string {
	if len(n.RPCs) == 0 {
		return ""
	}

	return n.RPCs[0].PreferredEndpoint()
}

// key is the lookup key of a network name.
func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// RPC represents an RPC configuration in the flattened structure
type RPC struct {
	RPCName            string `yaml:"rpc_name"`
	PreferredURLScheme string `yaml:"preferred_url_scheme"`
	HTTPURL            string `yaml:"http_url"`
	WSURL              string `yaml:"ws_url"`
}

// PreferredEndpoint returns the correct endpoint based on the preferred URL scheme. By default, it
// returns the HTTP URL.
func (rpc *RPC) PreferredEndpoint() string {
	if rpc.PreferredURLScheme == "ws" {
		return rpc.WSURL
	}

	return rpc.HTTPURL
}
