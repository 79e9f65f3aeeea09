// Package deployment deploys and bootstraps bounty networks on one or more EVM chains: it
// provisions the network tokens, deploys the registry and network contracts, configures the
// network and records the result.
package deployment

import (
	"errors"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"

	"github.com/bepro/network-deployer/chain/evm"
)

var (
	// ErrInvalidChainConfig is returned when a chain record is incomplete or malformed.
	ErrInvalidChainConfig = errors.New("invalid chain config")
	// ErrMissingTokenConfig is returned in reuse mode when a token address is missing.
	ErrMissingTokenConfig = errors.New("missing token configuration")
)

// ChainConfig is the deployment record of one chain pass.
//
// WARNING: This data type contains sensitive fields and should not be logged.
type ChainConfig struct {
	// Network is a preset network name or a numeric chain ID.
	Network          string `yaml:"network"`
	DeployTestTokens bool   `yaml:"deploy_test_tokens"`
	PaymentToken     string `yaml:"payment_token"`
	GovernanceToken  string `yaml:"governance_token"`
	BountyNFT        string `yaml:"bounty_nft"`
	PrivateKey       string `yaml:"private_key"` // Secret
	// Treasury defaults to the deployer address.
	Treasury string `yaml:"treasury"`
	EnvFile  string `yaml:"env_file"`
}

// Validate checks the fields every pass needs. Token addresses are checked when the tokens are
// provisioned.
func (c ChainConfig) Validate() error {
	if c.Network == "" {
		return fmt.Errorf("%w: network is required", ErrInvalidChainConfig)
	}
	if c.PrivateKey == "" {
		return fmt.Errorf("%w: private key is required for network %s", ErrInvalidChainConfig, c.Network)
	}
	if c.Treasury != "" {
		if _, err := evm.ParseAddress(c.Treasury); err != nil {
			return fmt.Errorf("%w: treasury: %w", ErrInvalidChainConfig, err)
		}
	}

	return nil
}

// treasury returns the configured treasury or the deployer address.
func (c ChainConfig) treasury(deployer common.Address) common.Address {
	if c.Treasury == "" {
		return deployer
	}
	addr, _ := evm.ParseAddress(c.Treasury)

	return addr
}

// Flags are the positional per-chain option arrays of the command line. Index i of every slice
// belongs to Networks[i].
type Flags struct {
	Networks         []string
	DeployTestTokens bool
	PaymentTokens    []string
	GovernanceTokens []string
	BountyNFTs       []string
	PrivateKeys      []string
	Treasuries       []string
	EnvFiles         []string
}

// ChainConfigs builds one record per network. A value missing at a chain's index falls back to
// the value at index 0.
func (f Flags) ChainConfigs() ([]ChainConfig, error) {
	if len(f.Networks) == 0 {
		return nil, fmt.Errorf("%w: at least one network is required", ErrInvalidChainConfig)
	}

	configs := make([]ChainConfig, 0, len(f.Networks))
	for i, n := range f.Networks {
		c := ChainConfig{
			Network:          n,
			DeployTestTokens: f.DeployTestTokens,
			PaymentToken:     at(f.PaymentTokens, i),
			GovernanceToken:  at(f.GovernanceTokens, i),
			BountyNFT:        at(f.BountyNFTs, i),
			PrivateKey:       at(f.PrivateKeys, i),
			Treasury:         at(f.Treasuries, i),
			EnvFile:          at(f.EnvFiles, i),
		}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("chain %d: %w", i, err)
		}
		configs = append(configs, c)
	}

	return configs, nil
}

func at(values []string, i int) string {
	if i < len(values) && values[i] != "" {
		return values[i]
	}
	if len(values) > 0 {
		return values[0]
	}

	return ""
}

// Plan is a YAML deployment plan.
//
//	deploy_test_tokens: true
//	chains:
//	  - network: seneca
//	    private_key: 0x...
//	    env_file: .env.seneca
type Plan struct {
	// DeployTestTokens turns on test token deployment for every chain of the plan.
	DeployTestTokens bool          `yaml:"deploy_test_tokens"`
	Chains           []ChainConfig `yaml:"chains"`
}

// LoadPlan reads and validates a plan file.
func LoadPlan(filePath string) ([]ChainConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	var p Plan
	if err = yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan file %s: %w", filePath, err)
	}
	if len(p.Chains) == 0 {
		return nil, fmt.Errorf("%w: plan %s has no chains", ErrInvalidChainConfig, filePath)
	}

	for i := range p.Chains {
		p.Chains[i].DeployTestTokens = p.Chains[i].DeployTestTokens || p.DeployTestTokens
		if err = p.Chains[i].Validate(); err != nil {
			return nil, fmt.Errorf("chain %d: %w", i, err)
		}
	}

	return p.Chains, nil
}
