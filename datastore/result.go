// Package datastore defines the deployment result record and the persisters that store it.
package datastore

import (
	"github.com/ethereum/go-ethereum/common"
)

// Role is the part a token plays in a bounty network.
type Role string

const (
	RolePayment    Role = "payment"
	RoleGovernance Role = "governance"
	RoleReward     Role = "reward"
	RoleBounty     Role = "bounty"
)

// TokenInfo describes a fungible token used by a network.
type TokenInfo struct {
	Name            string         `json:"name"`
	Symbol          string         `json:"symbol"`
	Address         common.Address `json:"address"`
	IsTransactional bool           `json:"isTransactional"`
	IsReward        bool           `json:"isReward"`
}

// BountyInfo describes the bounty NFT token.
type BountyInfo struct {
	Name    string         `json:"name"`
	Symbol  string         `json:"symbol"`
	Address common.Address `json:"address"`
}

// Result is the summary of one chain's deployment pass.
type Result struct {
	ChainName string `json:"chainName"`
	ChainID   uint64 `json:"chainId"`
	// ChainSelector is the chain-selectors selector, omitted for chains it does not know.
	ChainSelector uint64         `json:"chainSelector,omitempty"`
	Network       common.Address `json:"network"`
	Registry      common.Address `json:"registry"`
	Payment       TokenInfo      `json:"payment"`
	// Governance is nil when the network has no governance token.
	Governance *TokenInfo `json:"governance,omitempty"`
	// Reward is nil when no reward token was deployed.
	Reward *TokenInfo `json:"reward,omitempty"`
	Bounty BountyInfo `json:"bounty"`
}

// RoleToken is a token together with its role.
type RoleToken struct {
	Role Role
	TokenInfo
}

// Tokens returns the fungible and bounty tokens of the result by role. Absent roles are skipped.
func (r Result) Tokens() []RoleToken {
	tokens := []RoleToken{{Role: RolePayment, TokenInfo: r.Payment}}
	if r.Governance != nil {
		tokens = append(tokens, RoleToken{Role: RoleGovernance, TokenInfo: *r.Governance})
	}
	if r.Reward != nil {
		tokens = append(tokens, RoleToken{Role: RoleReward, TokenInfo: *r.Reward})
	}
	tokens = append(tokens, RoleToken{Role: RoleBounty, TokenInfo: TokenInfo{
		Name:    r.Bounty.Name,
		Symbol:  r.Bounty.Symbol,
		Address: r.Bounty.Address,
	}})

	return tokens
}
