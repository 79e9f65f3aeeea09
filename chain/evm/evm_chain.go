package evm

import (
	"context"
	"fmt"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	chainsel "github.com/smartcontractkit/chain-selectors"
)

// ConfirmFunc is a function that takes a transaction, waits for the transaction to be confirmed,
// and returns the block number and an error.
type ConfirmFunc func(tx *types.Transaction) (uint64, error)

// OnchainClient is an EVM chain client.
// For EVM specifically we can use existing geth interface to abstract chain clients.
type OnchainClient interface {
	bind.ContractBackend
	bind.DeployBackend

	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	NonceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (uint64, error)
}

// Chain represents a signing connection to one EVM chain. It is owned by a single deployment
// pass and is never shared across chains.
type Chain struct {
	// Selector is the chain-selectors selector of the chain, or 0 when the chain is not known to
	// chain-selectors (e.g. private networks).
	Selector uint64
	// EVMChainID is the chain ID reported by the RPC endpoint.
	EVMChainID uint64
	// ChainName is the chain-selectors name of the chain, empty when unknown.
	ChainName string

	Client OnchainClient
	// Note the Sign function can be abstract supporting a variety of key storage mechanisms.
	DeployerKey *bind.TransactOpts
	Confirm     ConfirmFunc
}

// ChainSelector returns the chain selector of the chain
func (c Chain) ChainSelector() uint64 {
	return c.Selector
}

// Name returns the chain-selectors name of the chain, falling back to the chain ID.
func (c Chain) Name() string {
	if c.ChainName != "" {
		return c.ChainName
	}

	return strconv.FormatUint(c.EVMChainID, 10)
}

// String returns chain name and chain ID "<name> (<chain id>)"
func (c Chain) String() string {
	return fmt.Sprintf("%s (%d)", c.Name(), c.EVMChainID)
}

// DeployerAddress returns the address derived from the deployer key.
func (c Chain) DeployerAddress() common.Address {
	if c.DeployerKey == nil {
		return common.Address{}
	}

	return c.DeployerKey.From
}

// LookupChainDetails returns the chain-selectors details of an EVM chain ID. The second return
// value is false when the chain is unknown to chain-selectors.
func LookupChainDetails(chainID uint64) (chainsel.ChainDetails, bool) {
	details, err := chainsel.GetChainDetailsByChainIDAndFamily(
		strconv.FormatUint(chainID, 10), chainsel.FamilyEVM,
	)
	if err != nil {
		return chainsel.ChainDetails{}, false
	}

	return details, true
}
