package provider

import (
	"context"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/ethereum/go-ethereum/params"
	chainsel "github.com/smartcontractkit/chain-selectors"
	"github.com/stretchr/testify/require"

	"github.com/bepro/network-deployer/chain/evm"
)

var (
	// simChainID is the chain ID for the simulated EVM chain. This is always set to 1337 across
	// all instances of EVM Simulated Chains.
	simChainID = params.AllDevChainProtocolChanges.ChainID
	// prefundAmountWei is 1,000,000 Ether in wei.
	prefundAmountWei = new(big.Int).Mul(big.NewInt(1_000_000), big.NewInt(params.Ether))
)

// SimChainProviderConfig holds the configuration to initialize the SimChainProvider.
type SimChainProviderConfig struct {
	// Optional: PrefundAccounts are funded in the genesis block alongside the deployer.
	PrefundAccounts []common.Address
	// Optional: BlockTime configures the time between blocks being committed. By default blocks
	// are only produced when a transaction is confirmed.
	BlockTime time.Duration
}

// SimChainProvider manages a simulated EVM chain backed by go-ethereum's in memory simulated
// backend. It is intended for tests only.
type SimChainProvider struct {
	t      *testing.T
	config SimChainProviderConfig

	chain *evm.Chain
}

// NewSimChainProvider creates a new SimChainProvider with the given configuration.
func NewSimChainProvider(t *testing.T, config SimChainProviderConfig) *SimChainProvider {
	t.Helper()

	return &SimChainProvider{
		t:      t,
		config: config,
	}
}

// Initialize sets up the simulated chain with a prefunded deployer account and returns a chain
// whose Confirm commits a block before waiting for the receipt.
func (p *SimChainProvider) Initialize(_ context.Context) (evm.Chain, error) {
	if p.chain != nil {
		return *p.chain, nil // Already initialized
	}

	key, err := crypto.GenerateKey()
	require.NoError(p.t, err, "failed to generate deployer key")

	adminTransactor, err := bind.NewKeyedTransactorWithChainID(key, simChainID)
	require.NoError(p.t, err)

	genesis := types.GenesisAlloc{
		adminTransactor.From: {Balance: prefundAmountWei},
	}
	for _, addr := range p.config.PrefundAccounts {
		genesis[addr] = types.Account{Balance: prefundAmountWei}
	}

	backend := simulated.NewBackend(genesis, simulated.WithBlockGasLimit(50000000))
	backend.Commit() // Commit the genesis block
	p.t.Cleanup(func() { _ = backend.Close() })

	if p.config.BlockTime > 0 {
		startAutoMine(p.t, backend, p.config.BlockTime)
	}

	client := NewSimClient(p.t, backend)
	chainID := simChainID.Uint64()

	p.chain = &evm.Chain{
		Selector:    chainsel.GETH_TESTNET.Selector,
		EVMChainID:  chainID,
		ChainName:   chainsel.GETH_TESTNET.Name,
		Client:      client,
		DeployerKey: adminTransactor,
		Confirm: func(tx *types.Transaction) (uint64, error) {
			if tx == nil {
				return 0, fmt.Errorf("tx was nil, nothing to confirm for chain %d", chainID)
			}

			client.Commit()

			receipt, err := func() (*types.Receipt, error) {
				ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
				defer cancel()

				return bind.WaitMined(ctx, client, tx)
			}()
			if err != nil {
				return 0, fmt.Errorf("tx %s failed to confirm for chain %d: %w",
					tx.Hash().Hex(), chainID, err,
				)
			}

			if receipt.Status == 0 {
				reason, err := revertReason(
					p.t.Context(), client, adminTransactor.From, tx, receipt,
				)
				if err == nil && reason != "" {
					return 0, fmt.Errorf("tx %s reverted for chain %d: %s",
						tx.Hash().Hex(), chainID, reason,
					)
				}

				return 0, fmt.Errorf("tx %s reverted, could not decode error reason for chain %d",
					tx.Hash().Hex(), chainID,
				)
			}

			return receipt.BlockNumber.Uint64(), nil
		},
	}

	return *p.chain, nil
}

// Name returns the name of the SimChainProvider.
func (*SimChainProvider) Name() string {
	return "Simulated EVM Chain Provider"
}

// Chain returns the simulated chain. You must call Initialize before using this method.
func (p *SimChainProvider) Chain() evm.Chain {
	return *p.chain
}

// startAutoMine triggers the simulated backend to create a new block at intervals defined by
// `blockTime`. After the test is done, it stops the mining goroutine.
func startAutoMine(t *testing.T, backend *simulated.Backend, blockTime time.Duration) {
	t.Helper()

	ctx := t.Context()
	ticker := time.NewTicker(blockTime)
	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				backend.Commit()
			case <-ctx.Done():
				return
			}
		}
	}()
}
