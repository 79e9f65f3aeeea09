package contracts

import (
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/smartcontractkit/chainlink-evm/gethwrappers/shared/generated/initial/link_token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bepro/network-deployer/chain/evm"
	"github.com/bepro/network-deployer/chain/evm/provider"
	"github.com/bepro/network-deployer/pkg/logger"
)

func newSimBackend(t *testing.T) (*EVMBackend, *Artifact) {
	t.Helper()

	chain, err := provider.NewSimChainProvider(t, provider.SimChainProviderConfig{}).Initialize(t.Context())
	require.NoError(t, err)

	backend, err := NewEVMBackend(chain, logger.Test(t))
	require.NoError(t, err)

	token, err := NewArtifact(KindERC20, link_token.LinkTokenABI, link_token.LinkTokenBin)
	require.NoError(t, err)

	return backend, token
}

func Test_NewEVMBackend_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewEVMBackend(evm.Chain{}, logger.Nop())
	require.ErrorContains(t, err, "chain has no client")
}

func Test_EVMBackend_DeployCallTransact(t *testing.T) {
	t.Parallel()

	backend, token := newSimBackend(t)
	ctx := t.Context()

	addr, err := backend.DeployContract(ctx, token)
	require.NoError(t, err)
	require.False(t, evm.IsZeroAddress(addr))

	symbol, err := Single[string](backend.Call(ctx, token, addr, "symbol"))
	require.NoError(t, err)
	assert.Equal(t, "LINK", symbol)

	decimals, err := Single[uint8](backend.Call(ctx, token, addr, "decimals"))
	require.NoError(t, err)
	assert.Equal(t, uint8(18), decimals)

	require.NoError(t, backend.Transact(ctx, token, addr, "grantMintRole", backend.From()))
	require.NoError(t, backend.Transact(ctx, token, addr, "mint", backend.From(), big.NewInt(1_000)))

	// concurrent transfers from one key must not collide on nonces
	recipients := []common.Address{
		common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"),
		common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"),
		common.HexToAddress("0x90F79bf6EB2c4f870365E785982E1f101E93b906"),
	}
	var wg sync.WaitGroup
	errs := make([]error, len(recipients))
	for i, to := range recipients {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = backend.Transact(ctx, token, addr, "transfer", to, big.NewInt(100))
		}()
	}
	wg.Wait()

	for i, to := range recipients {
		require.NoError(t, errs[i])

		balance, err := Single[*big.Int](backend.Call(ctx, token, addr, "balanceOf", to))
		require.NoError(t, err)
		assert.Equal(t, int64(100), balance.Int64())
	}
}

func Test_EVMBackend_Errors(t *testing.T) {
	t.Parallel()

	backend, token := newSimBackend(t)
	ctx := t.Context()

	_, err := backend.DeployContract(ctx, &Artifact{Kind: KindNetworkV2, ABI: token.ABI})
	require.ErrorContains(t, err, "artifact of Network_v2 has no bytecode")

	addr, err := backend.DeployContract(ctx, token)
	require.NoError(t, err)

	// minting without the mint role reverts
	err = backend.Transact(ctx, token, addr, "mint", backend.From(), big.NewInt(1))
	require.Error(t, err)

	_, err = backend.Call(ctx, token, addr, "doesNotExist")
	require.ErrorContains(t, err, "failed to call ERC20.doesNotExist")
}
