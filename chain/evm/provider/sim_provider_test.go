package provider

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_SimChainProvider_Initialize(t *testing.T) {
	t.Parallel()

	recipient := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	p := NewSimChainProvider(t, SimChainProviderConfig{
		PrefundAccounts: []common.Address{recipient},
	})

	got, err := p.Initialize(t.Context())
	require.NoError(t, err)

	assert.Equal(t, uint64(1337), got.EVMChainID)
	assert.NotEmpty(t, got.ChainName)
	assert.Equal(t, "Simulated EVM Chain Provider", p.Name())

	balance, err := got.Client.BalanceAt(t.Context(), recipient, nil)
	require.NoError(t, err)
	assert.Equal(t, prefundAmountWei, balance)
}

func Test_SimChainProvider_Confirm(t *testing.T) {
	t.Parallel()

	p := NewSimChainProvider(t, SimChainProviderConfig{})
	c, err := p.Initialize(t.Context())
	require.NoError(t, err)

	_, err = c.Confirm(nil)
	require.ErrorContains(t, err, "tx was nil")

	nonce, err := c.Client.PendingNonceAt(t.Context(), c.DeployerAddress())
	require.NoError(t, err)
	gasPrice, err := c.Client.SuggestGasPrice(t.Context())
	require.NoError(t, err)

	tx := types.NewTransaction(nonce, common.HexToAddress("0x1"), big.NewInt(1), 21000, gasPrice, nil)
	signed, err := c.DeployerKey.Signer(c.DeployerAddress(), tx)
	require.NoError(t, err)
	require.NoError(t, c.Client.SendTransaction(t.Context(), signed))

	block, err := c.Confirm(signed)
	require.NoError(t, err)
	assert.Positive(t, block)
}

func Test_ConfirmFuncGeth_WithSimClient(t *testing.T) {
	t.Parallel()

	p := NewSimChainProvider(t, SimChainProviderConfig{})
	c, err := p.Initialize(t.Context())
	require.NoError(t, err)

	client, ok := c.Client.(*SimClient)
	require.True(t, ok)

	confirm, err := ConfirmFuncGeth(5*time.Second, WithTickInterval(10*time.Millisecond)).
		Generate(t.Context(), c.EVMChainID, client, c.DeployerAddress())
	require.NoError(t, err)

	_, err = confirm(nil)
	require.ErrorContains(t, err, "tx was nil, nothing to confirm for chain 1337")

	nonce, err := client.PendingNonceAt(t.Context(), c.DeployerAddress())
	require.NoError(t, err)
	gasPrice, err := client.SuggestGasPrice(t.Context())
	require.NoError(t, err)

	tx := types.NewTransaction(nonce, common.HexToAddress("0x2"), big.NewInt(1), 21000, gasPrice, nil)
	signed, err := c.DeployerKey.Signer(c.DeployerAddress(), tx)
	require.NoError(t, err)
	require.NoError(t, client.SendTransaction(t.Context(), signed))
	client.Commit()

	block, err := confirm(signed)
	require.NoError(t, err)
	assert.Positive(t, block)
}
