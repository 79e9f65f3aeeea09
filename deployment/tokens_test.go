package deployment

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bepro/network-deployer/config"
	"github.com/bepro/network-deployer/contracts"
	"github.com/bepro/network-deployer/internal/fakechain"
	"github.com/bepro/network-deployer/pkg/logger"
)

const (
	paymentHex    = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	governanceHex = "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"
	bountyHex     = "0x9fE46736679d2D9a65F0992F2272dE9f3c7fa6e0"
	zeroHex       = "0x0000000000000000000000000000000000000000"
)

func Test_ReuseTokens(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		give        ChainConfig
		want        Tokens
		wantErrIs   error
		wantErrText string
	}{
		{
			name: "all tokens",
			give: ChainConfig{PaymentToken: paymentHex, GovernanceToken: governanceHex, BountyNFT: bountyHex},
			want: Tokens{
				Payment:    common.HexToAddress(paymentHex),
				Governance: common.HexToAddress(governanceHex),
				Bounty:     common.HexToAddress(bountyHex),
			},
		},
		{
			name: "zero governance",
			give: ChainConfig{PaymentToken: paymentHex, GovernanceToken: zeroHex, BountyNFT: bountyHex},
			want: Tokens{
				Payment: common.HexToAddress(paymentHex),
				Bounty:  common.HexToAddress(bountyHex),
			},
		},
		{
			name:        "missing payment and bounty",
			give:        ChainConfig{GovernanceToken: governanceHex},
			wantErrIs:   ErrMissingTokenConfig,
			wantErrText: "paymentToken, bountyNFT",
		},
		{
			name:        "zero payment",
			give:        ChainConfig{PaymentToken: zeroHex, GovernanceToken: governanceHex, BountyNFT: bountyHex},
			wantErrIs:   ErrMissingTokenConfig,
			wantErrText: "cannot be the zero address",
		},
		{
			name:        "malformed address",
			give:        ChainConfig{PaymentToken: "0xnothex", GovernanceToken: governanceHex, BountyNFT: bountyHex},
			wantErrIs:   ErrInvalidChainConfig,
			wantErrText: "paymentToken",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ReuseTokens(tt.give)
			if tt.wantErrIs != nil {
				require.ErrorIs(t, err, tt.wantErrIs)
				require.ErrorContains(t, err, tt.wantErrText)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Reward == (common.Address{}))
		})
	}
}

func Test_Tokens_LockTokenAndFungible(t *testing.T) {
	t.Parallel()

	payment, governance, reward := common.HexToAddress(paymentHex), common.HexToAddress(governanceHex), common.HexToAddress(bountyHex)

	withGov := Tokens{Payment: payment, Governance: governance, Reward: reward}
	assert.Equal(t, governance, withGov.LockToken())
	assert.Equal(t, []common.Address{payment, governance, reward}, withGov.Fungible())

	noGov := Tokens{Payment: payment}
	assert.Equal(t, payment, noGov.LockToken())
	assert.Equal(t, []common.Address{payment}, noGov.Fungible())
}

func Test_tokenProvisioner_deploy(t *testing.T) {
	t.Parallel()

	exec, chain := newTestExecutor(t)
	staging := DefaultStagingAccounts[:2]
	transfers := NewTransferSet(t.Context(), logger.Test(t))

	p := tokenProvisioner{exec: exec, lggr: logger.Test(t), staging: staging, transfers: transfers}

	got, err := p.deploy(config.Amount("1000000000"))
	require.NoError(t, err)
	require.NoError(t, transfers.Wait())

	assert.Equal(t, 3*len(staging), transfers.Launched())
	assert.Len(t, chain.Deployed(contracts.KindERC20), 3)
	assert.Equal(t, []common.Address{got.Bounty}, chain.Deployed(contracts.KindBountyToken))

	// the bounty token is deployed once the three ERC20s are mined
	for _, call := range chain.Calls()[:3] {
		assert.Equal(t, contracts.KindERC20, call.Kind)
	}

	for _, deploy := range chain.CallsTo(fakechain.MethodDeploy)[:3] {
		assert.Equal(t, tokens(1_000_000_000), deploy.Args[2])
		assert.Equal(t, testDeployer, deploy.Args[3])
	}

	for i, token := range []common.Address{got.Payment, got.Governance, got.Reward} {
		name, symbol, nerr := exec.nameSymbol(contracts.KindERC20, token)
		require.NoError(t, nerr)
		assert.Equal(t, testTokens[i].name, name)
		assert.Equal(t, testTokens[i].symbol, symbol)
		for _, account := range staging {
			assert.Equal(t, tokens(10_000_000), chain.BalanceOf(token, account))
		}
	}
}

func Test_tokenProvisioner_deploy_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing cap", func(t *testing.T) {
		t.Parallel()

		exec, chain := newTestExecutor(t)
		p := tokenProvisioner{exec: exec, lggr: logger.Test(t), transfers: NewTransferSet(t.Context(), logger.Test(t))}

		_, err := p.deploy("")
		require.ErrorIs(t, err, ErrInvalidChainConfig)
		assert.Empty(t, chain.Calls())
	})

	t.Run("fractional cap", func(t *testing.T) {
		t.Parallel()

		exec, _ := newTestExecutor(t)
		p := tokenProvisioner{exec: exec, lggr: logger.Test(t), transfers: NewTransferSet(t.Context(), logger.Test(t))}

		_, err := p.deploy("1.0000000000000000001")
		require.ErrorIs(t, err, ErrInvalidChainConfig)
	})

	t.Run("failing deployment", func(t *testing.T) {
		t.Parallel()

		exec, chain := newTestExecutor(t)
		chain.FailOn(contracts.KindBountyToken, fakechain.MethodDeploy, errors.New("out of gas"))
		transfers := NewTransferSet(t.Context(), logger.Test(t))
		p := tokenProvisioner{exec: exec, lggr: logger.Test(t), staging: DefaultStagingAccounts, transfers: transfers}

		_, err := p.deploy("1000000000")
		require.ErrorContains(t, err, "failed to deploy ~BEPRO")
		require.ErrorContains(t, err, "out of gas")
		assert.Zero(t, transfers.Launched())
	})
}
