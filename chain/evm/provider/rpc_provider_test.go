package provider

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bepro/network-deployer/pkg/logger"
)

func Test_RPCChainProviderConfig_validate(t *testing.T) {
	t.Parallel()

	confirm := ConfirmFuncGeth(10 * time.Millisecond)

	tests := []struct {
		name    string
		config  RPCChainProviderConfig
		wantErr string
	}{
		{
			name: "valid config",
			config: RPCChainProviderConfig{
				DeployerTransactorGen: TransactorFromRaw(testPrivKey),
				RPCURL:                "http://localhost:8545",
				ConfirmFunctor:        confirm,
			},
		},
		{
			name: "missing deployer transactor generator",
			config: RPCChainProviderConfig{
				RPCURL:         "http://localhost:8545",
				ConfirmFunctor: confirm,
			},
			wantErr: "deployer transactor generator is required",
		},
		{
			name: "missing confirm functor",
			config: RPCChainProviderConfig{
				DeployerTransactorGen: TransactorFromRaw(testPrivKey),
				RPCURL:                "http://localhost:8545",
			},
			wantErr: "confirm functor is required",
		},
		{
			name: "missing rpc url",
			config: RPCChainProviderConfig{
				DeployerTransactorGen: TransactorFromRaw(testPrivKey),
				ConfirmFunctor:        confirm,
			},
			wantErr: "rpc url is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.config.validate()
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func Test_RPCChainProvider_Initialize(t *testing.T) {
	t.Parallel()

	srv, calls := newFakeRPCServer(t, "0x539")

	p := NewRPCChainProvider(RPCChainProviderConfig{
		DeployerTransactorGen: TransactorFromRaw(testPrivKey),
		RPCURL:                srv.URL,
		ConfirmFunctor:        ConfirmFuncGeth(time.Second),
		Logger:                logger.Test(t),
	})

	got, err := p.Initialize(t.Context())
	require.NoError(t, err)

	assert.Equal(t, uint64(1337), got.EVMChainID)
	assert.NotNil(t, got.Confirm)
	assert.NotZero(t, got.Selector)
	assert.Equal(t, got.DeployerAddress(), p.Chain().DeployerAddress())

	// A second call reuses the initialised chain.
	before := calls.Load()
	_, err = p.Initialize(t.Context())
	require.NoError(t, err)
	assert.Equal(t, before, calls.Load())
}

func Test_RPCChainProvider_Initialize_UnreachableEndpoint(t *testing.T) {
	t.Parallel()

	p := NewRPCChainProvider(RPCChainProviderConfig{
		DeployerTransactorGen: TransactorFromRaw(testPrivKey),
		RPCURL:                "http://127.0.0.1:1",
		ConfirmFunctor:        ConfirmFuncGeth(time.Second),
		DialAttempts:          2,
		DialDelay:             time.Millisecond,
		Logger:                logger.Nop(),
	})

	_, err := p.Initialize(t.Context())
	require.ErrorContains(t, err, "failed to connect to http://127.0.0.1:1")
}
