package deployment

import (
	"context"
	"time"

	"github.com/bepro/network-deployer/chain/evm/provider"
	"github.com/bepro/network-deployer/contracts"
	"github.com/bepro/network-deployer/network"
	"github.com/bepro/network-deployer/pkg/logger"
)

// Connection is the signing connection of one chain pass.
type Connection struct {
	Backend   contracts.Backend
	ChainID   uint64
	ChainName string
	// ChainSelector is the chain-selectors selector, 0 for chains it does not know.
	ChainSelector uint64
	// Close releases the connection. It may be nil.
	Close func()
}

// Connector opens a signing connection to a resolved endpoint.
type Connector interface {
	Connect(ctx context.Context, ep network.Endpoint, privateKey string) (Connection, error)
}

var _ Connector = RPCConnector{}

// RPCConnector connects over JSON-RPC with a raw private key.
type RPCConnector struct {
	// ConfirmTimeout bounds the wait for each transaction to be mined.
	ConfirmTimeout time.Duration
	// DialAttempts is passed to the provider; zero keeps its default.
	DialAttempts uint
	// GasLimit fixes the gas limit of every transaction; zero estimates it.
	GasLimit uint64
	Logger   logger.Logger
}

// Connect implements Connector.
func (c RPCConnector) Connect(ctx context.Context, ep network.Endpoint, privateKey string) (Connection, error) {
	if c.Logger == nil {
		c.Logger = logger.Nop()
	}

	p := provider.NewRPCChainProvider(provider.RPCChainProviderConfig{
		DeployerTransactorGen: provider.TransactorFromRaw(privateKey, provider.WithGasLimit(c.GasLimit)),
		RPCURL:                ep.RPCURL,
		ConfirmFunctor:        provider.ConfirmFuncGeth(c.ConfirmTimeout),
		DialAttempts:          c.DialAttempts,
		Logger:                c.Logger,
	})

	chain, err := p.Initialize(ctx)
	if err != nil {
		return Connection{}, err
	}

	backend, err := contracts.NewEVMBackend(chain, c.Logger)
	if err != nil {
		return Connection{}, err
	}

	conn := Connection{
		Backend:       backend,
		ChainID:       chain.EVMChainID,
		ChainName:     chain.Name(),
		ChainSelector: chain.ChainSelector(),
	}
	if closer, ok := chain.Client.(interface{ Close() }); ok {
		conn.Close = closer.Close
	}

	return conn, nil
}
