package provider

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/bepro/network-deployer/chain/evm"
	"github.com/bepro/network-deployer/pkg/logger"
)

// Provider initialises a signing connection to a single EVM chain.
type Provider interface {
	Initialize(ctx context.Context) (evm.Chain, error)
	Name() string
	Chain() evm.Chain
}

var (
	_ Provider = (*RPCChainProvider)(nil)
	_ Provider = (*SimChainProvider)(nil)
)

// RPCChainProviderConfig holds the configuration to initialize the RPCChainProvider.
type RPCChainProviderConfig struct {
	// Required: A generator for the deployer key. Use TransactorFromRaw to create a deployer
	// key from a private key.
	DeployerTransactorGen SignerGenerator
	// Required: RPCURL is the HTTP or WS endpoint of the EVM node.
	RPCURL string
	// Required: ConfirmFunctor is a type that generates a confirmation function for transactions.
	ConfirmFunctor ConfirmFunctor
	// Optional: DialAttempts is the number of attempts made to reach the node before giving up.
	// Defaults to 3.
	DialAttempts uint
	// Optional: DialDelay is the base delay between dial attempts. Defaults to 1s.
	DialDelay time.Duration
	// Optional: Logger is the logger to use for the RPCChainProvider. If not provided, a default
	// logger will be used.
	Logger logger.Logger
}

// validate checks if the RPCChainProviderConfig is valid.
func (c RPCChainProviderConfig) validate() error {
	if c.DeployerTransactorGen == nil {
		return errors.New("deployer transactor generator is required")
	}
	if c.ConfirmFunctor == nil {
		return errors.New("confirm functor is required")
	}
	if c.RPCURL == "" {
		return errors.New("rpc url is required")
	}

	return nil
}

// RPCChainProvider is a chain provider that provides a chain that connects to an EVM node via RPC.
// The chain ID is read from the node rather than assumed.
type RPCChainProvider struct {
	config RPCChainProviderConfig

	chain *evm.Chain
}

// NewRPCChainProvider creates a new RPCChainProvider with the given configuration.
func NewRPCChainProvider(config RPCChainProviderConfig) *RPCChainProvider {
	return &RPCChainProvider{
		config: config,
	}
}

// Initialize dials the node, reads its chain ID, derives the deployer key for that chain and
// returns the signing connection.
func (p *RPCChainProvider) Initialize(ctx context.Context) (evm.Chain, error) {
	if p.chain != nil {
		return *p.chain, nil // Already initialized
	}

	if p.config.Logger == nil {
		lggr, err := logger.New()
		if err != nil {
			return evm.Chain{}, fmt.Errorf("failed to create default logger: %w", err)
		}
		p.config.Logger = lggr
	}

	if err := p.config.validate(); err != nil {
		return evm.Chain{}, fmt.Errorf("failed to validate provider config: %w", err)
	}

	attempts := p.config.DialAttempts
	if attempts == 0 {
		attempts = 3
	}
	delay := p.config.DialDelay
	if delay == 0 {
		delay = time.Second
	}

	type dialed struct {
		client  *ethclient.Client
		chainID *big.Int
	}

	conn, err := retry.DoWithData(func() (dialed, error) {
		client, derr := ethclient.DialContext(ctx, p.config.RPCURL)
		if derr != nil {
			return dialed{}, derr
		}

		chainID, cerr := client.ChainID(ctx)
		if cerr != nil {
			client.Close()
			return dialed{}, cerr
		}

		return dialed{client: client, chainID: chainID}, nil
	},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(delay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			p.config.Logger.Warnw("Failed to reach RPC endpoint, retrying",
				"url", p.config.RPCURL, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return evm.Chain{}, fmt.Errorf("failed to connect to %s: %w", p.config.RPCURL, err)
	}

	deployerKey, err := p.config.DeployerTransactorGen.Generate(conn.chainID)
	if err != nil {
		conn.client.Close()
		return evm.Chain{}, fmt.Errorf("failed to generate deployer key: %w", err)
	}

	chainID := conn.chainID.Uint64()
	confirmFunc, err := p.config.ConfirmFunctor.Generate(ctx, chainID, conn.client, deployerKey.From)
	if err != nil {
		conn.client.Close()
		return evm.Chain{}, fmt.Errorf("failed to generate confirm function: %w", err)
	}

	c := evm.Chain{
		EVMChainID:  chainID,
		Client:      conn.client,
		DeployerKey: deployerKey,
		Confirm:     confirmFunc,
	}
	if details, ok := evm.LookupChainDetails(chainID); ok {
		c.Selector = details.ChainSelector
		c.ChainName = details.ChainName
	}

	p.config.Logger.Infow("Connected to chain",
		"chain", c.String(), "deployer", deployerKey.From.Hex())

	p.chain = &c

	return c, nil
}

// Name returns the name of the RPCChainProvider.
func (*RPCChainProvider) Name() string {
	return "EVM RPC Chain Provider"
}

// Chain returns the chain managed by this provider. You must call Initialize before using this
// method to ensure the chain is properly set up.
func (p *RPCChainProvider) Chain() evm.Chain {
	return *p.chain
}
