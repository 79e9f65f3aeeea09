package deployment

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bepro/network-deployer/config"
	"github.com/bepro/network-deployer/contracts"
	"github.com/bepro/network-deployer/datastore"
	"github.com/bepro/network-deployer/network"
	"github.com/bepro/network-deployer/operations"
	"github.com/bepro/network-deployer/pkg/logger"
)

// Resolver maps a chain identifier to an RPC endpoint.
type Resolver interface {
	Resolve(ctx context.Context, identifier string) (network.Endpoint, error)
}

var _ Resolver = (*network.Resolver)(nil)

// EnvLoader loads the env file of a chain pass.
type EnvLoader func(filePath string) (*config.Env, error)

// DriverConfig holds the dependencies of a Driver.
type DriverConfig struct {
	// Required: Resolver resolves the network of each chain record.
	Resolver Resolver
	// Required: Connector opens the signing connection of each pass.
	Connector Connector
	// Required: Artifacts provides the contract interface definitions.
	Artifacts *contracts.Store
	// Optional: Persister stores each result. Defaults to datastore.NoopPersister.
	Persister datastore.Persister
	// Optional: StagingAccounts receive test tokens. Defaults to DefaultStagingAccounts.
	StagingAccounts []common.Address
	// Optional: LoadEnv defaults to config.Load.
	LoadEnv EnvLoader
	// Optional: Reporter records the operation reports. Defaults to a memory reporter.
	Reporter operations.Reporter
	// Optional: Logger defaults to a production logger.
	Logger logger.Logger
}

func (c DriverConfig) validate() error {
	if c.Resolver == nil {
		return errors.New("resolver is required")
	}
	if c.Connector == nil {
		return errors.New("connector is required")
	}
	if c.Artifacts == nil {
		return errors.New("artifacts store is required")
	}

	return nil
}

// Driver runs one deployment pass per chain record.
type Driver struct {
	cfg DriverConfig
}

// NewDriver validates cfg and fills in the defaults.
func NewDriver(cfg DriverConfig) (*Driver, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid driver config: %w", err)
	}

	if cfg.Persister == nil {
		cfg.Persister = datastore.NoopPersister{}
	}
	if cfg.StagingAccounts == nil {
		cfg.StagingAccounts = DefaultStagingAccounts
	}
	if cfg.LoadEnv == nil {
		cfg.LoadEnv = config.Load
	}
	if cfg.Reporter == nil {
		cfg.Reporter = operations.NewMemoryReporter()
	}
	if cfg.Logger == nil {
		lggr, err := logger.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create default logger: %w", err)
		}
		cfg.Logger = lggr
	}

	return &Driver{cfg: cfg}, nil
}

// Reporter returns the reporter holding the operation reports of every pass.
func (d *Driver) Reporter() operations.Reporter {
	return d.cfg.Reporter
}

// Run deploys to every chain in order. The first failing pass stops the run; the results of the
// passes completed so far are returned with its error. Staging transfers started by any pass are
// joined before Run returns and their failures are part of the returned error. Connections stay
// open until those transfers are joined.
func (d *Driver) Run(ctx context.Context, chains []ChainConfig) ([]datastore.Result, error) {
	lggr := d.cfg.Logger.Named("driver")
	transfers := NewTransferSet(ctx, lggr)

	var conns connections
	defer conns.closeAll()

	results := make([]datastore.Result, 0, len(chains))
	for i, c := range chains {
		lggr.Infow("Starting deployment pass", "index", i, "network", c.Network)

		result, err := d.runChain(ctx, c, transfers, &conns)
		if err != nil {
			err = fmt.Errorf("chain %d (%s): %w", i, c.Network, err)
			lggr.Errorw("Deployment pass failed", "index", i, "network", c.Network, "error", err)

			return results, errors.Join(err, d.join(lggr, transfers))
		}

		lggr.Infow("Finished deployment pass",
			"index", i, "network", c.Network, "networkAddress", result.Network, "registry", result.Registry)
		results = append(results, result)
	}

	return results, d.join(lggr, transfers)
}

func (d *Driver) join(lggr logger.Logger, transfers *TransferSet) error {
	n := transfers.Launched()
	if n == 0 {
		return nil
	}

	lggr.Infow("Waiting for staging transfers", "count", n)
	if err := transfers.Wait(); err != nil {
		return fmt.Errorf("staging transfers failed: %w", err)
	}
	lggr.Infow("All staging transfers sent", "count", n)

	return nil
}

// runChain resolves, connects, provisions, deploys, configures and persists one chain.
func (d *Driver) runChain(
	ctx context.Context, c ChainConfig, transfers *TransferSet, conns *connections,
) (datastore.Result, error) {
	if err := c.Validate(); err != nil {
		return datastore.Result{}, err
	}

	var (
		tokens Tokens
		err    error
	)
	if !c.DeployTestTokens {
		if tokens, err = ReuseTokens(c); err != nil {
			return datastore.Result{}, err
		}
	}

	env, err := d.cfg.LoadEnv(c.EnvFile)
	if err != nil {
		return datastore.Result{}, fmt.Errorf("failed to load env file: %w", err)
	}
	consts, err := env.DeployConstants()
	if err != nil {
		return datastore.Result{}, err
	}

	ep, err := d.cfg.Resolver.Resolve(ctx, c.Network)
	if err != nil {
		return datastore.Result{}, err
	}

	conn, err := d.cfg.Connector.Connect(ctx, ep, c.PrivateKey)
	if err != nil {
		return datastore.Result{}, fmt.Errorf("failed to connect to %s: %w", c.Network, err)
	}
	conns.add(conn.Close)

	lggr := d.cfg.Logger.Named("deployer").With("network", c.Network, "chainID", conn.ChainID)
	exec := executor{
		b:    operations.NewBundle(func() context.Context { return ctx }, lggr, d.cfg.Reporter),
		deps: OpDeps{Backend: conn.Backend, Artifacts: d.cfg.Artifacts},
	}

	if c.DeployTestTokens {
		p := tokenProvisioner{exec: exec, lggr: lggr, staging: d.cfg.StagingAccounts, transfers: transfers}
		if tokens, err = p.deploy(consts.TokensCap); err != nil {
			return datastore.Result{}, err
		}
	}

	treasury := c.treasury(conn.Backend.From())
	registry, err := deployRegistry(exec, tokens, treasury, consts)
	if err != nil {
		return datastore.Result{}, err
	}
	networkAddr, err := deployNetwork(exec, tokens, registry)
	if err != nil {
		return datastore.Result{}, err
	}
	lggr.Infow("Deployed network contracts", "registry", registry, "network", networkAddr, "treasury", treasury)

	result, err := networkConfigurator{exec: exec, lggr: lggr}.configure(networkAddr, tokens, consts)
	if err != nil {
		return datastore.Result{}, err
	}
	result.ChainID = conn.ChainID
	result.ChainName = conn.ChainName
	result.ChainSelector = conn.ChainSelector

	if err = d.cfg.Persister.Persist(ctx, result); err != nil {
		return datastore.Result{}, err
	}

	return result, nil
}

// connections holds the closers of every opened connection. Background transfers may still be
// using a connection after its pass returns, so closing is deferred to the end of Run.
type connections struct {
	closers []func()
}

func (c *connections) add(closeFn func()) {
	if closeFn != nil {
		c.closers = append(c.closers, closeFn)
	}
}

func (c *connections) closeAll() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
