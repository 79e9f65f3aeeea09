// Package deploy provides the CLI command that deploys bounty networks to one or more chains.
package deploy

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/bepro/network-deployer/config"
	"github.com/bepro/network-deployer/datastore"
	"github.com/bepro/network-deployer/deployment"
	"github.com/bepro/network-deployer/pkg/logger"
)

// Persist modes of the --persist flag.
const (
	PersistNone     = "none"
	PersistPostgres = "postgres"
)

// PersisterFactoryFunc opens the persister selected by the --persist flag. envFile is the env
// file holding the NEXT_DB_* settings. The returned close function may be nil.
type PersisterFactoryFunc func(
	ctx context.Context, mode string, envFile string, lggr logger.Logger,
) (datastore.Persister, func() error, error)

// ConnectorFactoryFunc builds the chain connector from the parsed options.
type ConnectorFactoryFunc func(opts Options, lggr logger.Logger) deployment.Connector

// ArtifactsFSFunc opens the artifacts directory.
type ArtifactsFSFunc func(dir string) fs.FS

// defaultPersisterFactory is the production implementation backed by postgres.
func defaultPersisterFactory(
	ctx context.Context, mode string, envFile string, lggr logger.Logger,
) (datastore.Persister, func() error, error) {
	switch mode {
	case "", PersistNone:
		return datastore.NoopPersister{}, nil, nil
	case PersistPostgres:
		env, err := config.Load(envFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load database settings: %w", err)
		}
		dsn, err := env.DatabaseURL()
		if err != nil {
			return nil, nil, err
		}
		p, err := datastore.OpenPostgres(ctx, dsn, lggr)
		if err != nil {
			return nil, nil, err
		}

		return p, p.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown persist mode %q, expected %s or %s", mode, PersistNone, PersistPostgres)
	}
}

// defaultConnectorFactory connects over JSON-RPC.
func defaultConnectorFactory(opts Options, lggr logger.Logger) deployment.Connector {
	return deployment.RPCConnector{
		ConfirmTimeout: opts.ConfirmTimeout,
		GasLimit:       opts.GasLimit,
		Logger:         lggr.Named("provider"),
	}
}

// Deps holds the injectable dependencies of the deploy command.
// All fields are optional; nil values will use production defaults.
type Deps struct {
	// ConnectorFactory builds the chain connector.
	// Default: deployment.RPCConnector
	ConnectorFactory ConnectorFactoryFunc

	// PersisterFactory opens the result persister.
	// Default: no-op or postgres, depending on --persist
	PersisterFactory PersisterFactoryFunc

	// EnvLoader loads the env file of each chain.
	// Default: config.Load
	EnvLoader deployment.EnvLoader

	// ArtifactsFS opens the artifacts directory.
	// Default: os.DirFS
	ArtifactsFS ArtifactsFSFunc
}

// applyDefaults fills in nil dependencies with production defaults.
func (d *Deps) applyDefaults() {
	if d.ConnectorFactory == nil {
		d.ConnectorFactory = defaultConnectorFactory
	}
	if d.PersisterFactory == nil {
		d.PersisterFactory = defaultPersisterFactory
	}
	if d.EnvLoader == nil {
		d.EnvLoader = config.Load
	}
	if d.ArtifactsFS == nil {
		d.ArtifactsFS = os.DirFS
	}
}
