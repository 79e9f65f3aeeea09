// Package commands provides the CLI command packages of the deployer.
//
// There are two ways to use commands from this package:
//
// 1. Via the Commands factory (recommended for most use cases):
//
//	commands := commands.New(lggr)
//	app.AddCommand(commands.Deploy(commands.DeployConfig{}))
//
// 2. Via direct package imports (for advanced DI/testing):
//
//	import "github.com/bepro/network-deployer/pkg/commands/deploy"
//
//	app.AddCommand(deploy.NewCommand(deploy.Config{
//	    Logger: lggr,
//	    Deps:   deploy.Deps{...},  // inject fakes for testing
//	}))
package commands

import (
	"github.com/spf13/cobra"

	"github.com/bepro/network-deployer/pkg/commands/deploy"
	"github.com/bepro/network-deployer/pkg/logger"
)

// Commands provides a factory for creating CLI commands with shared configuration.
// This allows setting the logger once and reusing it across all commands.
type Commands struct {
	lggr logger.Logger
}

// New creates a new Commands factory with the given logger. A nil logger lets each command build
// its own from the --log-level flag.
func New(lggr logger.Logger) *Commands {
	return &Commands{lggr: lggr}
}

// DeployConfig holds configuration for the deploy command.
type DeployConfig struct {
	// Deps overrides the production dependencies of the command.
	Deps deploy.Deps
}

// Deploy creates the deploy command.
//
// Usage:
//
//	cmds := commands.New(lggr)
//	rootCmd.AddCommand(cmds.Deploy(commands.DeployConfig{}))
func (c *Commands) Deploy(cfg DeployConfig) *cobra.Command {
	return deploy.NewCommand(deploy.Config{
		Logger: c.lggr,
		Deps:   cfg.Deps,
	})
}
