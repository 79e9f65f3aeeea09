// Package main is the deploy-multichain CLI: it deploys and registers bounty networks on one or
// more EVM chains.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bepro/network-deployer/pkg/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := commands.New(nil).Deploy(commands.DeployConfig{})
	cmd.Use = "deploy-multichain"

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
