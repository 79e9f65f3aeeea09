package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bepro/network-deployer/pkg/logger"
)

func TestNew(t *testing.T) {
	t.Parallel()

	lggr := logger.Nop()
	cmds := New(lggr)

	require.NotNil(t, cmds)
	assert.Equal(t, lggr, cmds.lggr)
}

func TestCommands_Deploy(t *testing.T) {
	t.Parallel()

	cmds := New(logger.Nop())

	cmd := cmds.Deploy(DeployConfig{})
	require.NotNil(t, cmd)
	assert.Equal(t, "deploy", cmd.Use)

	network := cmd.Flags().Lookup("network")
	require.NotNil(t, network)
	assert.Equal(t, "n", network.Shorthand)
}

func TestCommands_MultipleCommands_ShareLogger(t *testing.T) {
	t.Parallel()

	cmds := New(logger.Nop())

	// the logger is not repeated per command
	deployCmd1 := cmds.Deploy(DeployConfig{})
	deployCmd2 := cmds.Deploy(DeployConfig{})

	require.NotNil(t, deployCmd1)
	require.NotNil(t, deployCmd2)
	assert.NotSame(t, deployCmd1, deployCmd2)
}
