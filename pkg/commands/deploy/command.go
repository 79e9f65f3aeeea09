package deploy

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/bepro/network-deployer/deployment"
	"github.com/bepro/network-deployer/network"
	"github.com/bepro/network-deployer/pkg/logger"
)

// Config holds the configuration of the deploy command.
type Config struct {
	// Logger is the logger to use. Optional: when nil a logger is built with --log-level.
	Logger logger.Logger

	// Deps holds optional dependencies that can be overridden.
	// If fields are nil, production defaults are used.
	Deps Deps
}

// deps returns the Deps with defaults applied.
func (c *Config) deps() *Deps {
	c.Deps.applyDefaults()

	return &c.Deps
}

// Options are the parsed flags of the deploy command.
type Options struct {
	Chains deployment.Flags

	PlanFile            string
	ArtifactsDir        string
	NetworksFiles       []string
	StagingAccountsFile string
	RegistryURL         string
	Persist             string
	ConfirmTimeout      time.Duration
	GasLimit            uint64
	ReportPath          string
	Output              string
	LogLevel            string
}

const (
	deployShort = "Deploy bounty networks to one or more chains"
	deployLong  = `Deploys the token, registry and network contracts of a bounty network to every
given chain, configures and registers the network, and prints a summary per chain.

Per chain options are positional: the n-th value of a repeatable flag belongs to the n-th
--network and falls back to the first value when missing.`
	deployExample = `  deploy-multichain -n seneca -n 1500 -k $KEY -d -e .env.seneca -e .env.1500
  deploy-multichain -n irene -k $KEY -p 0xPayment -g 0x0000000000000000000000000000000000000000 -b 0xNFT
  deploy-multichain --plan plan.yaml --persist postgres`
)

// NewCommand creates the deploy command.
//
// Usage:
//
//	rootCmd.AddCommand(deploy.NewCommand(deploy.Config{Logger: lggr}))
func NewCommand(cfg Config) *cobra.Command {
	cfg.deps()

	var opts Options

	cmd := &cobra.Command{
		Use:           "deploy",
		Short:         deployShort,
		Long:          deployLong,
		Example:       deployExample,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDeploy(cmd, cfg, opts)
		},
	}

	f := cmd.Flags()
	f.StringSliceVarP(&opts.Chains.Networks, "network", "n", nil,
		"Networks to deploy to: a known network name or a chain ID as seen on https://chainid.network/")
	f.BoolVarP(&opts.Chains.DeployTestTokens, "deployTestTokens", "d", false,
		"Deploy test tokens (takes precedence over -p, -g and -b)")
	f.StringSliceVarP(&opts.Chains.PaymentTokens, "paymentToken", "p", nil, "Transactional token address per network")
	f.StringSliceVarP(&opts.Chains.GovernanceTokens, "governanceToken", "g", nil,
		"Governance token address per network, the zero address for none")
	f.StringSliceVarP(&opts.Chains.BountyNFTs, "bountyNFT", "b", nil, "Bounty token address per network")
	f.StringSliceVarP(&opts.Chains.PrivateKeys, "privateKey", "k", nil, "Owner private key per network")
	f.StringSliceVarP(&opts.Chains.Treasuries, "treasury", "t", nil,
		"Treasury address per network (defaults to the owner address)")
	f.StringSliceVarP(&opts.Chains.EnvFiles, "envFile", "e", nil, "Env file per network")

	f.StringVar(&opts.PlanFile, "plan", "", "YAML deployment plan, instead of the per network flags")
	f.StringVar(&opts.ArtifactsDir, "artifacts", "artifacts", "Directory of the contract artifacts (<Kind>.json)")
	f.StringSliceVar(&opts.NetworksFiles, "networks-file", nil, "YAML manifests of additional known networks")
	f.StringVar(&opts.StagingAccountsFile, "staging-accounts-file", "",
		"YAML list of the accounts funded with test tokens")
	f.StringVar(&opts.RegistryURL, "registry-url", network.DefaultRegistryURL, "Chain registry document URL")
	f.StringVar(&opts.Persist, "persist", PersistNone, "Where to save the results: none or postgres")
	f.DurationVar(&opts.ConfirmTimeout, "confirm-timeout", 5*time.Minute, "Maximum wait for each transaction")
	f.Uint64Var(&opts.GasLimit, "gas-limit", 0, "Fixed gas limit per transaction, 0 to estimate")
	f.StringVar(&opts.ReportPath, "report", "", "Write the operation reports to this JSON file")
	f.StringVarP(&opts.Output, "output", "o", OutputJSON, "Result summary format: json or table")
	f.StringVar(&opts.LogLevel, "log-level", "info", "Log level")

	cmd.MarkFlagsOneRequired("network", "plan")
	cmd.MarkFlagsMutuallyExclusive("network", "plan")
	cmd.MarkFlagsMutuallyExclusive("privateKey", "plan")

	return cmd
}
