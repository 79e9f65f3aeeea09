package deploy

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/bepro/network-deployer/contracts"
	"github.com/bepro/network-deployer/datastore"
	"github.com/bepro/network-deployer/deployment"
	"github.com/bepro/network-deployer/network"
	"github.com/bepro/network-deployer/operations"
	"github.com/bepro/network-deployer/pkg/logger"
)

// runDeploy executes the deploy command logic.
// This is separated from the RunE closure to improve testability.
func runDeploy(cmd *cobra.Command, cfg Config, opts Options) error {
	deps := cfg.deps()
	ctx := cmd.Context()

	lggr := cfg.Logger
	if lggr == nil {
		var err error
		if lggr, err = logger.NewWithLevel(opts.LogLevel); err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
	}

	if opts.Output != OutputJSON && opts.Output != OutputTable {
		return fmt.Errorf("unknown output format %q, expected %s or %s", opts.Output, OutputJSON, OutputTable)
	}

	chains, err := chainConfigs(opts)
	if err != nil {
		return err
	}

	staging := deployment.DefaultStagingAccounts
	if opts.StagingAccountsFile != "" {
		if staging, err = deployment.LoadStagingAccounts(opts.StagingAccountsFile); err != nil {
			return err
		}
	}

	networks, err := network.Load(opts.NetworksFiles, network.WithHTTPURLTransformer(os.ExpandEnv))
	if err != nil {
		return err
	}

	persister, closePersister, err := deps.PersisterFactory(ctx, opts.Persist, chains[0].EnvFile, lggr.Named("persister"))
	if err != nil {
		return fmt.Errorf("failed to open persister: %w", err)
	}
	if closePersister != nil {
		defer func() {
			if cerr := closePersister(); cerr != nil {
				lggr.Warnw("Failed to close persister", "error", cerr)
			}
		}()
	}

	reporter := operations.NewMemoryReporter()
	driver, err := deployment.NewDriver(deployment.DriverConfig{
		Resolver:        network.NewResolver(lggr.Named("resolver"), networks, network.NewRegistryClient(opts.RegistryURL)),
		Connector:       deps.ConnectorFactory(opts, lggr),
		Artifacts:       contracts.NewStore(deps.ArtifactsFS(opts.ArtifactsDir)),
		Persister:       persister,
		StagingAccounts: staging,
		LoadEnv:         deps.EnvLoader,
		Reporter:        reporter,
		Logger:          lggr,
	})
	if err != nil {
		return err
	}

	results, runErr := driver.Run(ctx, chains)

	// completed passes are printed even when a later pass failed
	if len(results) > 0 {
		if perr := printResults(cmd, opts.Output, results); perr != nil {
			runErr = errors.Join(runErr, perr)
		}
	}
	if opts.ReportPath != "" {
		if rerr := writeReports(opts.ReportPath, reporter); rerr != nil {
			runErr = errors.Join(runErr, rerr)
		}
	}

	return runErr
}

// chainConfigs builds the chain records from the plan file or the positional flags.
func chainConfigs(opts Options) ([]deployment.ChainConfig, error) {
	if opts.PlanFile != "" {
		return deployment.LoadPlan(opts.PlanFile)
	}

	return opts.Chains.ChainConfigs()
}

// Result summary formats.
const (
	OutputJSON  = "json"
	OutputTable = "table"
)

func printResults(cmd *cobra.Command, format string, results []datastore.Result) error {
	if format == OutputTable {
		printResultsTable(cmd, results)
		return nil
	}

	b, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to marshal results: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))

	return err
}

// printResultsTable renders one row per contract of every chain.
func printResultsTable(cmd *cobra.Command, results []datastore.Result) {
	data := make([][]string, 0, len(results)*6)
	for _, r := range results {
		chain := fmt.Sprintf("%s (%d)", r.ChainName, r.ChainID)
		data = append(data,
			[]string{chain, "network", string(contracts.KindNetworkV2), r.Network.Hex()},
			[]string{chain, "registry", string(contracts.KindNetworkRegistry), r.Registry.Hex()},
		)
		for _, tok := range r.Tokens() {
			data = append(data, []string{chain, string(tok.Role), tok.Symbol, tok.Address.Hex()})
		}
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Chain", "Contract", "Name", "Address"})
	table.SetAutoWrapText(false)
	table.AppendBulk(data)
	table.Render()
}

func writeReports(path string, reporter operations.Reporter) error {
	reports, err := reporter.GetReports()
	if err != nil {
		return err
	}

	b, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to marshal reports: %w", err)
	}
	if err = os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("failed to write reports: %w", err)
	}

	return nil
}
