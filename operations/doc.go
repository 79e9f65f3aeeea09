/*
Package operations provides the Operations API used to execute deployment side effects in a
structured and traceable manner.

Every on-chain action of a chain pass (deploying a contract, sending a configuration
transaction, reading a token name) is expressed as an [Operation]: a versioned, described
handler with typed input, output and dependencies. Executing an operation through
[ExecuteOperation] produces a [Report] which is recorded by the [Bundle]'s [Reporter], so a
run leaves an audit trail of what was deployed and configured, with which arguments, and
what failed.

# Basic Usage

	var DeployToken = operations.NewOperation(
		"deploy-token",
		semver.MustParse("1.0.0"),
		"Deploys an ERC20 token",
		func(b operations.Bundle, deps Deps, input DeployInput) (common.Address, error) {
			return deps.Backend.DeployContract(b.GetContext(), input.Kind, input.Args...)
		},
	)

	bundle := operations.NewBundle(func() context.Context { return ctx }, lggr, operations.NewMemoryReporter())
	report, err := operations.ExecuteOperation(bundle, DeployToken, deps, input)

# Retry

Operations do not retry by default. Use [WithRetry] or [WithRetryConfig] to enable retries
for idempotent operations such as contract reads. Return an error wrapped with
[NewUnrecoverableError] from a handler to stop retrying early.
*/
package operations
