package deployment

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Masterminds/semver/v3"
	"github.com/ethereum/go-ethereum/common"

	"github.com/bepro/network-deployer/config"
	"github.com/bepro/network-deployer/contracts"
	"github.com/bepro/network-deployer/operations"
)

// OpDeps are the dependencies of the contract operations.
type OpDeps struct {
	Backend   contracts.Backend
	Artifacts *contracts.Store
}

// DeployInput is the input of OpDeployContract.
type DeployInput struct {
	Kind contracts.Kind `json:"kind"`
	Args []any          `json:"args"`
}

// ContractCallInput is the input of OpTransact and OpCall.
type ContractCallInput struct {
	Kind   contracts.Kind `json:"kind"`
	To     common.Address `json:"to"`
	Method string         `json:"method"`
	Args   []any          `json:"args"`
}

var (
	OpDeployContract = operations.NewOperation(
		"deploy-contract",
		semver.MustParse("1.0.0"),
		"Deploys a contract from its artifact",
		func(b operations.Bundle, deps OpDeps, in DeployInput) (common.Address, error) {
			a, err := deps.Artifacts.Load(in.Kind)
			if err != nil {
				return common.Address{}, operations.NewUnrecoverableError(err)
			}

			b.Logger.Debugw(fmt.Sprintf("Deploying %s with args", in.Kind), "args", in.Args)

			return deps.Backend.DeployContract(b.GetContext(), a, in.Args...)
		},
	)

	OpTransact = operations.NewOperation(
		"transact",
		semver.MustParse("1.0.0"),
		"Sends a contract transaction and waits for it to be mined",
		func(b operations.Bundle, deps OpDeps, in ContractCallInput) (common.Address, error) {
			a, err := deps.Artifacts.Load(in.Kind)
			if err != nil {
				return common.Address{}, operations.NewUnrecoverableError(err)
			}

			b.Logger.Debugw(fmt.Sprintf("Calling %s.%s", in.Kind, in.Method), "to", in.To, "args", in.Args)

			return in.To, deps.Backend.Transact(b.GetContext(), a, in.To, in.Method, in.Args...)
		},
	)

	OpCall = operations.NewOperation(
		"call",
		semver.MustParse("1.0.0"),
		"Reads a value from a contract",
		func(b operations.Bundle, deps OpDeps, in ContractCallInput) ([]any, error) {
			a, err := deps.Artifacts.Load(in.Kind)
			if err != nil {
				return nil, operations.NewUnrecoverableError(err)
			}

			return deps.Backend.Call(b.GetContext(), a, in.To, in.Method, in.Args...)
		},
	)
)

// executor runs the contract operations of one chain pass.
type executor struct {
	b    operations.Bundle
	deps OpDeps
}

func (e executor) deploy(kind contracts.Kind, args ...any) (common.Address, error) {
	report, err := operations.ExecuteOperation(e.b, OpDeployContract, e.deps, DeployInput{Kind: kind, Args: args})
	if err != nil {
		return common.Address{}, err
	}

	return report.Output, nil
}

func (e executor) transact(kind contracts.Kind, to common.Address, method string, args ...any) error {
	_, err := operations.ExecuteOperation(e.b, OpTransact, e.deps, ContractCallInput{
		Kind: kind, To: to, Method: method, Args: args,
	})

	return err
}

func (e executor) call(kind contracts.Kind, to common.Address, method string, args ...any) ([]any, error) {
	report, err := operations.ExecuteOperation(e.b, OpCall, e.deps,
		ContractCallInput{Kind: kind, To: to, Method: method, Args: args},
		operations.WithRetry[ContractCallInput, OpDeps](),
	)
	if err != nil {
		return nil, err
	}

	return report.Output, nil
}

func (e executor) address(kind contracts.Kind, to common.Address, method string) (common.Address, error) {
	return contracts.Single[common.Address](e.call(kind, to, method))
}

func (e executor) decimals(token common.Address) (uint8, error) {
	return contracts.Single[uint8](e.call(contracts.KindERC20, token, "decimals"))
}

// units scales a whole token amount by the decimals of token.
func (e executor) units(token common.Address, amount config.Amount) (*big.Int, error) {
	d, err := e.decimals(token)
	if err != nil {
		return nil, err
	}

	return amount.Units(d)
}

// withContext returns an executor whose operations run with ctx.
func (e executor) withContext(ctx context.Context) executor {
	e.b = operations.NewBundle(func() context.Context { return ctx }, e.b.Logger, e.b.Reporter())

	return e
}

// nameSymbol reads the name and symbol of an ERC20 or bounty token.
func (e executor) nameSymbol(kind contracts.Kind, token common.Address) (name, symbol string, err error) {
	if name, err = contracts.Single[string](e.call(kind, token, "name")); err != nil {
		return "", "", err
	}
	if symbol, err = contracts.Single[string](e.call(kind, token, "symbol")); err != nil {
		return "", "", err
	}

	return name, symbol, nil
}
