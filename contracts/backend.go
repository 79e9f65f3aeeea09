package contracts

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// Backend deploys and talks to contracts on one chain on behalf of a single deployer account.
// Implementations must be safe for concurrent use.
type Backend interface {
	// From is the deployer account.
	From() common.Address
	// DeployContract submits the creation transaction of a, waits for it and returns the new
	// contract address.
	DeployContract(ctx context.Context, a *Artifact, args ...any) (common.Address, error)
	// Transact submits a state changing call and waits for its confirmation.
	Transact(ctx context.Context, a *Artifact, to common.Address, method string, args ...any) error
	// Call performs a read only call and returns the unpacked outputs.
	Call(ctx context.Context, a *Artifact, to common.Address, method string, args ...any) ([]any, error)
}
