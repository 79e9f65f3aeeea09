package contracts

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/bepro/network-deployer/chain/evm"
	"github.com/bepro/network-deployer/pkg/logger"
)

var _ Backend = (*EVMBackend)(nil)

// EVMBackend is a Backend over an evm.Chain. Submissions share one nonce manager so concurrent
// transactions of the deployer never collide.
type EVMBackend struct {
	chain  evm.Chain
	nonces *evm.NonceManager
	lggr   logger.Logger
}

// NewEVMBackend returns a Backend signing with the chain's deployer key.
func NewEVMBackend(chain evm.Chain, lggr logger.Logger) (*EVMBackend, error) {
	if chain.Client == nil {
		return nil, errors.New("chain has no client")
	}
	if chain.DeployerKey == nil {
		return nil, errors.New("chain has no deployer key")
	}
	if chain.Confirm == nil {
		return nil, errors.New("chain has no confirm function")
	}

	return &EVMBackend{
		chain:  chain,
		nonces: evm.NewNonceManager(chain.Client, chain.DeployerAddress()),
		lggr:   lggr,
	}, nil
}

// From implements Backend.
func (b *EVMBackend) From() common.Address {
	return b.chain.DeployerAddress()
}

// Chain returns the underlying chain.
func (b *EVMBackend) Chain() evm.Chain {
	return b.chain
}

// transactOpts returns a copy of the deployer key bound to ctx and nonce.
func (b *EVMBackend) transactOpts(ctx context.Context, nonce uint64) *bind.TransactOpts {
	opts := *b.chain.DeployerKey
	opts.Context = ctx
	opts.Nonce = new(big.Int).SetUint64(nonce)

	return &opts
}

// DeployContract implements Backend.
func (b *EVMBackend) DeployContract(ctx context.Context, a *Artifact, args ...any) (common.Address, error) {
	if len(a.Bytecode) == 0 {
		return common.Address{}, fmt.Errorf("artifact of %s has no bytecode", a.Kind)
	}

	var addr common.Address
	tx, err := b.nonces.Submit(ctx, func(nonce uint64) (*types.Transaction, error) {
		deployed, tx, _, err := bind.DeployContract(
			b.transactOpts(ctx, nonce), a.ABI, a.Bytecode, b.chain.Client, args...,
		)
		addr = deployed

		return tx, err
	})
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to deploy %s on %s: %w", a.Kind, b.chain, evm.WithRevertData(err))
	}

	if _, err := b.chain.Confirm(tx); err != nil {
		return common.Address{}, fmt.Errorf("failed to confirm %s deployment on %s: %w", a.Kind, b.chain, err)
	}

	b.lggr.Debugw("Contract deployed", "kind", a.Kind, "address", addr.Hex(), "tx", tx.Hash().Hex())

	return addr, nil
}

// Transact implements Backend.
func (b *EVMBackend) Transact(
	ctx context.Context, a *Artifact, to common.Address, method string, args ...any,
) error {
	bound := bind.NewBoundContract(to, a.ABI, b.chain.Client, b.chain.Client, b.chain.Client)

	tx, err := b.nonces.Submit(ctx, func(nonce uint64) (*types.Transaction, error) {
		return bound.Transact(b.transactOpts(ctx, nonce), method, args...)
	})
	if err != nil {
		return fmt.Errorf("failed to send %s.%s to %s: %w", a.Kind, method, to.Hex(), evm.WithRevertData(err))
	}

	if _, err := b.chain.Confirm(tx); err != nil {
		return fmt.Errorf("failed to confirm %s.%s on %s: %w", a.Kind, method, to.Hex(), err)
	}

	return nil
}

// Call implements Backend.
func (b *EVMBackend) Call(
	ctx context.Context, a *Artifact, to common.Address, method string, args ...any,
) ([]any, error) {
	bound := bind.NewBoundContract(to, a.ABI, b.chain.Client, b.chain.Client, b.chain.Client)

	var out []any
	if err := bound.Call(&bind.CallOpts{Context: ctx, From: b.From()}, &out, method, args...); err != nil {
		return nil, fmt.Errorf("failed to call %s.%s on %s: %w", a.Kind, method, to.Hex(), evm.WithRevertData(err))
	}

	return out, nil
}
