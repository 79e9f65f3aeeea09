package provider

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/crypto"
)

// SignerGenerator generates the geth *bind.TransactOpts used to sign the deployer's transactions.
type SignerGenerator interface {
	Generate(chainID *big.Int) (*bind.TransactOpts, error)
}

var _ SignerGenerator = (*transactorFromRaw)(nil)

// GeneratorOptions contains configuration options for the SignerGenerator.
type GeneratorOptions struct {
	gasLimit uint64
}

// GeneratorOption is a function that modifies GeneratorOptions.
type GeneratorOption func(*GeneratorOptions)

// WithGasLimit fixes the gas limit of every transaction. Zero leaves gas estimation on.
func WithGasLimit(gasLimit uint64) GeneratorOption {
	return func(opts *GeneratorOptions) {
		opts.gasLimit = gasLimit
	}
}

// TransactorFromRaw returns a generator which creates a transactor from a raw hex private key.
// A leading 0x is accepted.
func TransactorFromRaw(privKey string, opts ...GeneratorOption) SignerGenerator {
	// load default options
	defaultOpts := &GeneratorOptions{
		gasLimit: 0,
	}
	// apply provided options
	for _, opt := range opts {
		opt(defaultOpts)
	}

	return &transactorFromRaw{
		privKey:  strings.TrimPrefix(strings.TrimPrefix(privKey, "0x"), "0X"),
		gasLimit: defaultOpts.gasLimit,
	}
}

// transactorFromRaw is a SignerGenerator that creates a transactor from a private key.
type transactorFromRaw struct {
	privKey  string
	gasLimit uint64
}

// Generate parses the hex encoded private key and returns the bind transactor options.
func (g *transactorFromRaw) Generate(chainID *big.Int) (*bind.TransactOpts, error) {
	privKey, err := crypto.HexToECDSA(g.privKey)
	if err != nil {
		return nil, fmt.Errorf("failed to convert private key to ECDSA: %w", err)
	}

	transactor, err := bind.NewKeyedTransactorWithChainID(privKey, chainID)
	if err != nil {
		return nil, err
	}
	if g.gasLimit > 0 {
		transactor.GasLimit = g.gasLimit
	}

	return transactor, nil
}
