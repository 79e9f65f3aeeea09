package deployment

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/bepro/network-deployer/chain/evm"
	"github.com/bepro/network-deployer/config"
	"github.com/bepro/network-deployer/contracts"
	"github.com/bepro/network-deployer/pkg/logger"
)

const (
	bountyTokenName   = "BEPRO Bounty"
	bountyTokenSymbol = "~BEPRO"

	// testTokenDecimals is the decimals() of the deployed test ERC20s.
	testTokenDecimals = 18
)

// stagingTransferAmount is sent of every fungible test token to every staging account.
const stagingTransferAmount = config.Amount("10000000")

// testTokens are deployed in deploy mode, in payment, governance, reward order.
var testTokens = [3]struct{ name, symbol string }{
	{"Test USDC", "TUSD"},
	{"Test BEPRO", "TBEPRO"},
	{"Test Reward BEPRO", "TRBEPRO"},
}

// Tokens are the token addresses of a network. Governance and Reward may be the zero address.
type Tokens struct {
	Payment    common.Address
	Governance common.Address
	Reward     common.Address
	Bounty     common.Address
}

// LockToken is the token locked to register a network: the governance token, or the payment
// token when there is no governance token.
func (t Tokens) LockToken() common.Address {
	if evm.IsZeroAddress(t.Governance) {
		return t.Payment
	}

	return t.Governance
}

// Fungible returns the payment, governance and reward tokens, skipping zero addresses.
func (t Tokens) Fungible() []common.Address {
	var out []common.Address
	for _, a := range []common.Address{t.Payment, t.Governance, t.Reward} {
		if !evm.IsZeroAddress(a) {
			out = append(out, a)
		}
	}

	return out
}

// ReuseTokens returns the externally supplied tokens of c. Payment and bounty NFT must be set
// and non zero. Governance must be set but may be the zero address.
func ReuseTokens(c ChainConfig) (Tokens, error) {
	var missing []string
	if c.PaymentToken == "" {
		missing = append(missing, "paymentToken")
	}
	if c.GovernanceToken == "" {
		missing = append(missing, "governanceToken")
	}
	if c.BountyNFT == "" {
		missing = append(missing, "bountyNFT")
	}
	if len(missing) > 0 {
		return Tokens{}, fmt.Errorf("%w: %s", ErrMissingTokenConfig, strings.Join(missing, ", "))
	}

	var (
		t   Tokens
		err error
	)
	if t.Payment, err = evm.ParseAddress(c.PaymentToken); err != nil {
		return Tokens{}, fmt.Errorf("%w: paymentToken: %w", ErrInvalidChainConfig, err)
	}
	if t.Governance, err = evm.ParseAddress(c.GovernanceToken); err != nil {
		return Tokens{}, fmt.Errorf("%w: governanceToken: %w", ErrInvalidChainConfig, err)
	}
	if t.Bounty, err = evm.ParseAddress(c.BountyNFT); err != nil {
		return Tokens{}, fmt.Errorf("%w: bountyNFT: %w", ErrInvalidChainConfig, err)
	}
	if evm.IsZeroAddress(t.Payment) || evm.IsZeroAddress(t.Bounty) {
		return Tokens{}, fmt.Errorf("%w: paymentToken and bountyNFT cannot be the zero address", ErrMissingTokenConfig)
	}

	return t, nil
}

// tokenProvisioner deploys the test tokens of a pass and funds the staging accounts.
type tokenProvisioner struct {
	exec      executor
	lggr      logger.Logger
	staging   []common.Address
	transfers *TransferSet
}

// deploy deploys the three test ERC20s concurrently, then the bounty token, and starts the
// staging transfers in the background.
func (p tokenProvisioner) deploy(capAmount config.Amount) (Tokens, error) {
	if capAmount == "" {
		return Tokens{}, fmt.Errorf("%w: DEPLOY_TOKENS_CAP_AMOUNT is required to deploy test tokens",
			ErrInvalidChainConfig)
	}
	capUnits, err := capAmount.Units(testTokenDecimals)
	if err != nil {
		return Tokens{}, fmt.Errorf("%w: DEPLOY_TOKENS_CAP_AMOUNT: %w", ErrInvalidChainConfig, err)
	}

	owner := p.exec.deps.Backend.From()
	var fungible [len(testTokens)]common.Address

	var g errgroup.Group
	for i, tt := range testTokens {
		g.Go(func() error {
			addr, derr := p.exec.deploy(contracts.KindERC20, tt.name, tt.symbol, capUnits, owner)
			if derr != nil {
				return fmt.Errorf("failed to deploy %s: %w", tt.symbol, derr)
			}
			fungible[i] = addr

			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return Tokens{}, err
	}

	bounty, err := p.exec.deploy(contracts.KindBountyToken, bountyTokenName, bountyTokenSymbol)
	if err != nil {
		return Tokens{}, fmt.Errorf("failed to deploy %s: %w", bountyTokenSymbol, err)
	}

	tokens := Tokens{
		Payment:    fungible[0],
		Governance: fungible[1],
		Reward:     fungible[2],
		Bounty:     bounty,
	}
	p.lggr.Infow("Deployed test tokens",
		"payment", tokens.Payment, "governance", tokens.Governance, "reward", tokens.Reward, "bounty", tokens.Bounty)

	if err = p.fundStagingAccounts(tokens); err != nil {
		return Tokens{}, err
	}

	return tokens, nil
}

// fundStagingAccounts starts one transfer per fungible token and staging account.
func (p tokenProvisioner) fundStagingAccounts(tokens Tokens) error {
	for _, token := range tokens.Fungible() {
		amount, err := p.exec.units(token, stagingTransferAmount)
		if err != nil {
			return fmt.Errorf("failed to scale staging amount of %s: %w", token.Hex(), err)
		}

		for _, account := range p.staging {
			p.lggr.Debugw("Sending tokens", "token", token, "to", account)
			p.transfers.Go(fmt.Sprintf("transfer %s to %s", token.Hex(), account.Hex()), func(ctx context.Context) error {
				return p.exec.withContext(ctx).transact(contracts.KindERC20, token, "transfer", account, new(big.Int).Set(amount))
			})
		}
	}

	return nil
}
