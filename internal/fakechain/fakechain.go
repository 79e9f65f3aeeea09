// Package fakechain is an in-memory contracts.Backend that emulates the ERC20, BountyToken,
// NetworkRegistry and Network_v2 contracts closely enough to exercise deployment flows. Every
// mined deployment and transaction is appended to an ordered log.
package fakechain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/bepro/network-deployer/contracts"
)

// MethodDeploy is the method name logged for contract creations.
const MethodDeploy = "constructor"

// tokenDecimals is the decimals() of every fake ERC20.
const tokenDecimals = 18

var _ contracts.Backend = (*Chain)(nil)

// Call is one mined transaction.
type Call struct {
	Seq    int
	Kind   contracts.Kind
	To     common.Address
	Method string
	Args   []any
}

type failKey struct {
	kind   contracts.Kind
	method string
}

// Chain is a fake chain with a single sender.
type Chain struct {
	mu        sync.Mutex
	from      common.Address
	nonce     uint64
	contracts map[common.Address]any
	calls     []Call
	failures  map[failKey]error
}

// New returns an empty fake chain whose transactions are sent by from.
func New(from common.Address) *Chain {
	return &Chain{
		from:      from,
		contracts: make(map[common.Address]any),
		failures:  make(map[failKey]error),
	}
}

// FailOn makes every transaction calling method on kind fail with err. Use MethodDeploy to fail
// deployments.
func (c *Chain) FailOn(kind contracts.Kind, method string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.failures[failKey{kind, method}] = err
}

// From implements contracts.Backend.
func (c *Chain) From() common.Address {
	return c.from
}

// DeployContract implements contracts.Backend.
func (c *Chain) DeployContract(ctx context.Context, a *contracts.Artifact, args ...any) (common.Address, error) {
	if err := ctx.Err(); err != nil {
		return common.Address{}, err
	}
	if _, err := a.ABI.Pack("", args...); err != nil {
		return common.Address{}, fmt.Errorf("invalid %s constructor arguments: %w", a.Kind, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.failures[failKey{a.Kind, MethodDeploy}]; err != nil {
		return common.Address{}, err
	}

	var state any
	switch a.Kind {
	case contracts.KindERC20:
		owner := args[3].(common.Address)
		supply := new(big.Int).Set(args[2].(*big.Int))
		state = &erc20{
			name:       args[0].(string),
			symbol:     args[1].(string),
			supply:     supply,
			balances:   map[common.Address]*big.Int{owner: new(big.Int).Set(supply)},
			allowances: make(map[common.Address]map[common.Address]*big.Int),
		}
	case contracts.KindBountyToken:
		state = &bountyToken{name: args[0].(string), symbol: args[1].(string)}
	case contracts.KindNetworkRegistry:
		state = &registry{
			token:      args[0].(common.Address),
			lockAmount: args[1].(*big.Int),
			treasury:   args[2].(common.Address),
			lockFee:    args[3].(*big.Int),
			closeFee:   args[4].(*big.Int),
			bounty:     args[5].(common.Address),
			locked:     make(map[common.Address]*big.Int),
			networks:   make(map[common.Address]common.Address),
		}
	case contracts.KindNetworkV2:
		state = &network{
			token:      args[0].(common.Address),
			registry:   args[1].(common.Address),
			draft:      new(big.Int),
			disputable: new(big.Int),
			council:    new(big.Int),
		}
	default:
		return common.Address{}, fmt.Errorf("fakechain cannot deploy %s", a.Kind)
	}

	addr := crypto.CreateAddress(c.from, c.nonce)
	c.nonce++
	c.contracts[addr] = state
	c.record(a.Kind, addr, MethodDeploy, args)

	return addr, nil
}

// Transact implements contracts.Backend.
func (c *Chain) Transact(
	ctx context.Context, a *contracts.Artifact, to common.Address, method string, args ...any,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := a.ABI.Pack(method, args...); err != nil {
		return fmt.Errorf("invalid %s.%s arguments: %w", a.Kind, method, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.failures[failKey{a.Kind, method}]; err != nil {
		return err
	}

	var err error
	switch s := c.contracts[to].(type) {
	case *erc20:
		err = c.transactERC20(s, method, args)
	case *registry:
		err = c.transactRegistry(s, to, method, args)
	case *network:
		err = s.transact(method, args)
	case nil:
		err = fmt.Errorf("no contract at %s", to.Hex())
	default:
		err = fmt.Errorf("%s.%s is not supported", a.Kind, method)
	}
	if err != nil {
		return fmt.Errorf("%s.%s reverted: %w", a.Kind, method, err)
	}

	c.record(a.Kind, to, method, args)

	return nil
}

// Call implements contracts.Backend.
func (c *Chain) Call(
	ctx context.Context, a *contracts.Artifact, to common.Address, method string, args ...any,
) ([]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := a.ABI.Pack(method, args...); err != nil {
		return nil, fmt.Errorf("invalid %s.%s arguments: %w", a.Kind, method, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var (
		out any
		err error
	)
	switch s := c.contracts[to].(type) {
	case *erc20:
		out, err = s.call(method, args)
	case *bountyToken:
		out, err = s.call(method)
	case *registry:
		out, err = s.call(method, args)
	case *network:
		out, err = s.call(method)
	default:
		err = fmt.Errorf("no contract at %s", to.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", a.Kind, method, err)
	}

	return []any{out}, nil
}

func (c *Chain) record(kind contracts.Kind, to common.Address, method string, args []any) {
	c.calls = append(c.calls, Call{
		Seq:    len(c.calls),
		Kind:   kind,
		To:     to,
		Method: method,
		Args:   slices.Clone(args),
	})
}

// Calls returns the mined deployments and transactions in order.
func (c *Chain) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.calls)
}

// CallsTo returns the mined transactions calling method, in order.
func (c *Chain) CallsTo(method string) []Call {
	var out []Call
	for _, call := range c.Calls() {
		if call.Method == method {
			out = append(out, call)
		}
	}

	return out
}

// Deployed returns the addresses of the deployed contracts of kind, in deployment order.
func (c *Chain) Deployed(kind contracts.Kind) []common.Address {
	var out []common.Address
	for _, call := range c.CallsTo(MethodDeploy) {
		if call.Kind == kind {
			out = append(out, call.To)
		}
	}

	return out
}

// BalanceOf returns the token balance of account, zero when token is not an ERC20.
func (c *Chain) BalanceOf(token, account common.Address) *big.Int {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.contracts[token].(*erc20)
	if !ok {
		return new(big.Int)
	}

	return new(big.Int).Set(t.balanceOf(account))
}

// AllowedTokens returns the transactional and reward tokens allowed by a registry.
func (c *Chain) AllowedTokens(registryAddr common.Address) (transactional, reward []common.Address) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.contracts[registryAddr].(*registry)
	if !ok {
		return nil, nil
	}

	return slices.Clone(r.transactional), slices.Clone(r.reward)
}

// NetworkSettings returns the draft time, disputable time and council amount of a network.
func (c *Chain) NetworkSettings(networkAddr common.Address) (draft, disputable, council *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.contracts[networkAddr].(*network)
	if !ok {
		return nil, nil, nil
	}

	return n.draft, n.disputable, n.council
}

type erc20 struct {
	name       string
	symbol     string
	supply     *big.Int
	balances   map[common.Address]*big.Int
	allowances map[common.Address]map[common.Address]*big.Int
}

func (t *erc20) balanceOf(account common.Address) *big.Int {
	if b, ok := t.balances[account]; ok {
		return b
	}

	return new(big.Int)
}

func (t *erc20) allowance(owner, spender common.Address) *big.Int {
	if a, ok := t.allowances[owner][spender]; ok {
		return a
	}

	return new(big.Int)
}

func (t *erc20) move(from, to common.Address, amount *big.Int) error {
	if t.balanceOf(from).Cmp(amount) < 0 {
		return errors.New("ERC20: transfer amount exceeds balance")
	}
	t.balances[from] = new(big.Int).Sub(t.balanceOf(from), amount)
	t.balances[to] = new(big.Int).Add(t.balanceOf(to), amount)

	return nil
}

func (t *erc20) spend(owner, spender common.Address, amount *big.Int) error {
	if t.allowance(owner, spender).Cmp(amount) < 0 {
		return errors.New("ERC20: insufficient allowance")
	}
	if t.allowances[owner] == nil {
		t.allowances[owner] = make(map[common.Address]*big.Int)
	}
	t.allowances[owner][spender] = new(big.Int).Sub(t.allowance(owner, spender), amount)

	return nil
}

func (c *Chain) transactERC20(t *erc20, method string, args []any) error {
	switch method {
	case "transfer":
		return t.move(c.from, args[0].(common.Address), args[1].(*big.Int))
	case "approve":
		if t.allowances[c.from] == nil {
			t.allowances[c.from] = make(map[common.Address]*big.Int)
		}
		t.allowances[c.from][args[0].(common.Address)] = new(big.Int).Set(args[1].(*big.Int))

		return nil
	case "transferFrom":
		from, to, amount := args[0].(common.Address), args[1].(common.Address), args[2].(*big.Int)
		if err := t.spend(from, c.from, amount); err != nil {
			return err
		}

		return t.move(from, to, amount)
	}

	return fmt.Errorf("unknown method %s", method)
}

func (t *erc20) call(method string, args []any) (any, error) {
	switch method {
	case "name":
		return t.name, nil
	case "symbol":
		return t.symbol, nil
	case "decimals":
		return uint8(tokenDecimals), nil
	case "totalSupply":
		return new(big.Int).Set(t.supply), nil
	case "balanceOf":
		return new(big.Int).Set(t.balanceOf(args[0].(common.Address))), nil
	case "allowance":
		return new(big.Int).Set(t.allowance(args[0].(common.Address), args[1].(common.Address))), nil
	}

	return nil, fmt.Errorf("unknown method %s", method)
}

type bountyToken struct {
	name   string
	symbol string
}

func (t *bountyToken) call(method string) (any, error) {
	switch method {
	case "name":
		return t.name, nil
	case "symbol":
		return t.symbol, nil
	}

	return nil, fmt.Errorf("unknown method %s", method)
}

type registry struct {
	token      common.Address
	lockAmount *big.Int
	treasury   common.Address
	lockFee    *big.Int
	closeFee   *big.Int
	bounty     common.Address

	transactional []common.Address
	reward        []common.Address
	locked        map[common.Address]*big.Int
	networks      map[common.Address]common.Address
}

func (c *Chain) transactRegistry(r *registry, self common.Address, method string, args []any) error {
	switch method {
	case "addAllowedTokens":
		tokens := args[0].([]common.Address)
		if args[1].(bool) {
			r.transactional = append(r.transactional, tokens...)
		} else {
			r.reward = append(r.reward, tokens...)
		}

		return nil
	case "lock":
		amount := args[0].(*big.Int)
		if amount.Sign() <= 0 {
			return errors.New("amount must be greater than 0")
		}
		token, ok := c.contracts[r.token].(*erc20)
		if !ok {
			return errors.New("registry token is not an ERC20")
		}
		// the registry pulls the tokens itself: msg.sender of transferFrom is the registry
		if err := token.spend(c.from, self, amount); err != nil {
			return err
		}
		if err := token.move(c.from, self, amount); err != nil {
			return err
		}
		prev, ok := r.locked[c.from]
		if !ok {
			prev = new(big.Int)
		}
		r.locked[c.from] = new(big.Int).Add(prev, amount)

		return nil
	case "registerNetwork":
		addr := args[0].(common.Address)
		if _, ok := c.contracts[addr].(*network); !ok {
			return errors.New("network address is not a Network_v2")
		}
		if locked, ok := r.locked[c.from]; !ok || locked.Cmp(r.lockAmount) < 0 {
			return errors.New("locked amount is less than required")
		}
		if _, ok := r.networks[c.from]; ok {
			return errors.New("sender already has a network")
		}
		r.networks[c.from] = addr

		return nil
	}

	return fmt.Errorf("unknown method %s", method)
}

func (r *registry) call(method string, args []any) (any, error) {
	switch method {
	case "token":
		return r.token, nil
	case "treasury":
		return r.treasury, nil
	case "lockAmountForNetworkCreation":
		return new(big.Int).Set(r.lockAmount), nil
	case "lockedTokensOfAddress":
		if l, ok := r.locked[args[0].(common.Address)]; ok {
			return new(big.Int).Set(l), nil
		}

		return new(big.Int), nil
	case "networkOfAddress":
		return r.networks[args[0].(common.Address)], nil
	}

	return nil, fmt.Errorf("unknown method %s", method)
}

type network struct {
	token      common.Address
	registry   common.Address
	draft      *big.Int
	disputable *big.Int
	council    *big.Int
}

func (n *network) transact(method string, args []any) error {
	v := new(big.Int).Set(args[0].(*big.Int))
	switch method {
	case "changeDraftTime":
		n.draft = v
	case "changeDisputableTime":
		n.disputable = v
	case "changeCouncilAmount":
		n.council = v
	default:
		return fmt.Errorf("unknown method %s", method)
	}

	return nil
}

func (n *network) call(method string) (any, error) {
	switch method {
	case "registry":
		return n.registry, nil
	case "networkToken":
		return n.token, nil
	case "draftTime":
		return new(big.Int).Set(n.draft), nil
	case "disputableTime":
		return new(big.Int).Set(n.disputable), nil
	case "councilAmount":
		return new(big.Int).Set(n.council), nil
	}

	return nil, fmt.Errorf("unknown method %s", method)
}
