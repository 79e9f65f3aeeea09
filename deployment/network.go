package deployment

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/bepro/network-deployer/chain/evm"
	"github.com/bepro/network-deployer/config"
	"github.com/bepro/network-deployer/contracts"
	"github.com/bepro/network-deployer/datastore"
	"github.com/bepro/network-deployer/pkg/logger"
)

// deployRegistry deploys the NetworkRegistry that locks LockToken for network creation.
func deployRegistry(
	exec executor, tokens Tokens, treasury common.Address, consts config.DeployConstants,
) (common.Address, error) {
	lockToken := tokens.LockToken()
	lockUnits, err := exec.units(lockToken, consts.LockAmount)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to scale lock amount: %w", err)
	}

	addr, err := exec.deploy(contracts.KindNetworkRegistry,
		lockToken, lockUnits, treasury, consts.LockFeePercentage, consts.CloseBountyFee, tokens.Bounty)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to deploy network registry: %w", err)
	}

	return addr, nil
}

// deployNetwork deploys the Network_v2 contract of the payment token bound to registry.
func deployNetwork(exec executor, tokens Tokens, registry common.Address) (common.Address, error) {
	addr, err := exec.deploy(contracts.KindNetworkV2, tokens.Payment, registry)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to deploy network: %w", err)
	}

	return addr, nil
}

// networkConfigurator applies the network settings, registers the network in its registry and
// summarizes the deployment.
type networkConfigurator struct {
	exec executor
	lggr logger.Logger
}

func (c networkConfigurator) configure(
	networkAddr common.Address, tokens Tokens, consts config.DeployConstants,
) (datastore.Result, error) {
	registry, err := c.exec.address(contracts.KindNetworkV2, networkAddr, "registry")
	if err != nil {
		return datastore.Result{}, fmt.Errorf("failed to read network registry: %w", err)
	}

	if err = c.changeSettings(networkAddr, tokens, consts); err != nil {
		return datastore.Result{}, err
	}
	if err = c.register(networkAddr, registry, tokens, consts); err != nil {
		return datastore.Result{}, err
	}

	return c.summarize(networkAddr, registry, tokens)
}

// changeSettings sends the three setting changes concurrently.
func (c networkConfigurator) changeSettings(
	networkAddr common.Address, tokens Tokens, consts config.DeployConstants,
) error {
	council, err := c.exec.units(tokens.Payment, consts.CouncilAmount)
	if err != nil {
		return fmt.Errorf("failed to scale council amount: %w", err)
	}

	settings := []struct {
		method string
		value  *big.Int
	}{
		{"changeDraftTime", consts.DraftTime},
		{"changeDisputableTime", consts.DisputableTime},
		{"changeCouncilAmount", council},
	}

	var g errgroup.Group
	for _, s := range settings {
		g.Go(func() error {
			if terr := c.exec.transact(contracts.KindNetworkV2, networkAddr, s.method, s.value); terr != nil {
				return fmt.Errorf("failed to %s: %w", s.method, terr)
			}

			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return err
	}

	c.lggr.Infow("Changed network settings",
		"draftTime", consts.DraftTime, "disputableTime", consts.DisputableTime, "councilAmount", council)

	return nil
}

// register allows the network tokens, locks the creation amount and registers the network.
// Each step needs the previous one to be mined.
func (c networkConfigurator) register(
	networkAddr, registry common.Address, tokens Tokens, consts config.DeployConstants,
) error {
	err := c.exec.transact(contracts.KindNetworkRegistry, registry, "addAllowedTokens",
		[]common.Address{tokens.Payment}, true)
	if err != nil {
		return fmt.Errorf("failed to allow payment token: %w", err)
	}
	if !evm.IsZeroAddress(tokens.Governance) {
		err = c.exec.transact(contracts.KindNetworkRegistry, registry, "addAllowedTokens",
			[]common.Address{tokens.Governance}, false)
		if err != nil {
			return fmt.Errorf("failed to allow governance token: %w", err)
		}
	}

	lockToken, err := c.exec.address(contracts.KindNetworkRegistry, registry, "token")
	if err != nil {
		return fmt.Errorf("failed to read registry token: %w", err)
	}
	lockUnits, err := c.exec.units(lockToken, consts.LockAmount)
	if err != nil {
		return fmt.Errorf("failed to scale lock amount: %w", err)
	}

	if err = c.exec.transact(contracts.KindERC20, lockToken, "approve", registry, lockUnits); err != nil {
		return fmt.Errorf("failed to approve registry: %w", err)
	}
	if err = c.exec.transact(contracts.KindNetworkRegistry, registry, "lock", lockUnits); err != nil {
		return fmt.Errorf("failed to lock %s: %w", lockUnits, err)
	}
	if err = c.exec.transact(contracts.KindNetworkRegistry, registry, "registerNetwork", networkAddr); err != nil {
		return fmt.Errorf("failed to register network: %w", err)
	}

	c.lggr.Infow("Registered network", "network", networkAddr, "registry", registry, "locked", lockUnits)

	return nil
}

func (c networkConfigurator) summarize(
	networkAddr, registry common.Address, tokens Tokens,
) (datastore.Result, error) {
	token := func(addr common.Address, transactional, reward bool) (datastore.TokenInfo, error) {
		name, symbol, err := c.exec.nameSymbol(contracts.KindERC20, addr)
		if err != nil {
			return datastore.TokenInfo{}, fmt.Errorf("failed to read token %s: %w", addr.Hex(), err)
		}

		return datastore.TokenInfo{
			Name:            name,
			Symbol:          symbol,
			Address:         addr,
			IsTransactional: transactional,
			IsReward:        reward,
		}, nil
	}

	result := datastore.Result{Network: networkAddr, Registry: registry}

	var err error
	if result.Payment, err = token(tokens.Payment, true, false); err != nil {
		return datastore.Result{}, err
	}
	if !evm.IsZeroAddress(tokens.Governance) {
		gov, gerr := token(tokens.Governance, false, false)
		if gerr != nil {
			return datastore.Result{}, gerr
		}
		result.Governance = &gov
	}
	if !evm.IsZeroAddress(tokens.Reward) {
		rwd, rerr := token(tokens.Reward, false, true)
		if rerr != nil {
			return datastore.Result{}, rerr
		}
		result.Reward = &rwd
	}

	name, symbol, err := c.exec.nameSymbol(contracts.KindBountyToken, tokens.Bounty)
	if err != nil {
		return datastore.Result{}, fmt.Errorf("failed to read bounty token %s: %w", tokens.Bounty.Hex(), err)
	}
	result.Bounty = datastore.BountyInfo{Name: name, Symbol: symbol, Address: tokens.Bounty}

	return result, nil
}
