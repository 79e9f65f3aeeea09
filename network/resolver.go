package network

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bepro/network-deployer/chain/evm"
	"github.com/bepro/network-deployer/pkg/logger"
)

// ErrChainNotResolvable is returned when an identifier matches neither the static table nor the
// chain registry.
var ErrChainNotResolvable = errors.New("chain not resolvable")

// Source tells where an endpoint was resolved from.
type Source string

const (
	SourceStatic   Source = "static"
	SourceRegistry Source = "registry"
)

// Endpoint is a resolved RPC endpoint.
type Endpoint struct {
	Identifier string
	RPCURL     string
	Source     Source
	// ChainID is zero when the chain ID is only learnt once the endpoint is dialled.
	ChainID   uint64
	ChainName string
}

// Resolver maps user supplied chain identifiers to RPC endpoints.
type Resolver struct {
	static   *Config
	registry *RegistryClient
	lggr     logger.Logger
}

// NewResolver returns a resolver backed by the static table and the registry client. A nil
// static table uses the presets.
func NewResolver(lggr logger.Logger, static *Config, registry *RegistryClient) *Resolver {
	if static == nil {
		static = Presets()
	}
	if registry == nil {
		registry = NewRegistryClient(DefaultRegistryURL)
	}

	return &Resolver{
		static:   static,
		registry: registry,
		lggr:     lggr,
	}
}

// Resolve returns the endpoint of identifier, which is either a static network name or a
// numeric EVM chain ID.
func (r *Resolver) Resolve(ctx context.Context, identifier string) (Endpoint, error) {
	id := strings.TrimSpace(identifier)
	if id == "" {
		return Endpoint{}, fmt.Errorf("empty identifier: %w", ErrChainNotResolvable)
	}

	if n, ok := r.static.NetworkByName(id); ok {
		return r.staticEndpoint(id, n), nil
	}

	chainID, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return Endpoint{}, fmt.Errorf("%s is neither a known network nor a chain ID: %w",
			id, ErrChainNotResolvable)
	}

	if n, ok := r.static.NetworkByChainID(chainID); ok {
		return r.staticEndpoint(id, n), nil
	}

	r.lggr.Debugw("Chain not in static table, consulting chain registry", "identifier", id)

	entry, found, err := r.registry.Lookup(ctx, chainID)
	if err != nil {
		return Endpoint{}, fmt.Errorf("%s: %w: %w", id, ErrChainNotResolvable, err)
	}
	if !found {
		return Endpoint{}, fmt.Errorf("%s not found in chain registry: %w", id, ErrChainNotResolvable)
	}

	url, ok := entry.FirstRPC()
	if !ok {
		return Endpoint{}, fmt.Errorf("%s has no usable RPC in chain registry: %w", id, ErrChainNotResolvable)
	}

	ep := Endpoint{
		Identifier: id,
		RPCURL:     url,
		Source:     SourceRegistry,
		ChainID:    entry.ChainID,
		ChainName:  entry.Name,
	}
	if details, ok := evm.LookupChainDetails(entry.ChainID); ok {
		ep.ChainName = details.ChainName
	}

	r.lggr.Infow("Resolved chain from registry", "identifier", id, "rpc", url, "chain", ep.ChainName)

	return ep, nil
}

func (r *Resolver) staticEndpoint(id string, n Network) Endpoint {
	ep := Endpoint{
		Identifier: id,
		RPCURL:     n.Endpoint(),
		Source:     SourceStatic,
		ChainID:    n.ChainID,
		ChainName:  n.Name,
	}
	r.lggr.Debugw("Resolved chain from static table", "identifier", id, "rpc", ep.RPCURL)

	return ep
}
