package deployment

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/bepro/network-deployer/config"
	"github.com/bepro/network-deployer/contracts"
	"github.com/bepro/network-deployer/datastore"
	"github.com/bepro/network-deployer/internal/fakechain"
	"github.com/bepro/network-deployer/network"
	"github.com/bepro/network-deployer/operations"
	"github.com/bepro/network-deployer/operations/optest"
	"github.com/bepro/network-deployer/pkg/logger"
)

const (
	testPrivateKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testChainID    = 1337
)

var testDeployer = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

func testEnv() *config.Env {
	return &config.Env{
		LockAmountForNetworkCreation: "1000",
		LockFeePercentage:            "10000",
		CloseBountyFee:               "1000000",
		TokensCapAmount:              "100000000",
		DraftTime:                    "60",
		DisputableTime:               "300",
		CouncilAmount:                "25000",
	}
}

// tokens scales a whole token amount to 18 decimals units.
func tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

// fakeConnector connects each network identifier to its own fake chain.
type fakeConnector struct {
	mu        sync.Mutex
	chains    map[string]*fakechain.Chain
	connected []string
}

func newFakeConnector(networks ...string) *fakeConnector {
	c := &fakeConnector{chains: make(map[string]*fakechain.Chain)}
	for _, n := range networks {
		c.chains[n] = fakechain.New(testDeployer)
	}

	return c
}

func (c *fakeConnector) Connect(_ context.Context, ep network.Endpoint, _ string) (Connection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.connected = append(c.connected, ep.Identifier)
	chain, ok := c.chains[ep.Identifier]
	if !ok {
		return Connection{}, fmt.Errorf("no fake chain for %s", ep.Identifier)
	}

	return Connection{Backend: chain, ChainID: ep.ChainID, ChainName: ep.ChainName}, nil
}

func (c *fakeConnector) Connected() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]string(nil), c.connected...)
}

// newTestResolver knows the given networks statically and has an empty chain registry.
func newTestResolver(t *testing.T, networks ...string) *network.Resolver {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	static := make([]network.Network, 0, len(networks))
	for i, n := range networks {
		static = append(static, network.Network{
			Name:    n,
			ChainID: uint64(testChainID + i),
			RPCs:    []network.RPC{{RPCName: n, HTTPURL: "http://" + n + ".test"}},
		})
	}

	return network.NewResolver(logger.Test(t), network.NewConfig(static), network.NewRegistryClient(srv.URL))
}

type testDriver struct {
	*Driver
	connector *fakeConnector
	persister *datastore.MemoryPersister
	reporter  *operations.MemoryReporter
}

func newTestDriver(t *testing.T, networks ...string) testDriver {
	t.Helper()

	td := testDriver{
		connector: newFakeConnector(networks...),
		persister: datastore.NewMemoryPersister(),
		reporter:  operations.NewMemoryReporter(),
	}

	d, err := NewDriver(DriverConfig{
		Resolver:  newTestResolver(t, networks...),
		Connector: td.connector,
		Artifacts: contracts.NewStore(fakechain.Artifacts()),
		Persister: td.persister,
		LoadEnv:   func(string) (*config.Env, error) { return testEnv(), nil },
		Reporter:  td.reporter,
		Logger:    logger.Test(t),
	})
	require.NoError(t, err)
	td.Driver = d

	return td
}

func (td testDriver) chain(name string) *fakechain.Chain {
	return td.connector.chains[name]
}

// newTestExecutor returns an executor over a fresh fake chain.
func newTestExecutor(t *testing.T) (executor, *fakechain.Chain) {
	t.Helper()

	chain := fakechain.New(testDeployer)

	return executor{
		b:    optest.NewBundle(t),
		deps: OpDeps{Backend: chain, Artifacts: contracts.NewStore(fakechain.Artifacts())},
	}, chain
}

var errClientClosed = errors.New("client is closed")

// closingBackend slows down transfers and rejects every request once its connection is closed.
type closingBackend struct {
	*fakechain.Chain
	closed *atomic.Bool
}

func (b closingBackend) Transact(
	ctx context.Context, a *contracts.Artifact, to common.Address, method string, args ...any,
) error {
	if method == "transfer" {
		time.Sleep(20 * time.Millisecond)
	}
	if b.closed.Load() {
		return errClientClosed
	}

	return b.Chain.Transact(ctx, a, to, method, args...)
}

// closingConnector hands out connections with a real Close.
type closingConnector struct {
	*fakeConnector
	closed atomic.Bool
}

func (c *closingConnector) Connect(ctx context.Context, ep network.Endpoint, key string) (Connection, error) {
	conn, err := c.fakeConnector.Connect(ctx, ep, key)
	if err != nil {
		return Connection{}, err
	}
	conn.Backend = closingBackend{Chain: c.chains[ep.Identifier], closed: &c.closed}
	conn.Close = func() { c.closed.Store(true) }

	return conn, nil
}
