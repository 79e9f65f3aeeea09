package provider

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/stretchr/testify/mock"
)

const testPrivKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

// newFakeRPCServer returns a JSON-RPC server that answers eth_chainId with chainIDHex and counts
// the requests it receives. The server is closed when the test ends.
func newFakeRPCServer(t *testing.T, chainIDHex string) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		switch req.Method {
		case "eth_chainId":
			resp["result"] = chainIDHex
		default:
			resp["error"] = map[string]any{"code": -32601, "message": "method not found"}
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return srv, &calls
}

// mockContractCaller is a testify mock of ContractCaller.
type mockContractCaller struct {
	mock.Mock
}

func (m *mockContractCaller) CallContract(
	ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int,
) ([]byte, error) {
	args := m.Called(ctx, call, blockNumber)

	var out []byte
	if b, ok := args.Get(0).([]byte); ok {
		out = b
	}

	return out, args.Error(1)
}

// jsonError mirrors the unexported JSON-RPC error type of go-ethereum.
type jsonError struct {
	Code    int
	Message string
	Data    any
}

func (err *jsonError) Error() string { return err.Message }

func (err *jsonError) ErrorCode() int { return err.Code }

func (err *jsonError) ErrorData() any { return err.Data }
