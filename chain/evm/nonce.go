package evm

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// PendingNonceSource is the subset of the client used to seed a NonceManager.
type PendingNonceSource interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
}

// NonceManager hands out sequential nonces for a single sender. Submissions are serialised
// while confirmations may proceed concurrently, so fan-out transactions from one deployer key
// never reuse a nonce.
type NonceManager struct {
	mu     sync.Mutex
	source PendingNonceSource
	from   common.Address
	next   uint64
	synced bool
}

// NewNonceManager creates a NonceManager for from, seeded lazily from source.
func NewNonceManager(source PendingNonceSource, from common.Address) *NonceManager {
	return &NonceManager{source: source, from: from}
}

// Submit calls send with the next nonce while holding the submission lock. The nonce is only
// consumed when send succeeds; on failure the manager resyncs from the chain on the next call.
func (m *NonceManager) Submit(
	ctx context.Context, send func(nonce uint64) (*types.Transaction, error),
) (*types.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.synced {
		nonce, err := m.source.PendingNonceAt(ctx, m.from)
		if err != nil {
			return nil, fmt.Errorf("failed to get pending nonce for %s: %w", m.from.Hex(), err)
		}
		m.next = nonce
		m.synced = true
	}

	tx, err := send(m.next)
	if err != nil {
		m.synced = false

		return nil, err
	}
	m.next++

	return tx, nil
}
