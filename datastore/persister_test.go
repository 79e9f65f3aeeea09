package datastore

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() Result {
	return Result{
		ChainName: "seneca",
		ChainID:   1500,
		Network:   common.HexToAddress("0x0000000000000000000000000000000000000a01"),
		Registry:  common.HexToAddress("0x0000000000000000000000000000000000000a02"),
		Payment: TokenInfo{
			Name: "Test USDC", Symbol: "TUSD", IsTransactional: true,
			Address: common.HexToAddress("0x0000000000000000000000000000000000000b01"),
		},
		Governance: &TokenInfo{
			Name: "Test BEPRO", Symbol: "TBEPRO",
			Address: common.HexToAddress("0x0000000000000000000000000000000000000b02"),
		},
		Reward: &TokenInfo{
			Name: "Test Reward BEPRO", Symbol: "TRBEPRO", IsReward: true,
			Address: common.HexToAddress("0x0000000000000000000000000000000000000b03"),
		},
		Bounty: BountyInfo{
			Name: "BEPRO Bounty", Symbol: "~BEPRO",
			Address: common.HexToAddress("0x0000000000000000000000000000000000000b04"),
		},
	}
}

func Test_Result_JSONShape(t *testing.T) {
	t.Parallel()

	r := sampleResult()
	r.Reward = nil

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Contains(t, got, "network")
	assert.Contains(t, got, "registry")
	assert.Contains(t, got, "governance")
	assert.NotContains(t, got, "reward")

	payment := got["payment"].(map[string]any)
	assert.Equal(t, "TUSD", payment["symbol"])
	assert.Equal(t, true, payment["isTransactional"])
	assert.Equal(t, false, payment["isReward"])
	assert.Equal(t, "0x0000000000000000000000000000000000000b01", payment["address"])
}

func Test_Result_Tokens(t *testing.T) {
	t.Parallel()

	r := sampleResult()
	roles := func(r Result) []Role {
		var out []Role
		for _, tok := range r.Tokens() {
			out = append(out, tok.Role)
		}

		return out
	}

	assert.Equal(t, []Role{RolePayment, RoleGovernance, RoleReward, RoleBounty}, roles(r))

	r.Governance, r.Reward = nil, nil
	assert.Equal(t, []Role{RolePayment, RoleBounty}, roles(r))
}

func Test_MemoryPersister(t *testing.T) {
	t.Parallel()

	p := NewMemoryPersister()
	require.NoError(t, p.Persist(t.Context(), sampleResult()))
	require.Len(t, p.Results(), 1)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := p.Persist(ctx, sampleResult())
	var perr *PersistError
	require.ErrorAs(t, err, &perr)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, sampleResult().Network.Hex(), perr.Network)
	assert.Len(t, p.Results(), 1)
}

func Test_NoopPersister(t *testing.T) {
	t.Parallel()

	require.NoError(t, NoopPersister{}.Persist(t.Context(), sampleResult()))
}

func Test_PersistError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := newPersistError(sampleResult(), cause)

	assert.Equal(t,
		"failed to persist result of network 0x0000000000000000000000000000000000000A01: connection refused",
		err.Error())
	require.ErrorIs(t, err, cause)
}
