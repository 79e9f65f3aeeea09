package provider

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func Test_revertReason(t *testing.T) {
	t.Parallel()

	to := common.HexToAddress("0x1")
	tx := types.NewTransaction(0, to, big.NewInt(0), 21000, big.NewInt(1), []byte{0x01})
	receipt := &types.Receipt{BlockNumber: big.NewInt(10)}

	tests := []struct {
		name       string
		callErr    error
		wantReason string
		wantErr    string
	}{
		{
			name:       "json error with data",
			callErr:    &jsonError{Code: 3, Message: "execution reverted", Data: "0x08c379a0"},
			wantReason: "0x08c379a0",
		},
		{
			name:       "plain error falls back to message",
			callErr:    errors.New("execution reverted: lock first"),
			wantReason: "execution reverted: lock first",
		},
		{
			name:       "json error without data falls back to message",
			callErr:    &jsonError{Code: -32000, Message: "out of gas"},
			wantReason: "out of gas",
		},
		{
			name:    "call succeeds",
			wantErr: "reverted with no reason",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			caller := &mockContractCaller{}
			caller.On("CallContract", mock.Anything, mock.Anything, receipt.BlockNumber).
				Return(nil, tt.callErr)

			got, err := revertReason(t.Context(), caller, common.Address{}, tx, receipt)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantReason, got)
			}
			caller.AssertExpectations(t)
		})
	}
}
