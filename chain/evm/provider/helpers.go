package provider

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/bepro/network-deployer/chain/evm"
)

// ContractCaller is the subset of the client used to replay a reverted transaction.
type ContractCaller interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// revertReason replays tx as a call at the block of its receipt and returns why it reverted:
// the revert data of the call error when the node provides it, otherwise the error message.
func revertReason(
	ctx context.Context, caller ContractCaller, from common.Address, tx *types.Transaction, receipt *types.Receipt,
) (string, error) {
	_, err := caller.CallContract(ctx, ethereum.CallMsg{
		From:     from,
		To:       tx.To(),
		Data:     tx.Data(),
		Value:    tx.Value(),
		Gas:      tx.Gas(),
		GasPrice: tx.GasPrice(),
	}, receipt.BlockNumber)
	if err == nil {
		return "", fmt.Errorf("tx %s reverted with no reason", tx.Hash().Hex())
	}

	if data, derr := evm.RevertData(err); derr == nil && data != "" {
		return data, nil
	}

	return err.Error(), nil
}
