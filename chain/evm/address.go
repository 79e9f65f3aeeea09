package evm

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ParseAddress parses an EVM address string (with or without 0x prefix).
func ParseAddress(address string) (common.Address, error) {
	if !common.IsHexAddress(address) {
		return common.Address{}, fmt.Errorf("invalid EVM address format: %s", address)
	}

	return common.HexToAddress(address), nil
}

// IsZeroAddress reports whether address is the zero address sentinel.
func IsZeroAddress(address common.Address) bool {
	return address == (common.Address{})
}
