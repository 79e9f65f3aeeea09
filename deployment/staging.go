package deployment

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"

	"github.com/bepro/network-deployer/chain/evm"
)

// DefaultStagingAccounts receive test tokens after a deploy mode pass. They are the first
// accounts of the standard development mnemonic.
var DefaultStagingAccounts = []common.Address{
	common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"),
	common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"),
	common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"),
	common.HexToAddress("0x90F79bf6EB2c4f870365E785982E1f101E93b906"),
	common.HexToAddress("0x15d34AAf54267DB7D7c367839AAf71A00a2C6A65"),
}

// LoadStagingAccounts reads a YAML list of account addresses.
func LoadStagingAccounts(filePath string) ([]common.Address, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read staging accounts file: %w", err)
	}

	var raw []string
	if err = yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal staging accounts file %s: %w", filePath, err)
	}

	accounts := make([]common.Address, 0, len(raw))
	for i, s := range raw {
		addr, perr := evm.ParseAddress(s)
		if perr != nil {
			return nil, fmt.Errorf("staging account %d: %w", i, perr)
		}
		accounts = append(accounts, addr)
	}

	return accounts, nil
}
