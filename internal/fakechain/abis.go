package fakechain

import (
	"testing/fstest"

	"github.com/bepro/network-deployer/contracts"
)

const erc20ABI = `[
 {"type":"constructor","inputs":[{"name":"name_","type":"string"},{"name":"symbol_","type":"string"},{"name":"cap_","type":"uint256"},{"name":"owner_","type":"address"}]},
 {"type":"function","name":"name","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
 {"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
 {"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
 {"type":"function","name":"totalSupply","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
 {"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
 {"type":"function","name":"allowance","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
 {"type":"function","name":"transfer","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
 {"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
 {"type":"function","name":"transferFrom","stateMutability":"nonpayable","inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
]`

const bountyTokenABI = `[
 {"type":"constructor","inputs":[{"name":"name_","type":"string"},{"name":"symbol_","type":"string"}]},
 {"type":"function","name":"name","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
 {"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]}
]`

const networkRegistryABI = `[
 {"type":"constructor","inputs":[{"name":"_erc20","type":"address"},{"name":"_lockAmountForNetworkCreation","type":"uint256"},{"name":"_treasury","type":"address"},{"name":"_lockFeePercentage","type":"uint256"},{"name":"_closeFeePercentage","type":"uint256"},{"name":"_bountyToken","type":"address"}]},
 {"type":"function","name":"token","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
 {"type":"function","name":"treasury","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
 {"type":"function","name":"lockAmountForNetworkCreation","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
 {"type":"function","name":"lockedTokensOfAddress","stateMutability":"view","inputs":[{"name":"","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
 {"type":"function","name":"networkOfAddress","stateMutability":"view","inputs":[{"name":"","type":"address"}],"outputs":[{"name":"","type":"address"}]},
 {"type":"function","name":"addAllowedTokens","stateMutability":"nonpayable","inputs":[{"name":"_erc20Addresses","type":"address[]"},{"name":"transactional","type":"bool"}],"outputs":[]},
 {"type":"function","name":"lock","stateMutability":"nonpayable","inputs":[{"name":"_amount","type":"uint256"}],"outputs":[]},
 {"type":"function","name":"registerNetwork","stateMutability":"nonpayable","inputs":[{"name":"networkAddress","type":"address"}],"outputs":[]}
]`

const networkV2ABI = `[
 {"type":"constructor","inputs":[{"name":"_networkToken","type":"address"},{"name":"_registry","type":"address"}]},
 {"type":"function","name":"registry","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
 {"type":"function","name":"networkToken","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
 {"type":"function","name":"draftTime","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
 {"type":"function","name":"disputableTime","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
 {"type":"function","name":"councilAmount","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
 {"type":"function","name":"changeDraftTime","stateMutability":"nonpayable","inputs":[{"name":"_draftTime","type":"uint256"}],"outputs":[]},
 {"type":"function","name":"changeDisputableTime","stateMutability":"nonpayable","inputs":[{"name":"_disputableTime","type":"uint256"}],"outputs":[]},
 {"type":"function","name":"changeCouncilAmount","stateMutability":"nonpayable","inputs":[{"name":"_councilAmount","type":"uint256"}],"outputs":[]}
]`

// ABIs maps each contract kind to the ABI the fake implements.
var ABIs = map[contracts.Kind]string{
	contracts.KindERC20:           erc20ABI,
	contracts.KindBountyToken:     bountyTokenABI,
	contracts.KindNetworkRegistry: networkRegistryABI,
	contracts.KindNetworkV2:       networkV2ABI,
}

// Artifacts returns an artifact file system for the four contract kinds. Bytecode is a
// placeholder since the fake never executes it.
func Artifacts() fstest.MapFS {
	fsys := fstest.MapFS{}
	for kind, abiJSON := range ABIs {
		fsys[string(kind)+".json"] = &fstest.MapFile{
			Data: []byte(`{"contractName":"` + string(kind) + `","abi":` + abiJSON + `,"bytecode":"0x00"}`),
		}
	}

	return fsys
}
