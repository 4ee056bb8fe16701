package ethereum

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Definitions of contract names.
const (
	TBTCSystemContractName = "TBTCSystem"
)

// Config contains configuration of Ethereum chain.
type Config struct {
	// URL is the websocket endpoint of the Ethereum node. Event
	// subscriptions are not available over plain HTTP.
	URL string

	// ContractAddresses map holds contract name as a key and contract address
	// as a value.
	ContractAddresses map[string]string

	// RequestTimeout bounds every call and log query made to the node.
	// Defaults to DefaultRequestTimeout.
	RequestTimeout int // seconds
}

// ContractAddress finds a given contract's address configuration and returns it
// as ethereum Address.
func (c *Config) ContractAddress(contractName string) (common.Address, error) {
	contractAddress, ok := c.ContractAddresses[contractName]
	if !ok {
		return common.Address{}, fmt.Errorf(
			"failed to find configuration for contract [%s]",
			contractName,
		)
	}

	if !common.IsHexAddress(contractAddress) {
		return common.Address{}, fmt.Errorf(
			"configured address [%v] for contract [%v] is not valid hex address",
			contractAddress,
			contractName,
		)
	}

	return common.HexToAddress(contractAddress), nil
}
