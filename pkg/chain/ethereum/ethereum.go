// Package ethereum contains implementation of the tBTC host chain interface
// backed by an Ethereum node.
package ethereum

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/ipfs/go-log"

	"github.com/keep-network/tbtc-redemption/pkg/chain"
)

var logger = log.Logger("keep-chain-eth-ethereum")

// DefaultRequestTimeout is used when the configuration does not specify
// a request timeout.
const DefaultRequestTimeout = 1 * time.Minute

type ethereumChain struct {
	config         *Config
	client         *ethclient.Client
	requestTimeout time.Duration

	tbtcSystemContract *bind.BoundContract

	depositABI         abi.ABI
	bondedECDSAKeepABI abi.ABI
}

// Connect performs initialization for communication with Ethereum blockchain
// based on provided config.
func Connect(ctx context.Context, config *Config) (chain.TBTCHandle, error) {
	tbtcSystemAddress, err := config.ContractAddress(TBTCSystemContractName)
	if err != nil {
		return nil, err
	}

	client, err := ethclient.DialContext(ctx, config.URL)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to connect to ethereum node [%s]: [%v]",
			config.URL,
			err,
		)
	}

	ethereum, err := newEthereumChain(config, client, tbtcSystemAddress)
	if err != nil {
		client.Close()
		return nil, err
	}

	logger.Infof(
		"connected to ethereum node [%s]; TBTCSystem contract at [%s]",
		config.URL,
		tbtcSystemAddress.Hex(),
	)

	return ethereum, nil
}

func newEthereumChain(
	config *Config,
	client *ethclient.Client,
	tbtcSystemAddress common.Address,
) (*ethereumChain, error) {
	depositLogABI, err := abi.JSON(strings.NewReader(depositLogABIJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse DepositLog ABI: [%v]", err)
	}

	depositABI, err := abi.JSON(strings.NewReader(depositABIJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse Deposit ABI: [%v]", err)
	}

	bondedECDSAKeepABI, err := abi.JSON(strings.NewReader(bondedECDSAKeepABIJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse BondedECDSAKeep ABI: [%v]", err)
	}

	requestTimeout := DefaultRequestTimeout
	if config.RequestTimeout > 0 {
		requestTimeout = time.Duration(config.RequestTimeout) * time.Second
	}

	ethereum := &ethereumChain{
		config:             config,
		client:             client,
		requestTimeout:     requestTimeout,
		depositABI:         depositABI,
		bondedECDSAKeepABI: bondedECDSAKeepABI,
	}

	ethereum.tbtcSystemContract = ethereum.boundContract(
		tbtcSystemAddress,
		depositLogABI,
	)

	return ethereum, nil
}

func (ec *ethereumChain) boundContract(
	address common.Address,
	contractABI abi.ABI,
) *bind.BoundContract {
	// client may be nil in tests exercising only log decoding
	if ec.client == nil {
		return bind.NewBoundContract(address, contractABI, nil, nil, nil)
	}
	return bind.NewBoundContract(
		address,
		contractABI,
		ec.client,
		ec.client,
		ec.client,
	)
}

// BlockCounter returns the number of the latest mined block.
func (ec *ethereumChain) BlockCounter() (uint64, error) {
	ctx, cancelCtx := context.WithTimeout(context.Background(), ec.requestTimeout)
	defer cancelCtx()

	return ec.client.BlockNumber(ctx)
}

func (ec *ethereumChain) withRetry(fn func() error) error {
	const numberOfRetries = 5
	const delay = 5 * time.Second

	for i := 1; ; i++ {
		err := fn()
		if err != nil {
			logger.Errorf("Error occurred [%v]; on [%v] retry", err, i)
			if i == numberOfRetries {
				return err
			}
			time.Sleep(delay)
		} else {
			return nil
		}
	}
}

func toAddress(address string) (common.Address, error) {
	if !common.IsHexAddress(address) {
		return common.Address{}, fmt.Errorf(
			"[%s] is not a valid ethereum address",
			address,
		)
	}

	return common.HexToAddress(address), nil
}
