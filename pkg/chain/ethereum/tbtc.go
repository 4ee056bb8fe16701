package ethereum

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/keep-network/keep-common/pkg/subscription"
	"github.com/keep-network/tbtc-redemption/pkg/chain"
)

const (
	redemptionRequestedEventName = "RedemptionRequested"
	registeredPubkeyEventName    = "RegisteredPubkey"
)

type redemptionRequestedLog struct {
	DepositContractAddress common.Address
	Requester              common.Address
	Digest                 [32]byte
	UtxoValue              *big.Int
	RedeemerOutputScript   []byte
	RequestedFee           *big.Int
	Outpoint               []byte
}

type registeredPubkeyLog struct {
	DepositContractAddress common.Address
	SigningGroupPubkeyX    [32]byte
	SigningGroupPubkeyY    [32]byte
	Timestamp              *big.Int
}

// OnDepositRedemptionRequested installs a callback that is invoked when an
// on-chain notification of a redemption request made by the given requester
// is seen.
func (ec *ethereumChain) OnDepositRedemptionRequested(
	requesterAddress string,
	handler func(event *chain.DepositRedemptionRequestedEvent),
) (subscription.EventSubscription, error) {
	requesterRule, err := addressRule(requesterAddress)
	if err != nil {
		return nil, err
	}

	return watchLogs(
		ec.tbtcSystemContract,
		redemptionRequestedEventName,
		func(log types.Log) {
			event, err := decodeRedemptionRequested(ec.tbtcSystemContract, log)
			if err != nil {
				logger.Errorf(
					"could not decode [%s] log from transaction [%s]: [%v]",
					redemptionRequestedEventName,
					log.TxHash.Hex(),
					err,
				)
				return
			}
			handler(event)
		},
		nil, // any deposit
		requesterRule,
	), nil
}

// PastDepositRedemptionRequestedEvents returns all redemption requested
// events of the given requester which occurred after the provided start
// block, sorted by the block number in the ascending order.
func (ec *ethereumChain) PastDepositRedemptionRequestedEvents(
	requesterAddress string,
	startBlock uint64,
) ([]*chain.DepositRedemptionRequestedEvent, error) {
	requesterRule, err := addressRule(requesterAddress)
	if err != nil {
		return nil, err
	}

	var logs []types.Log
	err = ec.withRetry(func() error {
		logs, err = pastLogs(
			ec.tbtcSystemContract,
			ec.requestTimeout,
			redemptionRequestedEventName,
			startBlock,
			nil, // any deposit
			requesterRule,
		)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf(
			"failed to fetch past redemption requested events: [%v]",
			err,
		)
	}

	result := make([]*chain.DepositRedemptionRequestedEvent, 0, len(logs))
	for _, log := range logs {
		event, err := decodeRedemptionRequested(ec.tbtcSystemContract, log)
		if err != nil {
			return nil, err
		}
		result = append(result, event)
	}

	return result, nil
}

// PastDepositRegisteredPubkeyEvents returns all public key registration
// events of the given deposit, sorted by the block number in the ascending
// order.
func (ec *ethereumChain) PastDepositRegisteredPubkeyEvents(
	depositAddress string,
) ([]*chain.DepositRegisteredPubkeyEvent, error) {
	depositRule, err := addressRule(depositAddress)
	if err != nil {
		return nil, err
	}

	var logs []types.Log
	err = ec.withRetry(func() error {
		logs, err = pastLogs(
			ec.tbtcSystemContract,
			ec.requestTimeout,
			registeredPubkeyEventName,
			0,
			depositRule,
		)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf(
			"failed to fetch registered pubkey events for deposit [%s]: [%v]",
			depositAddress,
			err,
		)
	}

	result := make([]*chain.DepositRegisteredPubkeyEvent, 0, len(logs))
	for _, log := range logs {
		event, err := decodeRegisteredPubkey(ec.tbtcSystemContract, log)
		if err != nil {
			return nil, err
		}
		result = append(result, event)
	}

	return result, nil
}

// KeepAddress returns the address of the keep backing the deposit.
func (ec *ethereumChain) KeepAddress(depositAddress string) (string, error) {
	var result []interface{}
	err := ec.callDeposit(depositAddress, &result, "getKeepAddress")
	if err != nil {
		return "", err
	}

	keepAddress := *abi.ConvertType(result[0], new(common.Address)).(*common.Address)

	return keepAddress.Hex(), nil
}

// CurrentState returns the current state of the deposit.
func (ec *ethereumChain) CurrentState(
	depositAddress string,
) (chain.DepositState, error) {
	var result []interface{}
	err := ec.callDeposit(depositAddress, &result, "currentState")
	if err != nil {
		return 0, err
	}

	state := *abi.ConvertType(result[0], new(*big.Int)).(**big.Int)
	if !state.IsInt64() {
		return 0, fmt.Errorf("deposit state [%v] out of range", state)
	}

	return chain.DepositState(state.Int64()), nil
}

func (ec *ethereumChain) callDeposit(
	depositAddress string,
	result *[]interface{},
	method string,
) error {
	address, err := toAddress(depositAddress)
	if err != nil {
		return err
	}

	contract := ec.boundContract(address, ec.depositABI)

	err = ec.withRetry(func() error {
		ctx, cancelCtx := context.WithTimeout(
			context.Background(),
			ec.requestTimeout,
		)
		defer cancelCtx()

		return contract.Call(&bind.CallOpts{Context: ctx}, result, method)
	})
	if err != nil {
		return fmt.Errorf(
			"failed to call [%s] on deposit [%s]: [%v]",
			method,
			depositAddress,
			err,
		)
	}

	if len(*result) == 0 {
		return fmt.Errorf(
			"empty result of [%s] call on deposit [%s]",
			method,
			depositAddress,
		)
	}

	return nil
}

func decodeRedemptionRequested(
	contract *bind.BoundContract,
	log types.Log,
) (*chain.DepositRedemptionRequestedEvent, error) {
	unpacked := new(redemptionRequestedLog)
	if err := contract.UnpackLog(unpacked, redemptionRequestedEventName, log); err != nil {
		return nil, fmt.Errorf(
			"failed to unpack [%s] log: [%v]",
			redemptionRequestedEventName,
			err,
		)
	}

	return &chain.DepositRedemptionRequestedEvent{
		DepositAddress:       unpacked.DepositContractAddress.Hex(),
		RequesterAddress:     unpacked.Requester.Hex(),
		Digest:               unpacked.Digest,
		UtxoValue:            unpacked.UtxoValue,
		RedeemerOutputScript: unpacked.RedeemerOutputScript,
		RequestedFee:         unpacked.RequestedFee,
		Outpoint:             unpacked.Outpoint,
		BlockNumber:          log.BlockNumber,
	}, nil
}

func decodeRegisteredPubkey(
	contract *bind.BoundContract,
	log types.Log,
) (*chain.DepositRegisteredPubkeyEvent, error) {
	unpacked := new(registeredPubkeyLog)
	if err := contract.UnpackLog(unpacked, registeredPubkeyEventName, log); err != nil {
		return nil, fmt.Errorf(
			"failed to unpack [%s] log: [%v]",
			registeredPubkeyEventName,
			err,
		)
	}

	return &chain.DepositRegisteredPubkeyEvent{
		DepositAddress:      unpacked.DepositContractAddress.Hex(),
		SigningGroupPubkeyX: unpacked.SigningGroupPubkeyX,
		SigningGroupPubkeyY: unpacked.SigningGroupPubkeyY,
		Timestamp:           unpacked.Timestamp.Uint64(),
		BlockNumber:         log.BlockNumber,
	}, nil
}

// addressRule converts an optional address into a topic filter rule. Empty
// address yields a wildcard.
func addressRule(address string) ([]interface{}, error) {
	if address == "" {
		return nil, nil
	}

	parsed, err := toAddress(address)
	if err != nil {
		return nil, err
	}

	return []interface{}{parsed}, nil
}
