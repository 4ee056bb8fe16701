package ethereum

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/keep-network/keep-common/pkg/subscription"
	"github.com/keep-network/tbtc-redemption/pkg/chain"
)

const (
	signatureSubmittedEventName = "SignatureSubmitted"
	keepClosedEventName         = "KeepClosed"
	keepTerminatedEventName     = "KeepTerminated"
)

type signatureSubmittedLog struct {
	Digest     [32]byte
	R          [32]byte
	S          [32]byte
	RecoveryID uint8
}

func (ec *ethereumChain) keepContract(
	keepAddress string,
) (*bind.BoundContract, error) {
	address, err := toAddress(keepAddress)
	if err != nil {
		return nil, err
	}

	return ec.boundContract(address, ec.bondedECDSAKeepABI), nil
}

// OnSignatureSubmitted installs a callback that is invoked when an on-chain
// notification of a signature of the given digest submitted by the given keep
// is seen.
func (ec *ethereumChain) OnSignatureSubmitted(
	keepAddress string,
	digest [32]byte,
	handler func(event *chain.SignatureSubmittedEvent),
) (subscription.EventSubscription, error) {
	contract, err := ec.keepContract(keepAddress)
	if err != nil {
		return nil, err
	}

	return watchLogs(
		contract,
		signatureSubmittedEventName,
		func(log types.Log) {
			event, err := decodeSignatureSubmitted(contract, log)
			if err != nil {
				logger.Errorf(
					"could not decode [%s] log of keep [%s]: [%v]",
					signatureSubmittedEventName,
					keepAddress,
					err,
				)
				return
			}
			handler(event)
		},
		digestRule(digest),
	), nil
}

// PastSignatureSubmittedEvents returns all signature submitted events of the
// given digest for the given keep which occurred after the provided start
// block, sorted by the block number in the ascending order.
func (ec *ethereumChain) PastSignatureSubmittedEvents(
	keepAddress string,
	digest [32]byte,
	startBlock uint64,
) ([]*chain.SignatureSubmittedEvent, error) {
	contract, err := ec.keepContract(keepAddress)
	if err != nil {
		return nil, err
	}

	var logs []types.Log
	err = ec.withRetry(func() error {
		logs, err = pastLogs(
			contract,
			ec.requestTimeout,
			signatureSubmittedEventName,
			startBlock,
			digestRule(digest),
		)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf(
			"failed to fetch past signature submitted events of keep [%s]: [%v]",
			keepAddress,
			err,
		)
	}

	result := make([]*chain.SignatureSubmittedEvent, 0, len(logs))
	for _, log := range logs {
		event, err := decodeSignatureSubmitted(contract, log)
		if err != nil {
			return nil, err
		}
		result = append(result, event)
	}

	return result, nil
}

// OnKeepClosed installs a callback that will be called on closing the given
// keep.
func (ec *ethereumChain) OnKeepClosed(
	keepAddress string,
	handler func(event *chain.KeepClosedEvent),
) (subscription.EventSubscription, error) {
	contract, err := ec.keepContract(keepAddress)
	if err != nil {
		return nil, err
	}

	return watchLogs(
		contract,
		keepClosedEventName,
		func(log types.Log) {
			handler(&chain.KeepClosedEvent{BlockNumber: log.BlockNumber})
		},
	), nil
}

// OnKeepTerminated installs a callback that will be called on terminating
// the given keep.
func (ec *ethereumChain) OnKeepTerminated(
	keepAddress string,
	handler func(event *chain.KeepTerminatedEvent),
) (subscription.EventSubscription, error) {
	contract, err := ec.keepContract(keepAddress)
	if err != nil {
		return nil, err
	}

	return watchLogs(
		contract,
		keepTerminatedEventName,
		func(log types.Log) {
			handler(&chain.KeepTerminatedEvent{BlockNumber: log.BlockNumber})
		},
	), nil
}

func decodeSignatureSubmitted(
	contract *bind.BoundContract,
	log types.Log,
) (*chain.SignatureSubmittedEvent, error) {
	unpacked := new(signatureSubmittedLog)
	if err := contract.UnpackLog(unpacked, signatureSubmittedEventName, log); err != nil {
		return nil, fmt.Errorf(
			"failed to unpack [%s] log: [%v]",
			signatureSubmittedEventName,
			err,
		)
	}

	return &chain.SignatureSubmittedEvent{
		Digest:      unpacked.Digest,
		R:           unpacked.R,
		S:           unpacked.S,
		RecoveryID:  unpacked.RecoveryID,
		BlockNumber: log.BlockNumber,
	}, nil
}

func digestRule(digest [32]byte) []interface{} {
	return []interface{}{common.Hash(digest)}
}
