// Package chain contains the interface for interaction with the host chain
// running tBTC contracts, along with structures reflecting events emitted by
// those contracts.
package chain

import (
	"github.com/keep-network/keep-common/pkg/subscription"
)

// TBTCHandle represents a handle to the host chain with tBTC-specific
// capabilities. The handle only reads from the chain.
type TBTCHandle interface {
	// BlockCounter returns the number of the latest mined block.
	BlockCounter() (uint64, error)

	Deposit
	TBTCSystem
	BondedECDSAKeep
}

// Deposit is an interface that provides ability to interact with Deposit
// contracts.
type Deposit interface {
	// KeepAddress returns the address of the keep backing the deposit.
	KeepAddress(depositAddress string) (string, error)

	// CurrentState returns the current state of the deposit.
	CurrentState(depositAddress string) (DepositState, error)
}

// TBTCSystem is an interface that provides ability to interact with the
// TBTCSystem contract. The contract emits events of all deposits.
type TBTCSystem interface {
	// OnDepositRedemptionRequested installs a callback that is invoked when
	// an on-chain notification of a redemption request made by the given
	// requester is seen. An empty requester matches all requests.
	OnDepositRedemptionRequested(
		requesterAddress string,
		handler func(event *DepositRedemptionRequestedEvent),
	) (subscription.EventSubscription, error)

	// PastDepositRedemptionRequestedEvents returns all redemption requested
	// events of the given requester which occurred after the provided start
	// block. An empty requester matches all requests. All implementations
	// should return those events sorted by the block number in the ascending
	// order.
	PastDepositRedemptionRequestedEvents(
		requesterAddress string,
		startBlock uint64,
	) ([]*DepositRedemptionRequestedEvent, error)

	// PastDepositRegisteredPubkeyEvents returns all public key registration
	// events of the given deposit, sorted by the block number in the
	// ascending order.
	PastDepositRegisteredPubkeyEvents(
		depositAddress string,
	) ([]*DepositRegisteredPubkeyEvent, error)
}

// BondedECDSAKeep is an interface that provides ability to interact with
// BondedECDSAKeep contracts.
type BondedECDSAKeep interface {
	// OnSignatureSubmitted installs a callback that is invoked when an
	// on-chain notification of a signature of the given digest submitted by
	// the given keep is seen.
	OnSignatureSubmitted(
		keepAddress string,
		digest [32]byte,
		handler func(event *SignatureSubmittedEvent),
	) (subscription.EventSubscription, error)

	// PastSignatureSubmittedEvents returns all signature submitted events
	// of the given digest for the given keep which occurred after the
	// provided start block.
	// All implementations should return those events sorted by the
	// block number in the ascending order.
	PastSignatureSubmittedEvents(
		keepAddress string,
		digest [32]byte,
		startBlock uint64,
	) ([]*SignatureSubmittedEvent, error)

	// OnKeepClosed installs a callback that will be called on closing the
	// given keep.
	OnKeepClosed(
		keepAddress string,
		handler func(event *KeepClosedEvent),
	) (subscription.EventSubscription, error)

	// OnKeepTerminated installs a callback that will be called on terminating
	// the given keep.
	OnKeepTerminated(
		keepAddress string,
		handler func(event *KeepTerminatedEvent),
	) (subscription.EventSubscription, error)
}
