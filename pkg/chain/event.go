package chain

import (
	"math/big"
)

// DepositRedemptionRequestedEvent is an event emitted when a deposit
// redemption has been requested or the redemption fee has been increased.
// The redeemer output script is length-prefixed. The outpoint is the deposit
// UTXO reference: transaction hash in the wire byte order followed by the
// little-endian output index.
type DepositRedemptionRequestedEvent struct {
	DepositAddress       string
	RequesterAddress     string
	Digest               [32]byte
	UtxoValue            *big.Int
	RedeemerOutputScript []byte
	RequestedFee         *big.Int
	Outpoint             []byte
	BlockNumber          uint64
}

// DepositRegisteredPubkeyEvent is an event emitted when the public key of
// the keep backing a deposit has been registered for the deposit.
type DepositRegisteredPubkeyEvent struct {
	DepositAddress      string
	SigningGroupPubkeyX [32]byte
	SigningGroupPubkeyY [32]byte
	Timestamp           uint64
	BlockNumber         uint64
}

// SignatureSubmittedEvent is an event emitted when a keep submits a signature.
type SignatureSubmittedEvent struct {
	Digest      [32]byte
	R           [32]byte
	S           [32]byte
	RecoveryID  uint8
	BlockNumber uint64
}

// KeepClosedEvent is an event emitted when a keep has been closed.
type KeepClosedEvent struct {
	BlockNumber uint64
}

// KeepTerminatedEvent is an event emitted when a keep has been terminated.
type KeepTerminatedEvent struct {
	BlockNumber uint64
}
