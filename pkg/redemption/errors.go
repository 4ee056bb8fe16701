package redemption

import "errors"

// Categories of redemption workflow failures. Errors returned by the monitor
// wrap one of them so callers can branch with errors.Is.
var (
	// ErrProtocolMismatch is returned when the request fields cannot produce
	// a transaction with the requested signature digest.
	ErrProtocolMismatch = errors.New("protocol mismatch")

	// ErrMissingKey is returned when the deposit has no registered signing
	// group public key.
	ErrMissingKey = errors.New("missing deposit public key")

	// ErrEncoding is returned when the request carries data which cannot be
	// encoded into a redemption transaction.
	ErrEncoding = errors.New("encoding error")

	// ErrVerificationFailure is returned when a signature does not satisfy
	// the ECDSA verification against the deposit public key.
	ErrVerificationFailure = errors.New("verification failure")

	// ErrBroadcastFailure is returned when the signed transaction could not
	// be submitted to the bitcoin network.
	ErrBroadcastFailure = errors.New("broadcast failure")

	// ErrChainFailure is returned when the host chain could not be queried
	// or subscribed to for the data the workflow depends on.
	ErrChainFailure = errors.New("host chain failure")

	// ErrSignatureTimeout is returned when no valid signature was submitted
	// in the configured time frame.
	ErrSignatureTimeout = errors.New("signature not submitted in time")

	// ErrKeepClosed is returned when the keep backing the deposit was closed
	// or terminated before submitting a valid signature.
	ErrKeepClosed = errors.New("keep closed")
)
