package btc

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/wire"
)

const (
	// TransactionVersion is the version of built redemption transactions.
	TransactionVersion = 1

	// RedemptionInputSequence is the input sequence number the deposit
	// contract commits to when it computes the redemption digest.
	RedemptionInputSequence = uint32(0)
)

var (
	// ErrMalformedTransaction is returned when a byte sequence is not an
	// unsigned transaction produced by BuildUnsignedTransaction.
	ErrMalformedTransaction = errors.New("malformed redemption transaction")

	// ErrInvalidOutputValue is returned when the output value is zero or
	// cannot be represented in a transaction.
	ErrInvalidOutputValue = errors.New("invalid output value")
)

// BuildUnsignedTransaction serializes a version 1 transaction with a single
// input spending the outpoint and a single output paying outputValue satoshi
// to outputScript. The input has an empty scriptSig and no witness; the
// locktime is zero. The function is deterministic.
//
// The output script is the raw script, without the length prefix.
func BuildUnsignedTransaction(
	outpoint Outpoint,
	inputSequence uint32,
	outputValue uint64,
	outputScript []byte,
) ([]byte, error) {
	if outputValue == 0 {
		return nil, fmt.Errorf("output value is zero: [%w]", ErrInvalidOutputValue)
	}
	value, err := toSatoshi(outputValue)
	if err != nil {
		return nil, fmt.Errorf("%v: [%w]", err, ErrInvalidOutputValue)
	}

	if len(outputScript) == 0 {
		return nil, fmt.Errorf("empty output script: [%w]", ErrMalformedScript)
	}
	if len(outputScript) > MaxOutputScriptLength {
		return nil, fmt.Errorf(
			"output script has [%d] bytes: [%w]",
			len(outputScript),
			ErrScriptTooLong,
		)
	}

	previousTransactionHash := outpoint.Hash()

	transaction := wire.NewMsgTx(TransactionVersion)

	input := wire.NewTxIn(
		wire.NewOutPoint(&previousTransactionHash, outpoint.Index()),
		nil, // scriptSig is empty for witness spends
		nil,
	)
	input.Sequence = inputSequence
	transaction.AddTxIn(input)

	script := make([]byte, len(outputScript))
	copy(script, outputScript)
	transaction.AddTxOut(wire.NewTxOut(value, script))

	transaction.LockTime = 0

	return serializeTransaction(transaction)
}

// TransactionID computes the identifier of a serialized transaction: the
// double SHA-256 of its serialization without witness data, in the usual
// reversed hex form.
func TransactionID(rawTransaction []byte) (string, error) {
	transaction, err := deserializeTransaction(rawTransaction)
	if err != nil {
		return "", err
	}

	return transaction.TxHash().String(), nil
}

// parseUnsignedTransaction deserializes the transaction and checks it has the
// shape of a BuildUnsignedTransaction product.
func parseUnsignedTransaction(rawTransaction []byte) (*wire.MsgTx, error) {
	transaction, err := deserializeTransaction(rawTransaction)
	if err != nil {
		return nil, fmt.Errorf("%v: [%w]", err, ErrMalformedTransaction)
	}

	switch {
	case transaction.Version != TransactionVersion:
		return nil, fmt.Errorf(
			"unexpected version [%d]: [%w]",
			transaction.Version,
			ErrMalformedTransaction,
		)
	case len(transaction.TxIn) != 1:
		return nil, fmt.Errorf(
			"expected one input, got [%d]: [%w]",
			len(transaction.TxIn),
			ErrMalformedTransaction,
		)
	case len(transaction.TxOut) != 1:
		return nil, fmt.Errorf(
			"expected one output, got [%d]: [%w]",
			len(transaction.TxOut),
			ErrMalformedTransaction,
		)
	case transaction.LockTime != 0:
		return nil, fmt.Errorf(
			"unexpected locktime [%d]: [%w]",
			transaction.LockTime,
			ErrMalformedTransaction,
		)
	case len(transaction.TxIn[0].SignatureScript) != 0:
		return nil, fmt.Errorf("non-empty scriptSig: [%w]", ErrMalformedTransaction)
	case len(transaction.TxIn[0].Witness) != 0:
		return nil, fmt.Errorf("transaction is already signed: [%w]", ErrMalformedTransaction)
	}

	return transaction, nil
}

func deserializeTransaction(rawTransaction []byte) (*wire.MsgTx, error) {
	transaction := wire.NewMsgTx(wire.TxVersion)

	reader := bytes.NewReader(rawTransaction)
	if err := transaction.Deserialize(reader); err != nil {
		return nil, fmt.Errorf("failed to deserialize transaction: [%v]", err)
	}
	if reader.Len() != 0 {
		return nil, fmt.Errorf(
			"failed to deserialize transaction: [%d] trailing bytes",
			reader.Len(),
		)
	}

	return transaction, nil
}

func serializeTransaction(transaction *wire.MsgTx) ([]byte, error) {
	var buffer bytes.Buffer

	if err := transaction.Serialize(&buffer); err != nil {
		return nil, fmt.Errorf("failed to serialize transaction: [%v]", err)
	}

	return buffer.Bytes(), nil
}
