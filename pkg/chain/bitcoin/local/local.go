// Package local contains a local, in-memory implementation of the bitcoin
// handle. Published transactions are validated with the script engine
// against outputs known to the chain. This implementation is for development
// and testing purposes only.
package local

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// Chain is an in-memory bitcoin chain.
type Chain struct {
	mutex sync.Mutex

	outputs      map[wire.OutPoint]*wire.TxOut
	transactions map[string]*wire.MsgTx

	// broadcastError, when set, fails every broadcast.
	broadcastError error
}

// Connect returns an empty local chain.
func Connect() *Chain {
	return &Chain{
		outputs:      make(map[wire.OutPoint]*wire.TxOut),
		transactions: make(map[string]*wire.MsgTx),
	}
}

// AddOutput registers an unspent output the chain's transactions can spend.
func (c *Chain) AddOutput(outpoint wire.OutPoint, pkScript []byte, value int64) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.outputs[outpoint] = wire.NewTxOut(value, pkScript)
}

// SetBroadcastError makes every subsequent broadcast fail with the error.
// Nil restores normal behavior.
func (c *Chain) SetBroadcastError(err error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.broadcastError = err
}

// Transactions returns identifiers of all accepted transactions.
func (c *Chain) Transactions() []string {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	ids := make([]string, 0, len(c.transactions))
	for id := range c.transactions {
		ids = append(ids, id)
	}
	return ids
}

// Transaction returns an accepted transaction.
func (c *Chain) Transaction(transactionID string) (*wire.MsgTx, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	transaction, ok := c.transactions[transactionID]
	return transaction, ok
}

// Broadcast decodes a transaction, validates every input of it against the
// spent outputs and marks the outputs as spent. It returns the transaction
// hash as the transaction identifier.
func (c *Chain) Broadcast(
	ctx context.Context,
	transaction string,
) (string, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.broadcastError != nil {
		return "", c.broadcastError
	}

	if transaction == "" {
		return "", fmt.Errorf("empty transaction provided")
	}

	transactionBytes, err := hex.DecodeString(transaction)
	if err != nil {
		return "", fmt.Errorf("cannot decode transaction: [%v]", err)
	}

	msgTx := wire.NewMsgTx(wire.TxVersion)
	if err := msgTx.Deserialize(bytes.NewReader(transactionBytes)); err != nil {
		return "", fmt.Errorf("cannot deserialize transaction: [%v]", err)
	}

	transactionID := msgTx.TxHash().String()
	if _, ok := c.transactions[transactionID]; ok {
		return "", fmt.Errorf(
			"transaction already registered on chain for hash [%s]",
			transactionID,
		)
	}

	previousOutputs := make(map[wire.OutPoint]*wire.TxOut)
	for _, input := range msgTx.TxIn {
		previousOutput, ok := c.outputs[input.PreviousOutPoint]
		if !ok {
			return "", fmt.Errorf(
				"previous output not found for outpoint [%s]",
				input.PreviousOutPoint,
			)
		}
		previousOutputs[input.PreviousOutPoint] = previousOutput
	}

	if err := ValidateTransaction(msgTx, previousOutputs); err != nil {
		return "", err
	}

	for _, input := range msgTx.TxIn {
		delete(c.outputs, input.PreviousOutPoint)
	}
	transactionHash := msgTx.TxHash()
	for index, output := range msgTx.TxOut {
		c.outputs[*wire.NewOutPoint(&transactionHash, uint32(index))] = output
	}
	c.transactions[transactionID] = msgTx

	return transactionID, nil
}

// ValidateTransaction verifies if every input of the transaction fulfills
// the requirements specified by bitcoin's StandardVerifyFlags.
func ValidateTransaction(
	transaction *wire.MsgTx,
	previousOutputs map[wire.OutPoint]*wire.TxOut,
) error {
	previousOutputFetcher := txscript.NewMultiPrevOutFetcher(previousOutputs)
	sigHashes := txscript.NewTxSigHashes(transaction, previousOutputFetcher)

	for inputIndex, input := range transaction.TxIn {
		previousOutput := previousOutputFetcher.FetchPrevOutput(
			input.PreviousOutPoint,
		)
		if previousOutput == nil {
			return fmt.Errorf(
				"missing previous output for input [%d]",
				inputIndex,
			)
		}

		validationEngine, err := txscript.NewEngine(
			previousOutput.PkScript,
			transaction,
			inputIndex,
			txscript.StandardVerifyFlags,
			nil,
			sigHashes,
			previousOutput.Value,
			previousOutputFetcher,
		)
		if err != nil {
			return fmt.Errorf("cannot create validation engine: [%v]", err)
		}

		if err := validationEngine.Execute(); err != nil {
			return fmt.Errorf(
				"transaction validation failed for input [%d]: [%v]",
				inputIndex,
				err,
			)
		}
	}

	return nil
}
