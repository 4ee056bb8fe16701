package btc

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/keep-network/tbtc-redemption/pkg/chain/bitcoin"
)

// Publish submits a signed transaction to the bitcoin network through the
// given handle. It returns the transaction identifier computed locally from
// the transaction bytes. An identifier reported by the handle that differs
// from the local one is logged but does not fail the call. Failures are
// returned to the caller and never retried.
func Publish(
	ctx context.Context,
	handle bitcoin.Handle,
	signedTransaction []byte,
) (string, error) {
	transactionID, err := TransactionID(signedTransaction)
	if err != nil {
		return "", fmt.Errorf("invalid transaction: [%v]", err)
	}

	reportedTransactionID, err := handle.Broadcast(
		ctx,
		hex.EncodeToString(signedTransaction),
	)
	if err != nil {
		return "", fmt.Errorf(
			"failed to publish transaction [%s]: [%w]",
			transactionID,
			err,
		)
	}

	if reportedTransactionID != "" && reportedTransactionID != transactionID {
		logger.Warningf(
			"bitcoin endpoint reported transaction id [%s] "+
				"for transaction [%s]",
			reportedTransactionID,
			transactionID,
		)
	}

	return transactionID, nil
}
