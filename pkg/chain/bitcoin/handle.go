// Package bitcoin contains handles submitting transactions to the bitcoin
// network through one of the supported backends.
package bitcoin

import (
	"context"

	"github.com/ipfs/go-log"
)

var logger = log.Logger("keep-bitcoin")

// Handle serves as an interface abstraction around the bitcoin network.
type Handle interface {
	// Broadcast submits a raw transaction, hex encoded, to the network. It
	// returns the transaction identifier reported by the backend, which may
	// be empty when the backend does not report one.
	Broadcast(ctx context.Context, transaction string) (string, error)
}

// OfflineHandle does not talk to any network.
type OfflineHandle struct{}

// Broadcast logs a transaction as a warning five times in a row so that any
// warning monitors would pick it up and alert on it.
func (oh OfflineHandle) Broadcast(
	ctx context.Context,
	transaction string,
) (string, error) {
	for i := 0; i < 5; i++ {
		logger.Warningf("please broadcast bitcoin transaction [%s]", transaction)
	}
	return "", nil
}
