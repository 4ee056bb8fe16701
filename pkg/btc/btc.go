// Package btc builds, signs and publishes the single-input single-output
// witness transactions used to redeem tBTC deposits.
package btc

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/ipfs/go-log"
)

var logger = log.Logger("keep-btc")

// OutpointLength is the length of a serialized transaction outpoint: 32 bytes
// of the previous transaction hash followed by a 4 bytes output index.
const OutpointLength = chainhash.HashSize + 4

// ErrMalformedOutpoint is returned when a byte sequence cannot be interpreted
// as a transaction outpoint.
var ErrMalformedOutpoint = errors.New("malformed outpoint")

// Outpoint is a reference to a previous transaction output in the form it is
// stored by the deposit contract: the transaction hash in the internal
// (wire) byte order followed by the little-endian output index.
type Outpoint [OutpointLength]byte

// NewOutpoint validates the length of the given bytes and converts them to an
// Outpoint.
func NewOutpoint(outpointBytes []byte) (Outpoint, error) {
	var outpoint Outpoint

	if len(outpointBytes) != OutpointLength {
		return outpoint, fmt.Errorf(
			"expected [%d] bytes, got [%d]: [%w]",
			OutpointLength,
			len(outpointBytes),
			ErrMalformedOutpoint,
		)
	}

	copy(outpoint[:], outpointBytes)

	return outpoint, nil
}

// Hash returns the hash of the transaction holding the referenced output.
func (o Outpoint) Hash() chainhash.Hash {
	var hash chainhash.Hash
	copy(hash[:], o[:chainhash.HashSize])
	return hash
}

// Index returns the index of the referenced output.
func (o Outpoint) Index() uint32 {
	return binary.LittleEndian.Uint32(o[chainhash.HashSize:])
}

func (o Outpoint) String() string {
	hash := o.Hash()
	return fmt.Sprintf("%s:%d", hash.String(), o.Index())
}

// toSatoshi converts an unsigned amount to the signed representation used by
// the wire format, rejecting amounts no valid transaction could carry.
func toSatoshi(amount uint64) (int64, error) {
	if amount > uint64(btcutil.MaxSatoshi) {
		return 0, fmt.Errorf(
			"amount [%d] exceeds the maximum of [%d] satoshi",
			amount,
			int64(btcutil.MaxSatoshi),
		)
	}

	return int64(amount), nil
}
