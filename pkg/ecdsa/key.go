package ecdsa

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
)

// NewPublicKey builds a secp256k1 public key from its big-endian X and Y
// coordinates, as published by the signing group on-chain. It fails when the
// point is not on the curve.
func NewPublicKey(x, y []byte) (*btcec.PublicKey, error) {
	if len(x) != 32 || len(y) != 32 {
		return nil, fmt.Errorf(
			"expected 32 byte coordinates, got [%d] and [%d]",
			len(x),
			len(y),
		)
	}

	// Uncompressed form described in [SEC 1] section 2.3.3:
	// `04 + <x coordinate> + <y coordinate>`.
	uncompressed := make([]byte, 0, 65)
	uncompressed = append(uncompressed, 0x04)
	uncompressed = append(uncompressed, x...)
	uncompressed = append(uncompressed, y...)

	publicKey, err := btcec.ParsePubKey(uncompressed)
	if err != nil {
		return nil, fmt.Errorf("invalid public key: [%v]", err)
	}

	return publicKey, nil
}
