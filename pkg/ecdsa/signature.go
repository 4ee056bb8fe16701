// Package ecdsa assembles secp256k1 ECDSA signatures produced by a signing
// group into the form bitcoin consensus accepts. It follows the standards
// described in [SEC 1] and the low-S rule of [BIP-146].
//
//	[SEC 1]: Standards for Efficient Cryptography, SEC 1: Elliptic Curve
//	  Cryptography, Certicom Research, https://www.secg.org/sec1-v2.pdf
//	[BIP-146]: https://github.com/bitcoin/bips/blob/master/bip-0146.mediawiki
package ecdsa

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

var (
	// ErrProtocolMismatch is returned when a signature was produced over a
	// digest other than the expected one.
	ErrProtocolMismatch = errors.New("signature digest mismatch")

	// ErrVerificationFailure is returned when a signature does not verify
	// against the public key.
	ErrVerificationFailure = errors.New("signature verification failed")

	// ErrInvalidSignature is returned when signature components are out of
	// the range of the curve order.
	ErrInvalidSignature = errors.New("invalid signature")
)

var (
	curveOrder     = btcec.S256().N
	halfCurveOrder = new(big.Int).Rsh(curveOrder, 1)
)

// Signature holds a signature in a form of two big.Int `r` and `s` values and a
// recovery ID value in {0, 1, 2, 3}.
//
// The recovery ID starts from 0. Ethereum contracts and compact bitcoin
// signatures add 27 to it.
type Signature struct {
	R          *big.Int
	S          *big.Int
	RecoveryID int
}

// NewSignature builds a signature from big-endian `r` and `s` values.
func NewSignature(r, s []byte, recoveryID int) *Signature {
	return &Signature{
		R:          new(big.Int).SetBytes(r),
		S:          new(big.Int).SetBytes(s),
		RecoveryID: recoveryID,
	}
}

func (s *Signature) String() string {
	return fmt.Sprintf(
		"R: %#x, S: %#x, RecoveryID: %d",
		s.R,
		s.S,
		s.RecoveryID,
	)
}

// IsLowS checks whether `s` is at most half the curve order.
func (s *Signature) IsLowS() bool {
	return s.S.Cmp(halfCurveOrder) <= 0
}

// Canonical returns the low-S form of the signature. A signature with `s`
// above half the curve order is replaced by `(r, N - s)`, which is valid for
// the same digest and key, and the parity bit of the recovery ID is flipped
// as the replacement negates the `R` point. The function is idempotent.
func (s *Signature) Canonical() *Signature {
	if s.IsLowS() {
		return &Signature{
			R:          new(big.Int).Set(s.R),
			S:          new(big.Int).Set(s.S),
			RecoveryID: s.RecoveryID,
		}
	}

	return &Signature{
		R:          new(big.Int).Set(s.R),
		S:          new(big.Int).Sub(curveOrder, s.S),
		RecoveryID: s.RecoveryID ^ 1,
	}
}

func (s *Signature) validate() error {
	if s.R == nil || s.S == nil {
		return fmt.Errorf("missing signature component: [%w]", ErrInvalidSignature)
	}
	if s.R.Sign() <= 0 || s.R.Cmp(curveOrder) >= 0 {
		return fmt.Errorf("r is out of range: [%w]", ErrInvalidSignature)
	}
	if s.S.Sign() <= 0 || s.S.Cmp(curveOrder) >= 0 {
		return fmt.Errorf("s is out of range: [%w]", ErrInvalidSignature)
	}
	if s.RecoveryID < 0 || s.RecoveryID > 3 {
		return fmt.Errorf(
			"recovery id [%d] is out of range: [%w]",
			s.RecoveryID,
			ErrInvalidSignature,
		)
	}
	return nil
}

// Normalize returns the DER encoding of the low-S form of the signature.
func Normalize(signature *Signature) ([]byte, error) {
	if err := signature.validate(); err != nil {
		return nil, err
	}

	canonical := signature.Canonical()

	var r, s btcec.ModNScalar
	r.SetByteSlice(canonical.R.Bytes())
	s.SetByteSlice(canonical.S.Bytes())

	return btcecdsa.NewSignature(&r, &s).Serialize(), nil
}

// RecoverPublicKey recovers the public key of the signer from the digest and
// the signature's `r`, `s` and recovery ID.
func RecoverPublicKey(
	digest [32]byte,
	signature *Signature,
) (*btcec.PublicKey, error) {
	if err := signature.validate(); err != nil {
		return nil, err
	}

	canonical := signature.Canonical()

	// Compact signature: header byte followed by `r` and `s`, 32 bytes each.
	// The header is 27 + recovery ID, plus 4 for a compressed key.
	compact := make([]byte, 65)
	compact[0] = byte(27 + canonical.RecoveryID + 4)
	canonical.R.FillBytes(compact[1:33])
	canonical.S.FillBytes(compact[33:65])

	publicKey, _, err := btcecdsa.RecoverCompact(compact, digest[:])
	if err != nil {
		return nil, fmt.Errorf("failed to recover public key: [%v]", err)
	}

	return publicKey, nil
}

// Verify checks the DER encoded signature over the digest against the public
// key.
func Verify(digest [32]byte, derSignature []byte, publicKey *btcec.PublicKey) bool {
	signature, err := btcecdsa.ParseDERSignature(derSignature)
	if err != nil {
		return false
	}

	return signature.Verify(digest[:], publicKey)
}

// Assemble turns a signature observed for the given digest into the low-S
// DER encoding spending the output locked to the public key. It fails with
// ErrProtocolMismatch when the signed digest is not the expected one, and
// with ErrVerificationFailure when the signature does not verify.
func Assemble(
	expectedDigest [32]byte,
	digest [32]byte,
	signature *Signature,
	publicKey *btcec.PublicKey,
) ([]byte, error) {
	if expectedDigest != digest {
		return nil, fmt.Errorf(
			"expected digest [%x], signature is over [%x]: [%w]",
			expectedDigest,
			digest,
			ErrProtocolMismatch,
		)
	}

	derSignature, err := Normalize(signature)
	if err != nil {
		return nil, fmt.Errorf("%v: [%w]", err, ErrVerificationFailure)
	}

	if !Verify(digest, derSignature, publicKey) {
		return nil, fmt.Errorf(
			"signature [%v] does not match public key [%x]: [%w]",
			signature,
			publicKey.SerializeCompressed(),
			ErrVerificationFailure,
		)
	}

	return derSignature, nil
}
