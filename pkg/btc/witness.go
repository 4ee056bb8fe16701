package btc

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// ErrInputIndexOutOfRange is returned when a witness is attached to an input
// the transaction does not have.
var ErrInputIndexOutOfRange = errors.New("input index out of range")

// AttachWitness sets a pay-to-witness-public-key-hash (P2WPKH) witness on the
// input of an unsigned transaction built with BuildUnsignedTransaction and
// returns the signed transaction. The witness contains the DER signature
// followed by the SIGHASH_ALL byte and the compressed public key, according
// to [BIP-141]. All other fields are left unchanged.
//
// [BIP-141]: https://github.com/bitcoin/bips/blob/master/bip-0141.mediawiki#p2wpkh
func AttachWitness(
	unsignedTransaction []byte,
	inputIndex int,
	derSignature []byte,
	publicKey *btcec.PublicKey,
) ([]byte, error) {
	transaction, err := parseUnsignedTransaction(unsignedTransaction)
	if err != nil {
		return nil, err
	}

	if inputIndex < 0 || inputIndex >= len(transaction.TxIn) {
		return nil, fmt.Errorf(
			"transaction has [%d] inputs, index [%d] given: [%w]",
			len(transaction.TxIn),
			inputIndex,
			ErrInputIndexOutOfRange,
		)
	}

	if len(derSignature) == 0 {
		return nil, fmt.Errorf("empty signature")
	}
	if publicKey == nil {
		return nil, fmt.Errorf("missing public key")
	}

	signature := make([]byte, 0, len(derSignature)+1)
	signature = append(signature, derSignature...)
	signature = append(signature, byte(txscript.SigHashAll))

	transaction.TxIn[inputIndex].Witness = wire.TxWitness{
		signature,
		publicKey.SerializeCompressed(),
	}

	return serializeTransaction(transaction)
}
