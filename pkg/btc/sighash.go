package btc

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
)

// PublicKeyToWitnessPubKeyHashScript returns the P2WPKH locking script
// (`OP_0 <hash160(compressed key)>`) of the given public key. This is the
// script locking every deposit UTXO.
func PublicKeyToWitnessPubKeyHashScript(
	publicKey *btcec.PublicKey,
) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_0).
		AddData(btcutil.Hash160(publicKey.SerializeCompressed())).
		Script()
}

// CalculateSighash computes the witness signature hash of the only input of
// an unsigned redemption transaction, spending a P2WPKH output of the given
// public key holding previousOutputValue satoshi. The hash is computed with
// SIGHASH_ALL according to [BIP-143] and is the digest the deposit contract
// asks the keep to sign.
//
// [BIP-143]: https://github.com/bitcoin/bips/blob/master/bip-0143.mediawiki
func CalculateSighash(
	unsignedTransaction []byte,
	publicKey *btcec.PublicKey,
	previousOutputValue uint64,
) ([32]byte, error) {
	var sighash [32]byte

	transaction, err := parseUnsignedTransaction(unsignedTransaction)
	if err != nil {
		return sighash, err
	}

	value, err := toSatoshi(previousOutputValue)
	if err != nil {
		return sighash, err
	}

	previousOutputScript, err := PublicKeyToWitnessPubKeyHashScript(publicKey)
	if err != nil {
		return sighash, fmt.Errorf(
			"failed to build previous output script: [%v]",
			err,
		)
	}

	previousOutputFetcher := txscript.NewCannedPrevOutputFetcher(
		previousOutputScript,
		value,
	)

	sighashBytes, err := txscript.CalcWitnessSigHash(
		previousOutputScript,
		txscript.NewTxSigHashes(transaction, previousOutputFetcher),
		txscript.SigHashAll,
		transaction,
		0,
		value,
	)
	if err != nil {
		return sighash, fmt.Errorf("failed to calculate sighash: [%v]", err)
	}

	copy(sighash[:], sighashBytes)

	return sighash, nil
}
