package btc

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
)

// PublicKeyToWitnessPubKeyHashAddress converts the public key to a bitcoin
// Witness Public Key Hash Address according to [BIP-173]. The witness program
// is RIPEMD-160 of SHA-256 of the compressed public key.
//
// [BIP-173]: https://github.com/bitcoin/bips/blob/master/bip-0173.mediawiki
func PublicKeyToWitnessPubKeyHashAddress(
	publicKey *btcec.PublicKey,
	netParams *chaincfg.Params,
) (string, error) {
	witnessProgram := btcutil.Hash160(publicKey.SerializeCompressed())

	address, err := btcutil.NewAddressWitnessPubKeyHash(witnessProgram, netParams)
	if err != nil {
		return "", err
	}

	return address.EncodeAddress(), nil
}

// AddressToOutputScript decodes a bitcoin address for the given network and
// returns the raw script paying to it. The result is the redeemer output
// script before length prefixing.
func AddressToOutputScript(
	address string,
	netParams *chaincfg.Params,
) ([]byte, error) {
	decodedAddress, err := btcutil.DecodeAddress(address, netParams)
	if err != nil {
		return nil, fmt.Errorf("failed to decode address [%s]: [%v]", address, err)
	}

	if !decodedAddress.IsForNet(netParams) {
		return nil, fmt.Errorf(
			"address [%s] is not valid for network [%s]",
			address,
			netParams.Name,
		)
	}

	script, err := txscript.PayToAddrScript(decodedAddress)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to build output script for address [%s]: [%v]",
			address,
			err,
		)
	}

	return script, nil
}
