// Package testdata contains redemption data used in tests.
package testdata

// Redemption holds data of a single deposit redemption. Keys and signature
// components are hex encoded, big-endian.
type Redemption struct {
	DepositPrivateKey  string // private key of the deposit signer
	PublicKeyX         string // deposit public key X coordinate
	PublicKeyY         string // deposit public key Y coordinate
	CompressedKey      string // compressed deposit public key
	DepositScript      string // P2WPKH script locking the deposit UTXO
	Outpoint           string // deposit UTXO outpoint: txid ‖ LE index
	UtxoValue          uint64 // value of the deposit UTXO
	RequestedFee       uint64 // fee requested by the redeemer
	OutputValue        uint64 // value paid to the redeemer
	RedeemerScript     string // redeemer output script, not length-prefixed
	UnsignedRaw        string // serialized transaction before signing
	Digest             string // witness signature hash of the transaction
	SignatureR         string // signature R
	SignatureS         string // signature S in low-S form
	RecoveryID         uint8  // recovery ID matching the low-S form
	SignatureHighS     string // N - SignatureS
	RecoveryIDHighS    uint8  // recovery ID matching the high-S form
	SignatureDER       string // DER encoding of the low-S signature
	SignedRaw          string // serialized transaction after signing
	TransactionID      string // identifier of the signed transaction
	OtherKeyX          string // X coordinate of an unrelated public key
	OtherKeyY          string // Y coordinate of an unrelated public key
	DepositAddress     string // ethereum address of the deposit contract
	KeepAddress        string // ethereum address of the deposit's keep
	RequesterAddress   string // ethereum address of the redeemer
	RedemptionBlockNum uint64 // block of the redemption request
}

// ValidRedemption is a complete, consistent redemption of a single deposit.
var ValidRedemption = Redemption{
	DepositPrivateKey:  "d3abbfc01ee8caa83e942920a916a38476a2c914f6e35d2ae6c2506eee74d866",
	PublicKeyX:         "50df5415eda6c7ae0d4729174697550df4b042052364be169388341aa8d5de5e",
	PublicKeyY:         "d75e1e641aed32e44b827be2b442132a039d34b642259449dd28a57f95d17239",
	CompressedKey:      "0350df5415eda6c7ae0d4729174697550df4b042052364be169388341aa8d5de5e",
	DepositScript:      "0014725fd177a3e9d92fbf03694f3070bbc6cedf5d4a",
	Outpoint:           "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa00000000",
	UtxoValue:          100150,
	RequestedFee:       150,
	OutputValue:        100000,
	RedeemerScript:     "0014a0aedee089b0cfa34e1e29c2dd2e618b19e8b953",
	UnsignedRaw:        "0100000001aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa00000000000000000001a086010000000000160014a0aedee089b0cfa34e1e29c2dd2e618b19e8b95300000000",
	Digest:             "f298c4e7fe823096a950a62c2a346761431583dd31dcdf086ca3f67ba148a584",
	SignatureR:         "39f20e0ee922d7957e9591663214f549316049a881af88b964f492474190e2af",
	SignatureS:         "6feb65dcc35de4cb04a397b6e72046e6406005c487607427a280b76de8002df6",
	RecoveryID:         0,
	SignatureHighS:     "90149a233ca21b34fb5c684918dfb9187a4ed72227e82c141d51a71ee836134b",
	RecoveryIDHighS:    1,
	SignatureDER:       "3044022039f20e0ee922d7957e9591663214f549316049a881af88b964f492474190e2af02206feb65dcc35de4cb04a397b6e72046e6406005c487607427a280b76de8002df6",
	SignedRaw:          "01000000000101aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa00000000000000000001a086010000000000160014a0aedee089b0cfa34e1e29c2dd2e618b19e8b95302473044022039f20e0ee922d7957e9591663214f549316049a881af88b964f492474190e2af02206feb65dcc35de4cb04a397b6e72046e6406005c487607427a280b76de8002df601210350df5415eda6c7ae0d4729174697550df4b042052364be169388341aa8d5de5e00000000",
	TransactionID:      "c6b7eeb44c48043be7ca6315c2d744523f119b7c5e25d42d660f750e5c1bbe1f",
	OtherKeyX:          "53fd1af2ef9cd4fe2b96ed6bd67a97d8830984bd0769be74209387bf7c9cf5d2",
	OtherKeyY:          "3b8ea407d13ae3f858bed1c0282eb7eb728d1f066e49e481f051154149d365fd",
	DepositAddress:     "0x770a9E2F2Aa1eC2d3Ca916Fc3e6A55058A898632",
	KeepAddress:        "0x8B3BccB3A3994681A1C1584DE4b4E8b23ed1Ed6d",
	RequesterAddress:   "0x3F1e3aD0d7a3A2F7Cd1bEd3E8C6b6E2fA4F5A1b2",
	RedemptionBlockNum: 100,
}
