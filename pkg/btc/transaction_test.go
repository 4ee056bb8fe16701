package btc

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/keep-network/tbtc-redemption/internal/testdata"
)

func TestBuildUnsignedTransaction(t *testing.T) {
	redemption := testdata.ValidRedemption

	unsigned, err := BuildUnsignedTransaction(
		fixtureOutpoint(t),
		RedemptionInputSequence,
		redemption.OutputValue,
		fromHex(t, redemption.RedeemerScript),
	)
	if err != nil {
		t.Fatal(err)
	}

	if hex.EncodeToString(unsigned) != redemption.UnsignedRaw {
		t.Errorf(
			"unexpected transaction\nexpected: %v\nactual:   %x",
			redemption.UnsignedRaw,
			unsigned,
		)
	}
}

func TestBuildUnsignedTransaction_Deterministic(t *testing.T) {
	build := func() []byte {
		unsigned, err := BuildUnsignedTransaction(
			fixtureOutpoint(t),
			7,
			5000,
			fromHex(t, testdata.ValidRedemption.RedeemerScript),
		)
		if err != nil {
			t.Fatal(err)
		}
		return unsigned
	}

	first := build()
	second := build()

	if !bytes.Equal(first, second) {
		t.Errorf(
			"transactions differ\nfirst:  %x\nsecond: %x",
			first,
			second,
		)
	}

	transaction, err := parseUnsignedTransaction(first)
	if err != nil {
		t.Fatal(err)
	}
	if transaction.TxIn[0].Sequence != 7 {
		t.Errorf(
			"unexpected sequence\nexpected: %v\nactual:   %v",
			7,
			transaction.TxIn[0].Sequence,
		)
	}
}

func TestBuildUnsignedTransaction_InvalidParameters(t *testing.T) {
	var tests = map[string]struct {
		outputValue   uint64
		outputScript  []byte
		expectedError error
	}{
		"zero output value": {
			outputValue:   0,
			outputScript:  fromHex(t, testdata.ValidRedemption.RedeemerScript),
			expectedError: ErrInvalidOutputValue,
		},
		"output value above supply": {
			outputValue:   21000000*100000000 + 1,
			outputScript:  fromHex(t, testdata.ValidRedemption.RedeemerScript),
			expectedError: ErrInvalidOutputValue,
		},
		"empty output script": {
			outputValue:   1000,
			outputScript:  []byte{},
			expectedError: ErrMalformedScript,
		},
		"output script too long": {
			outputValue:   1000,
			outputScript:  bytes.Repeat([]byte{0x6a}, 300),
			expectedError: ErrScriptTooLong,
		},
	}

	for testName, test := range tests {
		t.Run(testName, func(t *testing.T) {
			_, err := BuildUnsignedTransaction(
				fixtureOutpoint(t),
				RedemptionInputSequence,
				test.outputValue,
				test.outputScript,
			)
			if !errors.Is(err, test.expectedError) {
				t.Errorf(
					"unexpected error\nexpected: %v\nactual:   %v",
					test.expectedError,
					err,
				)
			}
		})
	}
}

func TestTransactionID(t *testing.T) {
	redemption := testdata.ValidRedemption

	// The witness does not contribute to the identifier.
	for _, rawTransaction := range []string{
		redemption.UnsignedRaw,
		redemption.SignedRaw,
	} {
		transactionID, err := TransactionID(fromHex(t, rawTransaction))
		if err != nil {
			t.Fatal(err)
		}

		if transactionID != redemption.TransactionID {
			t.Errorf(
				"unexpected transaction id\nexpected: %v\nactual:   %v",
				redemption.TransactionID,
				transactionID,
			)
		}
	}
}

func TestTransactionID_TrailingBytes(t *testing.T) {
	rawTransaction := append(
		fromHex(t, testdata.ValidRedemption.UnsignedRaw),
		0x00,
	)

	if _, err := TransactionID(rawTransaction); err == nil {
		t.Errorf("expected error")
	}
}
