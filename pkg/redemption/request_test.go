package redemption

import (
	"bytes"
	"errors"
	"math/big"
	"testing"
)

func TestNewRequest(t *testing.T) {
	event := redemptionEvent(t)
	event.BlockNumber = 12

	request, err := NewRequest(event, DefaultMinOutputValue)
	if err != nil {
		t.Fatal(err)
	}

	if request.OutputValue() != fixture.OutputValue {
		t.Errorf(
			"unexpected output value\nexpected: %v\nactual:   %v",
			fixture.OutputValue,
			request.OutputValue(),
		)
	}

	expectedScript := fromHex(t, fixture.RedeemerScript)
	if !bytes.Equal(expectedScript, request.RedeemerOutputScript) {
		t.Errorf(
			"unexpected redeemer output script\nexpected: %x\nactual:   %x",
			expectedScript,
			request.RedeemerOutputScript,
		)
	}

	if !bytes.Equal(fromHex(t, fixture.Outpoint), request.Outpoint[:]) {
		t.Errorf(
			"unexpected outpoint\nexpected: %v\nactual:   %x",
			fixture.Outpoint,
			request.Outpoint[:],
		)
	}

	if request.BlockNumber != 12 {
		t.Errorf(
			"unexpected block number\nexpected: %v\nactual:   %v",
			12,
			request.BlockNumber,
		)
	}

	expectedID := "0x770a9e2f2aa1ec2d3ca916fc3e6a55058a898632-" + fixture.Digest
	id := requestID(request.DepositAddress, request.Digest)
	if id != expectedID {
		t.Errorf(
			"unexpected id\nexpected: %v\nactual:   %v",
			expectedID,
			id,
		)
	}
}

func TestNewRequest_Invalid(t *testing.T) {
	var tests = map[string]struct {
		modifyEvent    func(t *testing.T) *big.Int
		minOutputValue uint64
	}{
		"negative utxo value": {
			modifyEvent:    func(t *testing.T) *big.Int { return big.NewInt(-1) },
			minOutputValue: 1,
		},
		"utxo value over 64 bits": {
			modifyEvent: func(t *testing.T) *big.Int {
				return new(big.Int).Lsh(big.NewInt(1), 64)
			},
			minOutputValue: 1,
		},
		"output value below the minimum": {
			modifyEvent: func(t *testing.T) *big.Int {
				return new(big.Int).SetUint64(fixture.RequestedFee + 999)
			},
			minOutputValue: 1000,
		},
	}

	for testName, test := range tests {
		t.Run(testName, func(t *testing.T) {
			event := redemptionEvent(t)
			event.UtxoValue = test.modifyEvent(t)

			_, err := NewRequest(event, test.minOutputValue)
			if !errors.Is(err, ErrEncoding) {
				t.Errorf(
					"unexpected error\nexpected: %v\nactual:   %v",
					ErrEncoding,
					err,
				)
			}
		})
	}
}

func TestNewRequest_MinimumOutputValueAccepted(t *testing.T) {
	event := redemptionEvent(t)
	event.UtxoValue = new(big.Int).SetUint64(fixture.RequestedFee + 1000)

	request, err := NewRequest(event, 1000)
	if err != nil {
		t.Fatal(err)
	}

	if request.OutputValue() != 1000 {
		t.Errorf(
			"unexpected output value\nexpected: %v\nactual:   %v",
			1000,
			request.OutputValue(),
		)
	}
}
