package redemption

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/keep-network/tbtc-redemption/pkg/btc"
	"github.com/keep-network/tbtc-redemption/pkg/chain"
)

// Request is a redemption request of a single deposit. It is immutable once
// created and identified by the deposit address and the signature digest.
type Request struct {
	DepositAddress   string
	RequesterAddress string
	Digest           [32]byte
	UtxoValue        uint64
	// RedeemerOutputScript is the raw output script the redeemer is paid
	// to, with the length prefix of the event stripped.
	RedeemerOutputScript []byte
	RequestedFee         uint64
	Outpoint             btc.Outpoint
	BlockNumber          uint64
}

// NewRequest validates the redemption requested event and converts it into
// a Request. The output value of the redemption transaction must be at least
// minOutputValue. All failures wrap ErrEncoding.
func NewRequest(
	event *chain.DepositRedemptionRequestedEvent,
	minOutputValue uint64,
) (*Request, error) {
	utxoValue, err := toUint64("utxo value", event.UtxoValue)
	if err != nil {
		return nil, err
	}

	requestedFee, err := toUint64("requested fee", event.RequestedFee)
	if err != nil {
		return nil, err
	}

	if requestedFee >= utxoValue {
		return nil, fmt.Errorf(
			"requested fee [%d] is not lower than utxo value [%d]: [%w]",
			requestedFee,
			utxoValue,
			ErrEncoding,
		)
	}

	if outputValue := utxoValue - requestedFee; outputValue < minOutputValue {
		return nil, fmt.Errorf(
			"output value [%d] is below the minimum [%d]: [%w]",
			outputValue,
			minOutputValue,
			ErrEncoding,
		)
	}

	outputScript, err := btc.DecodeOutputScript(event.RedeemerOutputScript)
	if err != nil {
		return nil, fmt.Errorf(
			"invalid redeemer output script: [%v]: [%w]",
			err,
			ErrEncoding,
		)
	}

	outpoint, err := btc.NewOutpoint(event.Outpoint)
	if err != nil {
		return nil, fmt.Errorf(
			"invalid outpoint: [%v]: [%w]",
			err,
			ErrEncoding,
		)
	}

	return &Request{
		DepositAddress:       event.DepositAddress,
		RequesterAddress:     event.RequesterAddress,
		Digest:               event.Digest,
		UtxoValue:            utxoValue,
		RedeemerOutputScript: outputScript,
		RequestedFee:         requestedFee,
		Outpoint:             outpoint,
		BlockNumber:          event.BlockNumber,
	}, nil
}

// OutputValue returns the value paid to the redeemer.
func (r *Request) OutputValue() uint64 {
	return r.UtxoValue - r.RequestedFee
}

// requestID identifies a request by its deposit and digest. It keys both the
// monitoring lock and the stored records.
func requestID(depositAddress string, digest [32]byte) string {
	return fmt.Sprintf("%s-%x", strings.ToLower(depositAddress), digest)
}

func toUint64(name string, value *big.Int) (uint64, error) {
	if value == nil || value.Sign() < 0 || !value.IsUint64() {
		return 0, fmt.Errorf(
			"%s [%v] is not a valid satoshi amount: [%w]",
			name,
			value,
			ErrEncoding,
		)
	}
	return value.Uint64(), nil
}
