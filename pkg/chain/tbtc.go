package chain

import "fmt"

// DepositState represents the deposit state.
type DepositState int

const (
	Start DepositState = iota
	AwaitingSignerSetup
	AwaitingBtcFundingProof
	FailedSetup
	Active
	AwaitingWithdrawalSignature
	AwaitingWithdrawalProof
	Redeemed
	CourtesyCall
	FraudLiquidationInProgress
	LiquidationInProgress
	Liquidated
)

var depositStateNames = []string{
	"START",
	"AWAITING_SIGNER_SETUP",
	"AWAITING_BTC_FUNDING_PROOF",
	"FAILED_SETUP",
	"ACTIVE",
	"AWAITING_WITHDRAWAL_SIGNATURE",
	"AWAITING_WITHDRAWAL_PROOF",
	"REDEEMED",
	"COURTESY_CALL",
	"FRAUD_LIQUIDATION_IN_PROGRESS",
	"LIQUIDATION_IN_PROGRESS",
	"LIQUIDATED",
}

func (ds DepositState) String() string {
	if ds < 0 || int(ds) >= len(depositStateNames) {
		return fmt.Sprintf("UNKNOWN(%d)", int(ds))
	}
	return depositStateNames[ds]
}

// IsRedemptionInProgress checks whether the deposit awaits the redemption
// signature or the proof of the redemption transaction.
func (ds DepositState) IsRedemptionInProgress() bool {
	return ds == AwaitingWithdrawalSignature || ds == AwaitingWithdrawalProof
}
