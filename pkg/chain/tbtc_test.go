package chain

import "testing"

func TestDepositStateString(t *testing.T) {
	var tests = map[string]struct {
		state          DepositState
		expectedString string
	}{
		"first state": {
			state:          Start,
			expectedString: "START",
		},
		"awaiting signature": {
			state:          AwaitingWithdrawalSignature,
			expectedString: "AWAITING_WITHDRAWAL_SIGNATURE",
		},
		"last state": {
			state:          Liquidated,
			expectedString: "LIQUIDATED",
		},
		"unknown state": {
			state:          DepositState(12),
			expectedString: "UNKNOWN(12)",
		},
	}

	for testName, test := range tests {
		t.Run(testName, func(t *testing.T) {
			if test.state.String() != test.expectedString {
				t.Errorf(
					"unexpected string\nexpected: %v\nactual:   %v",
					test.expectedString,
					test.state.String(),
				)
			}
		})
	}
}

func TestDepositStateIsRedemptionInProgress(t *testing.T) {
	for state := Start; state <= Liquidated; state++ {
		expected := state == AwaitingWithdrawalSignature ||
			state == AwaitingWithdrawalProof

		if state.IsRedemptionInProgress() != expected {
			t.Errorf(
				"unexpected result for state [%v]\nexpected: %v\nactual:   %v",
				state,
				expected,
				state.IsRedemptionInProgress(),
			)
		}
	}
}
