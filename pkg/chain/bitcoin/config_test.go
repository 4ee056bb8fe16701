package bitcoin

import (
	"context"
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
)

func TestNetParams(t *testing.T) {
	var tests = map[string]struct {
		network        string
		expectedParams *chaincfg.Params
		expectedError  string
	}{
		"default network": {
			network:        "",
			expectedParams: &chaincfg.MainNetParams,
		},
		"testnet": {
			network:        "testnet3",
			expectedParams: &chaincfg.TestNet3Params,
		},
		"regtest": {
			network:        "regtest",
			expectedParams: &chaincfg.RegressionNetParams,
		},
		"unknown network": {
			network:       "dogecoin",
			expectedError: "unsupported bitcoin network [dogecoin]",
		},
	}

	for testName, test := range tests {
		t.Run(testName, func(t *testing.T) {
			config := &Config{Network: test.network}

			params, err := config.NetParams()
			if test.expectedError != "" {
				if err == nil || err.Error() != test.expectedError {
					t.Fatalf(
						"unexpected error\nexpected: %v\nactual:   %v",
						test.expectedError,
						err,
					)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}

			if params != test.expectedParams {
				t.Errorf(
					"unexpected params\nexpected: %v\nactual:   %v",
					test.expectedParams.Name,
					params.Name,
				)
			}
		})
	}
}

func TestConnect(t *testing.T) {
	var tests = map[string]struct {
		config        *Config
		expectedError string
	}{
		"default backend": {
			config: &Config{ElectrsURL: testApiUrl},
		},
		"electrs without url": {
			config:        &Config{BroadcastBackend: ElectrsBackend},
			expectedError: "electrs backend requires ElectrsURL",
		},
		"block cypher": {
			config: &Config{
				BroadcastBackend: BlockCypherBackend,
				BlockCypher:      BlockCypherConfig{Coin: "btc", Chain: "test3"},
			},
		},
		"offline": {
			config: &Config{BroadcastBackend: OfflineBackend},
		},
		"unknown backend": {
			config:        &Config{BroadcastBackend: "pigeon"},
			expectedError: "unsupported broadcast backend [pigeon]",
		},
	}

	for testName, test := range tests {
		t.Run(testName, func(t *testing.T) {
			handle, err := Connect(context.Background(), test.config)
			if test.expectedError != "" {
				if err == nil || err.Error() != test.expectedError {
					t.Fatalf(
						"unexpected error\nexpected: %v\nactual:   %v",
						test.expectedError,
						err,
					)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if handle == nil {
				t.Fatal("expected handle")
			}
		})
	}
}

func TestOfflineHandle_Broadcast(t *testing.T) {
	transactionID, err := OfflineHandle{}.Broadcast(context.Background(), "00")
	if err != nil {
		t.Fatal(err)
	}
	if transactionID != "" {
		t.Errorf("unexpected transaction id [%s]", transactionID)
	}
}
