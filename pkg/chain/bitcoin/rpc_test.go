package bitcoin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const (
	testRPCTransaction   = "01000000000101aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa00000000000000000001a086010000000000160014a0aedee089b0cfa34e1e29c2dd2e618b19e8b95302473044022039f20e0ee922d7957e9591663214f549316049a881af88b964f492474190e2af02206feb65dcc35de4cb04a397b6e72046e6406005c487607427a280b76de8002df601210350df5415eda6c7ae0d4729174697550df4b042052364be169388341aa8d5de5e00000000"
	testRPCTransactionID = "c6b7eeb44c48043be7ca6315c2d744523f119b7c5e25d42d660f750e5c1bbe1f"
)

func TestRPCBroadcast_InvalidTransaction(t *testing.T) {
	var tests = map[string]struct {
		transaction   string
		expectedError string
	}{
		"not hex": {
			transaction:   "zz",
			expectedError: "failed to decode transaction",
		},
		"truncated transaction": {
			transaction:   "0100",
			expectedError: "failed to deserialize transaction",
		},
	}

	for testName, test := range tests {
		t.Run(testName, func(t *testing.T) {
			connection := &rpcConnection{}

			_, err := connection.Broadcast(context.Background(), test.transaction)
			if err == nil || !strings.HasPrefix(err.Error(), test.expectedError) {
				t.Errorf(
					"unexpected error\nexpected: %v\nactual:   %v",
					test.expectedError,
					err,
				)
			}
		})
	}
}

func TestRPCBroadcast(t *testing.T) {
	var tests = map[string]struct {
		sendResult    interface{}
		sendError     *rpcError
		expectedID    string
		expectedError string
	}{
		"accepted": {
			sendResult: testRPCTransactionID,
			expectedID: testRPCTransactionID,
		},
		"rejected": {
			sendError: &rpcError{
				Code:    -26,
				Message: "bad-txns-inputs-missingorspent",
			},
			expectedError: "bitcoind rejected transaction",
		},
	}

	for testName, test := range tests {
		t.Run(testName, func(t *testing.T) {
			sentParamsChan := make(chan []interface{}, 1)

			server := httptest.NewServer(http.HandlerFunc(
				func(writer http.ResponseWriter, request *http.Request) {
					var rpcRequest struct {
						Method string          `json:"method"`
						Params []interface{}   `json:"params"`
						ID     json.RawMessage `json:"id"`
					}
					if err := json.NewDecoder(request.Body).Decode(&rpcRequest); err != nil {
						t.Errorf("could not decode request: [%v]", err)
						return
					}

					response := map[string]interface{}{
						"id":     rpcRequest.ID,
						"result": map[string]interface{}{},
						"error":  nil,
					}
					if rpcRequest.Method == "sendrawtransaction" {
						select {
						case sentParamsChan <- rpcRequest.Params:
						default:
						}
						response["result"] = test.sendResult
						if test.sendError != nil {
							response["error"] = test.sendError
						}
					}

					if err := json.NewEncoder(writer).Encode(response); err != nil {
						t.Errorf("could not encode response: [%v]", err)
					}
				},
			))
			defer server.Close()

			ctx, cancelCtx := context.WithCancel(context.Background())
			defer cancelCtx()

			connection, err := ConnectRPC(ctx, &RPCConfig{
				Host:       strings.TrimPrefix(server.URL, "http://"),
				User:       "bitcoin",
				Password:   "password",
				DisableTLS: true,
			})
			if err != nil {
				t.Fatal(err)
			}

			transactionID, err := connection.Broadcast(ctx, testRPCTransaction)
			if test.expectedError != "" {
				if err == nil || !strings.HasPrefix(err.Error(), test.expectedError) {
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

			if transactionID != test.expectedID {
				t.Errorf(
					"unexpected transaction id\nexpected: %v\nactual:   %v",
					test.expectedID,
					transactionID,
				)
			}

			sentParams := <-sentParamsChan
			if len(sentParams) == 0 || sentParams[0] != testRPCTransaction {
				t.Errorf(
					"unexpected sendrawtransaction params\nexpected: %v\nactual:   %v",
					testRPCTransaction,
					sentParams,
				)
			}
		})
	}
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func TestConnectElectrum_Unreachable(t *testing.T) {
	listener := httptest.NewServer(http.NotFoundHandler())
	address := strings.TrimPrefix(listener.URL, "http://")
	listener.Close()

	host, port, _ := strings.Cut(address, ":")

	_, err := ConnectElectrum(
		context.Background(),
		&ElectrumConfig{ServerHost: host, ServerPort: port},
	)

	expectedError := "connecting to electrum server [" + address + "] failed"
	if err == nil || !strings.HasPrefix(err.Error(), expectedError) {
		t.Errorf(
			"unexpected error\nexpected: %v\nactual:   %v",
			expectedError,
			err,
		)
	}
}
