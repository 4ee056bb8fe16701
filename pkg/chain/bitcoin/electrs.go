package bitcoin

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type httpClient interface {
	Do(request *http.Request) (*http.Response, error)
}

// electrsConnection exposes a native API for interacting with an electrs HTTP
// API.
type electrsConnection struct {
	apiURL string
	client httpClient
}

// NewElectrsConnection is a constructor for a handle broadcasting through
// electrs.
func NewElectrsConnection(apiURL string) Handle {
	return &electrsConnection{
		apiURL: strings.TrimSuffix(apiURL, "/"),
		client: http.DefaultClient,
	}
}

// Broadcast posts the transaction to the `/tx` endpoint of electrs. On success
// electrs responds with the transaction id.
func (e *electrsConnection) Broadcast(
	ctx context.Context,
	transaction string,
) (string, error) {
	if e.apiURL == "" {
		return "", fmt.Errorf("attempted to call Broadcast with no apiURL")
	}

	request, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		fmt.Sprintf("%s/tx", e.apiURL),
		strings.NewReader(transaction),
	)
	if err != nil {
		return "", fmt.Errorf("failed to build broadcast request: [%v]", err)
	}
	request.Header.Set("Content-Type", "text/plain")

	response, err := e.client.Do(request)
	if err != nil {
		return "", fmt.Errorf("failed to broadcast transaction: [%v]", err)
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		if response.StatusCode == http.StatusOK {
			// The transaction was accepted, only the id is lost.
			logger.Errorf(
				"failed to read the electrs response body: [%v]",
				err,
			)
			return "", nil
		}
		return "", fmt.Errorf(
			"failed to broadcast transaction - status: [%s]; "+
				"raw transaction: [%s]",
			response.Status,
			transaction,
		)
	}

	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf(
			"failed to broadcast transaction - status: [%s], payload: [%s]; "+
				"raw transaction: [%s]",
			response.Status,
			string(payload),
			transaction,
		)
	}

	transactionID := strings.TrimSpace(string(payload))

	logger.Infof("broadcast bitcoin transaction [%s] through electrs", transactionID)

	return transactionID, nil
}
