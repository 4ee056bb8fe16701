package bitcoin

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	goElectrum "github.com/keep-network/go-electrum/electrum"
)

const electrumPingInterval = 60 * time.Second

// ElectrumConfig contains connection details of an Electrum server. The
// server is expected to be connected to the configured bitcoin network.
type ElectrumConfig struct {
	ServerHost string
	ServerPort string

	// InsecureSkipVerify disables verification of the server certificate.
	// Many testnet servers use self-signed certificates.
	InsecureSkipVerify bool
}

type electrumConnection struct {
	server *goElectrum.Server
}

// ConnectElectrum establishes an SSL connection to the Electrum server and
// keeps it alive until the context is done.
func ConnectElectrum(ctx context.Context, config *ElectrumConfig) (Handle, error) {
	serverAddress := net.JoinHostPort(config.ServerHost, config.ServerPort)

	tlsConfig := &tls.Config{InsecureSkipVerify: config.InsecureSkipVerify}

	server := goElectrum.NewServer()

	if err := server.ConnectSSL(serverAddress, tlsConfig); err != nil {
		return nil, fmt.Errorf(
			"connecting to electrum server [%s] failed: [%v]",
			serverAddress,
			err,
		)
	}

	serverVersion, protocolVersion, err := server.ServerVersion()
	if err != nil {
		return nil, fmt.Errorf("cannot get electrum server version: [%v]", err)
	}
	logger.Infof(
		"connected to electrum server [%s], version [%s], protocol [%s]",
		serverAddress,
		serverVersion,
		protocolVersion,
	)

	go func() {
		ticker := time.NewTicker(electrumPingInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := server.Ping(); err != nil {
					logger.Warningf("electrum server ping failed: [%v]", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return &electrumConnection{server: server}, nil
}

func (ec *electrumConnection) Broadcast(
	ctx context.Context,
	transaction string,
) (string, error) {
	type result struct {
		transactionID string
		err           error
	}

	resultChan := make(chan result, 1)
	go func() {
		transactionID, err := ec.server.BroadcastTransaction(transaction)
		resultChan <- result{transactionID, err}
	}()

	select {
	case r := <-resultChan:
		if r.err != nil {
			return "", fmt.Errorf(
				"electrum server rejected transaction: [%v]",
				r.err,
			)
		}
		return r.transactionID, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
