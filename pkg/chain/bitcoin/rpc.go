package bitcoin

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/rpcclient"
	"github.com/btcsuite/btcd/wire"
)

// RPCConfig contains connection details of a bitcoind JSON-RPC endpoint.
type RPCConfig struct {
	Host       string
	User       string
	Password   string
	DisableTLS bool
}

type rpcConnection struct {
	client *rpcclient.Client
}

// ConnectRPC creates a bitcoind JSON-RPC client working in HTTP POST mode.
// The client is shut down when the context is done.
func ConnectRPC(ctx context.Context, config *RPCConfig) (Handle, error) {
	client, err := rpcclient.New(
		&rpcclient.ConnConfig{
			Host:         config.Host,
			User:         config.User,
			Pass:         config.Password,
			HTTPPostMode: true,
			DisableTLS:   config.DisableTLS,
		},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to create bitcoind client for [%s]: [%v]",
			config.Host,
			err,
		)
	}

	go func() {
		<-ctx.Done()
		client.Shutdown()
	}()

	return &rpcConnection{client: client}, nil
}

func (rc *rpcConnection) Broadcast(
	ctx context.Context,
	transaction string,
) (string, error) {
	transactionBytes, err := hex.DecodeString(transaction)
	if err != nil {
		return "", fmt.Errorf("failed to decode transaction: [%v]", err)
	}

	msgTx := wire.NewMsgTx(wire.TxVersion)
	if err := msgTx.Deserialize(bytes.NewReader(transactionBytes)); err != nil {
		return "", fmt.Errorf("failed to deserialize transaction: [%v]", err)
	}

	future := rc.client.SendRawTransactionAsync(msgTx, false)

	type result struct {
		transactionID string
		err           error
	}

	resultChan := make(chan result, 1)
	go func() {
		hash, err := future.Receive()
		if err != nil {
			resultChan <- result{err: err}
			return
		}
		resultChan <- result{transactionID: hash.String()}
	}()

	select {
	case r := <-resultChan:
		if r.err != nil {
			return "", fmt.Errorf("bitcoind rejected transaction: [%v]", r.err)
		}
		return r.transactionID, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
