package bitcoin

import (
	"context"
	"fmt"

	"github.com/blockcypher/gobcy"
)

// BlockCypherConfig contains configuration for the
// [Block Cypher API](https://www.blockcypher.com/dev/bitcoin/).
type BlockCypherConfig struct {
	// Token is Block Cypher's user token required for access to POST calls
	// on the API.
	Token string
	Coin  string // Options: "btc", "bcy"
	Chain string // Options: "main", "test3", "test"
}

type blockCypherConnection struct {
	api gobcy.API
}

// NewBlockCypherConnection initializes a handle pushing transactions to Block
// Cypher.
func NewBlockCypherConnection(config *BlockCypherConfig) Handle {
	return &blockCypherConnection{
		api: gobcy.API{
			Token: config.Token,
			Coin:  config.Coin,
			Chain: config.Chain,
		},
	}
}

func (bc *blockCypherConnection) Broadcast(
	ctx context.Context,
	transaction string,
) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	pushed, err := bc.api.PushTX(transaction)
	if err != nil {
		return "", fmt.Errorf("block cypher rejected transaction: [%v]", err)
	}

	return pushed.Trans.Hash, nil
}
