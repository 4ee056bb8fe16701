package cmd

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/urfave/cli"

	"github.com/keep-network/tbtc-redemption/config"
	"github.com/keep-network/tbtc-redemption/pkg/btc"
	"github.com/keep-network/tbtc-redemption/pkg/chain/bitcoin"
)

// PublishCommand contains the definition of the publish command-line subcommand.
var PublishCommand cli.Command

const publishDescription = `The publish command connects to the configured
bitcoin backend and sends a signed raw transaction to the network. It is meant
for manual rebroadcast of a redemption transaction.`

func init() {
	PublishCommand = cli.Command{
		Name:        "publish",
		Usage:       "Publish a transaction",
		Description: publishDescription,
		ArgsUsage:   "[hex-raw-transaction]",
		Action:      Publish,
	}
}

// Publish connects to the bitcoin backend and broadcasts a raw transaction
// provided as a CLI argument.
func Publish(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected a single hex encoded transaction argument")
	}

	rawTransaction, err := hex.DecodeString(c.Args().First())
	if err != nil {
		return fmt.Errorf("invalid transaction hex: [%v]", err)
	}

	configFile, err := config.ReadConfig(c.GlobalString("config"))
	if err != nil {
		return err
	}

	ctx := context.Background()

	handle, err := bitcoin.Connect(ctx, &configFile.Bitcoin)
	if err != nil {
		return err
	}

	result, err := btc.Publish(ctx, handle, rawTransaction)
	if err != nil {
		return fmt.Errorf("publish failed [%v]", err)
	}

	fmt.Printf("Published transaction ID: %v\n", result)

	return nil
}
