package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/urfave/cli"

	"github.com/keep-network/tbtc-redemption/pkg/btc"
	"github.com/keep-network/tbtc-redemption/pkg/chain/bitcoin"
)

// OutputScriptCommand contains the definition of the output-script
// command-line subcommand.
var OutputScriptCommand cli.Command

const outputScriptDescription = `Converts a bitcoin address into the
length-prefixed output script expected as the redeemer output script of
a redemption request.`

func init() {
	OutputScriptCommand = cli.Command{
		Name:        "output-script",
		Usage:       "Encodes a bitcoin address as a redeemer output script",
		Description: outputScriptDescription,
		ArgsUsage:   "[bitcoin-address]",
		Action:      OutputScript,
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "network,n",
				Value: chaincfg.MainNetParams.Name,
				Usage: "bitcoin network of the address",
			},
		},
	}
}

// OutputScript prints the length-prefixed output script of the address.
func OutputScript(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected a single bitcoin address argument")
	}

	script, err := outputScript(c.Args().First(), c.String("network"))
	if err != nil {
		return err
	}

	fmt.Printf("0x%s\n", hex.EncodeToString(script))

	return nil
}

func outputScript(address string, network string) ([]byte, error) {
	params, err := (&bitcoin.Config{Network: network}).NetParams()
	if err != nil {
		return nil, err
	}

	script, err := btc.AddressToOutputScript(address, params)
	if err != nil {
		return nil, fmt.Errorf("invalid address [%s]: [%v]", address, err)
	}

	return btc.EncodeOutputScript(script)
}
