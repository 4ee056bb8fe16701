package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli"

	"github.com/keep-network/tbtc-redemption/config"
	"github.com/keep-network/tbtc-redemption/pkg/chain"
	"github.com/keep-network/tbtc-redemption/pkg/chain/ethereum"
)

// FindSignaturesCommand contains the definition of the find-signatures
// command-line subcommand.
var FindSignaturesCommand cli.Command

const findSignaturesDescription = `Lists past redemption requests of the
requester. For every request it reports the current state of the deposit and
the number of signatures of the request digest submitted by the deposit's
keep.`

func init() {
	FindSignaturesCommand = cli.Command{
		Name:        "find-signatures",
		Usage:       "Reports signatures submitted for past redemption requests",
		Description: findSignaturesDescription,
		Action:      FindSignatures,
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "requester,r",
				Usage: "requester address; defaults to the configured one",
			},
			cli.Uint64Flag{
				Name:  "start-block,s",
				Usage: "block to start the lookup from",
			},
		},
	}
}

type signatureReport struct {
	depositAddress string
	digest         [32]byte
	blockNumber    uint64
	state          chain.DepositState
	signatures     int
}

func (sr *signatureReport) String() string {
	return fmt.Sprintf(
		"deposit [%s] digest [%x] requested in block [%d]: "+
			"state [%v], signatures [%d]",
		sr.depositAddress,
		sr.digest,
		sr.blockNumber,
		sr.state,
		sr.signatures,
	)
}

// FindSignatures prints a report of past redemption requests.
func FindSignatures(c *cli.Context) error {
	config, err := config.ReadConfig(c.GlobalString("config"))
	if err != nil {
		return fmt.Errorf("error reading config file: [%v]", err)
	}

	requesterAddress := c.String("requester")
	if requesterAddress == "" {
		requesterAddress = config.Redemption.RequesterAddress
	}

	tbtcChain, err := ethereum.Connect(context.Background(), &config.Ethereum)
	if err != nil {
		return fmt.Errorf("error connecting to host chain: [%v]", err)
	}

	reports, err := findSignatures(
		tbtcChain,
		requesterAddress,
		c.Uint64("start-block"),
	)
	if err != nil {
		return err
	}

	for _, report := range reports {
		fmt.Println(report)
	}

	fmt.Printf("Found [%d] redemption requests\n", len(reports))

	return nil
}

func findSignatures(
	handle chain.TBTCHandle,
	requesterAddress string,
	startBlock uint64,
) ([]*signatureReport, error) {
	requests, err := handle.PastDepositRedemptionRequestedEvents(
		requesterAddress,
		startBlock,
	)
	if err != nil {
		return nil, fmt.Errorf(
			"could not get past redemption requests: [%v]",
			err,
		)
	}

	reports := make([]*signatureReport, 0, len(requests))

	for _, request := range requests {
		report := &signatureReport{
			depositAddress: request.DepositAddress,
			digest:         request.Digest,
			blockNumber:    request.BlockNumber,
		}

		report.state, err = handle.CurrentState(request.DepositAddress)
		if err != nil {
			return nil, fmt.Errorf(
				"could not get state of deposit [%s]: [%v]",
				request.DepositAddress,
				err,
			)
		}

		keepAddress, err := handle.KeepAddress(request.DepositAddress)
		if err != nil {
			return nil, fmt.Errorf(
				"could not get keep of deposit [%s]: [%v]",
				request.DepositAddress,
				err,
			)
		}

		signatures, err := handle.PastSignatureSubmittedEvents(
			keepAddress,
			request.Digest,
			request.BlockNumber,
		)
		if err != nil {
			return nil, fmt.Errorf(
				"could not get signatures of keep [%s]: [%v]",
				keepAddress,
				err,
			)
		}

		report.signatures = len(signatures)

		reports = append(reports, report)
	}

	return reports, nil
}
