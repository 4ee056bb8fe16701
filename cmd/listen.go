package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/ipfs/go-log"
	"github.com/urfave/cli"

	"github.com/keep-network/tbtc-redemption/config"
	"github.com/keep-network/tbtc-redemption/pkg/chain/bitcoin"
	"github.com/keep-network/tbtc-redemption/pkg/chain/ethereum"
	"github.com/keep-network/tbtc-redemption/pkg/metrics"
	"github.com/keep-network/tbtc-redemption/pkg/redemption"
)

var logger = log.Logger("keep-cmd")

// ListenCommand contains the definition of the listen command-line
// subcommand.
var ListenCommand cli.Command

const listenDescription = `Listens for redemption requests of the configured
requester on the host chain. For every request it waits for the signature of
the deposit's keep, assembles the redemption transaction and broadcasts it
through the configured bitcoin backend.`

func init() {
	ListenCommand = cli.Command{
		Name:        "listen",
		Usage:       "Listens for redemption requests and broadcasts redemption transactions",
		Description: listenDescription,
		Action:      Listen,
	}
}

// Listen starts the redemption monitor in the foreground.
func Listen(c *cli.Context) error {
	config, err := config.ReadConfig(c.GlobalString("config"))
	if err != nil {
		return fmt.Errorf("error reading config file: [%v]", err)
	}

	ctx := context.Background()

	tbtcChain, err := ethereum.Connect(ctx, &config.Ethereum)
	if err != nil {
		return fmt.Errorf("error connecting to host chain: [%v]", err)
	}

	broadcaster, err := bitcoin.Connect(ctx, &config.Bitcoin)
	if err != nil {
		return fmt.Errorf("error connecting to bitcoin network: [%v]", err)
	}

	if err := os.MkdirAll(config.Storage.GetDataDir(), 0700); err != nil {
		return fmt.Errorf("error creating data directory: [%v]", err)
	}

	storage, err := redemption.NewBoltStorage(config.Storage.RecordsPath())
	if err != nil {
		return err
	}
	defer storage.Close()

	monitorConfig := config.Redemption.MonitorConfig()

	monitor, err := redemption.Initialize(
		ctx,
		tbtcChain,
		broadcaster,
		storage,
		monitorConfig,
	)
	if err != nil {
		return err
	}

	initializeMetrics(ctx, config, monitor)

	listenerHeader(
		monitorConfig.RequesterAddress,
		config.Bitcoin.Network,
		config.Bitcoin.BroadcastBackend,
	)

	logger.Info("redemption listener started")

	<-ctx.Done()
	return fmt.Errorf("unexpected context cancellation")
}

func initializeMetrics(
	ctx context.Context,
	config *config.Config,
	monitor *redemption.Monitor,
) {
	registry, isConfigured := metrics.Initialize(config.Metrics.Port)
	if !isConfigured {
		logger.Infof("metrics are not configured")
		return
	}

	logger.Infof(
		"enabled metrics on port [%v]",
		config.Metrics.Port,
	)

	metrics.ObserveRedemptionsInProgress(
		ctx,
		registry,
		monitor,
		config.Metrics.GetTick(),
	)

	for _, state := range []redemption.State{
		redemption.Done,
		redemption.Abandoned,
	} {
		metrics.ObserveRedemptionRecords(
			ctx,
			registry,
			monitor,
			state,
			config.Metrics.GetTick(),
		)
	}
}
