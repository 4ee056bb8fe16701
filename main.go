package main

import (
	"fmt"
	"os"
	"path"
	"time"

	"github.com/ipfs/go-log"
	"github.com/urfave/cli"

	"github.com/keep-network/tbtc-redemption/cmd"
)

const defaultConfigPath = "./configs/config.toml"

var (
	version  string
	revision string

	configPath string
	logLevel   string
)

func main() {
	if version == "" {
		version = "unknown"
	}
	if revision == "" {
		revision = "unknown"
	}

	app := cli.NewApp()
	app.Name = path.Base(os.Args[0])
	app.Usage = "CLI for tBTC deposit redemptions"
	app.Compiled = time.Now()
	app.Version = fmt.Sprintf("%s (revision %s)", version, revision)
	app.Authors = []cli.Author{
		{
			Name:  "Keep Network",
			Email: "info@keep.network",
		},
	}
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:        "config,c",
			Value:       defaultConfigPath,
			Destination: &configPath,
			Usage:       "full path to the configuration file",
		},
		cli.StringFlag{
			Name:        "log-level",
			Value:       "info",
			Destination: &logLevel,
			Usage:       "log level of all loggers: debug, info, warn or error",
		},
	}
	app.Before = func(c *cli.Context) error {
		return log.SetLogLevel("*", logLevel)
	}
	app.Commands = []cli.Command{
		cmd.ListenCommand,
		cmd.FindSignaturesCommand,
		cmd.OutputScriptCommand,
		cmd.PublishCommand,
		cmd.RecordsCommand,
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
