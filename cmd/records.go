package cmd

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/urfave/cli"

	"github.com/keep-network/tbtc-redemption/config"
	"github.com/keep-network/tbtc-redemption/pkg/redemption"
)

// RecordsCommand contains the definition of the records command-line
// subcommand.
var RecordsCommand cli.Command

const recordsDescription = `Prints the audit log of redemption workflows kept
in the configured data directory. Abandoned workflows carry the reason of the
abandonment for manual follow-up.`

func init() {
	RecordsCommand = cli.Command{
		Name:        "records",
		Usage:       "Prints the audit log of redemptions",
		Description: recordsDescription,
		Action:      Records,
	}
}

// Records prints all records of the audit log.
func Records(c *cli.Context) error {
	config, err := config.ReadConfig(c.GlobalString("config"))
	if err != nil {
		return fmt.Errorf("error reading config file: [%v]", err)
	}

	storage, err := redemption.NewBoltStorage(config.Storage.RecordsPath())
	if err != nil {
		return err
	}
	defer storage.Close()

	records, err := storage.Records()
	if err != nil {
		return err
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].BlockNumber < records[j].BlockNumber
	})

	writer := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(writer, "BLOCK\tDEPOSIT\tDIGEST\tSTATE\tTRANSACTION\tREASON")
	for _, record := range records {
		fmt.Fprintf(
			writer,
			"%d\t%s\t%s\t%v\t%s\t%s\n",
			record.BlockNumber,
			record.DepositAddress,
			record.Digest,
			record.State,
			record.TransactionID,
			record.Reason,
		)
	}

	return writer.Flush()
}
