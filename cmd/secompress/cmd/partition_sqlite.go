package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cryguy/secompress/e2e"
	"github.com/cryguy/secompress/partition/sqlitepart"
	"github.com/cryguy/secompress/principal"
)

var partitionSQLiteConfig struct {
	DB     string
	Out    string
	Column int
}

var partitionSQLiteCmd = &cobra.Command{
	Use:     "partition-sqlite",
	Short:   "Compress a SQLite database, isolating each row's principal column in its own stream",
	Example: "secompress partition-sqlite --db chat.sqlite --out chat.msc --column 1",
	RunE: func(cmd *cobra.Command, args []string) error {
		access := func(du sqlitepart.DataUnit) principal.Principal {
			if du.Table == "sqlite_schema" {
				return principal.Null()
			}
			if partitionSQLiteConfig.Column < 0 || partitionSQLiteConfig.Column >= len(du.Row) {
				return principal.Null()
			}
			v := du.Row[partitionSQLiteConfig.Column]
			if v == nil {
				return principal.Null()
			}
			return principal.New(principal.Attr{Name: "column", Value: fmt.Sprintf("%v", v)})
		}

		blob, err := e2e.CompressSQLite(partitionSQLiteConfig.DB, access, principal.DefaultPartitionPolicy)
		if err != nil {
			return err
		}
		return os.WriteFile(partitionSQLiteConfig.Out, blob, 0o644)
	},
}

func init() {
	partitionSQLiteCmd.Flags().StringVar(&partitionSQLiteConfig.DB, "db", "", "SQLite database file")
	partitionSQLiteCmd.Flags().StringVar(&partitionSQLiteConfig.Out, "out", "", "Output blob path")
	partitionSQLiteCmd.Flags().IntVar(&partitionSQLiteConfig.Column, "column", 0, "Zero-based row column index to classify on")
	partitionSQLiteCmd.MarkFlagRequired("db")
	partitionSQLiteCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(partitionSQLiteCmd)
}
