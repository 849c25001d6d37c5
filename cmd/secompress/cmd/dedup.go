package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cryguy/secompress/dedup"
	"github.com/cryguy/secompress/e2e"
	"github.com/cryguy/secompress/partition/fspart"
	"github.com/cryguy/secompress/principal"
)

var dedupConfig struct {
	Root string
}

var dedupCmd = &cobra.Command{
	Use:     "dedup",
	Short:   "Deduplicate files under a directory, comparing only within each principal's bucket",
	Example: "secompress dedup --root ./files",
	RunE: func(cmd *cobra.Command, args []string) error {
		access := func(du fspart.DataUnit) principal.Principal {
			prefix, _, _ := strings.Cut(du.Name, "_")
			return principal.New(principal.Attr{Name: "name", Value: prefix})
		}

		kept, err := e2e.DedupFilesByBucket(dedupConfig.Root, access, principal.DefaultPartitionPolicy, dedup.ChecksumComparisonFunction(nil))
		if err != nil {
			return err
		}
		for _, path := range kept {
			fmt.Fprintln(os.Stdout, path)
		}
		return nil
	},
}

func init() {
	dedupCmd.Flags().StringVar(&dedupConfig.Root, "root", "", "Directory to deduplicate")
	dedupCmd.MarkFlagRequired("root")
	rootCmd.AddCommand(dedupCmd)
}
