package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cryguy/secompress/partition/fspart"
	"github.com/cryguy/secompress/principal"
)

var partitionFSConfig struct {
	Root string
}

var partitionFSCmd = &cobra.Command{
	Use:     "partition-fs",
	Short:   "Classify files under a directory by a filename-prefix principal and print the resulting buckets",
	Example: "secompress partition-fs --root ./files",
	RunE: func(cmd *cobra.Command, args []string) error {
		access := func(du fspart.DataUnit) principal.Principal {
			prefix, _, _ := strings.Cut(du.Name, "_")
			return principal.New(principal.Attr{Name: "name", Value: prefix})
		}

		frags, err := fspart.Partition(partitionFSConfig.Root, access, principal.DefaultPartitionPolicy)
		if err != nil {
			return err
		}
		for _, f := range frags {
			fmt.Fprintf(os.Stdout, "%s\t%s\n", f.Bucket, f.Path)
		}
		return nil
	},
}

func init() {
	partitionFSCmd.Flags().StringVar(&partitionFSConfig.Root, "root", "", "Directory to classify")
	partitionFSCmd.MarkFlagRequired("root")
	rootCmd.AddCommand(partitionFSCmd)
}
