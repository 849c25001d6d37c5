package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "secompress",
	Short: "Partitioned compression and deduplication for multi-principal archives",
}

// Execute runs the CLI, returning a non-nil error if the selected command
// failed. The top-level main package maps that to a process exit code.
func Execute() error {
	log.SetFlags(0)
	log.SetPrefix("secompress: ")
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}
