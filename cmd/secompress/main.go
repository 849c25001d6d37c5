// Command secompress is the evaluation-harness-equivalent CLI front end
// for the partitioned compression library: it exercises the codec and
// partitioners from the command line, outside the core package surface.
package main

import (
	"os"

	"github.com/cryguy/secompress/cmd/secompress/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
