package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cryguy/secompress/msc"
)

var encodeConfig struct {
	Bucket string
	In     string
	Out    string
	Algo   string
}

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Compress a file into a single-bucket Multi-Stream Codec blob",
	Example: "secompress encode --bucket alice --in alice.txt --out alice.msc",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(encodeConfig.In)
		if err != nil {
			return err
		}

		enc, err := msc.NewEncoder()
		if err != nil {
			return err
		}
		if err := enc.Compress(encodeConfig.Bucket, data); err != nil {
			return err
		}
		blob, err := enc.Finish()
		if err != nil {
			return err
		}

		blob, err = applyArchiveFilter(encodeConfig.Algo, blob, true)
		if err != nil {
			return err
		}
		return os.WriteFile(encodeConfig.Out, blob, 0o644)
	},
}

func init() {
	encodeCmd.Flags().StringVar(&encodeConfig.Bucket, "bucket", "default", "Bucket label for the input file's contents")
	encodeCmd.Flags().StringVar(&encodeConfig.In, "in", "", "Input file path")
	encodeCmd.Flags().StringVar(&encodeConfig.Out, "out", "", "Output blob path")
	encodeCmd.Flags().StringVar(&encodeConfig.Algo, "algo", "none", "Archive post-filter applied to the MSC blob: none|brotli")
	encodeCmd.MarkFlagRequired("in")
	encodeCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(encodeCmd)
}
