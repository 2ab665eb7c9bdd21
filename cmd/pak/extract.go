package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meigma/pak"
)

var extractCmd = &cobra.Command{
	Use:   "extract <container>",
	Short: "Extract a container's tree to a directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

func init() {
	extractCmd.Flags().StringP("out", "o", "extracted", "output directory")
	extractCmd.Flags().Bool("best-effort", false, "keep extracting past per-file errors")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	opts, err := codecOptions()
	if err != nil {
		return err
	}

	a, err := pak.DecodeFile(args[0], opts...)
	if err != nil {
		return err
	}

	outDir, _ := cmd.Flags().GetString("out")
	bestEffort, _ := cmd.Flags().GetBool("best-effort")

	if err := a.ExtractDir(outDir, pak.ExtractWithBestEffort(bestEffort)); err != nil {
		if !bestEffort {
			return err
		}
		// Best-effort reports what it skipped but still succeeds overall.
		fmt.Fprintf(cmd.ErrOrStderr(), "extracted with errors:\n%v\n", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "extracted %d entries to %s\n", a.Len(), outDir)
	return nil
}
