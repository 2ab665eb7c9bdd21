package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meigma/pak"
)

var indexCmd = &cobra.Command{
	Use:   "index <container>",
	Short: "Dump a container's manifest as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().StringP("out", "o", "", "write to a file instead of stdout")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	opts, err := codecOptions()
	if err != nil {
		return err
	}

	a, err := pak.DecodeFile(args[0], opts...)
	if err != nil {
		return err
	}

	out, err := a.Manifest().JSON()
	if err != nil {
		return err
	}

	if outPath, _ := cmd.Flags().GetString("out"); outPath != "" {
		return os.WriteFile(outPath, append(out, '\n'), 0o644)
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
