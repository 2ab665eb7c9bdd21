package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/meigma/pak"
)

var listCmd = &cobra.Command{
	Use:   "list <container>",
	Short: "List a container's entries",
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	opts, err := codecOptions()
	if err != nil {
		return err
	}

	a, err := pak.DecodeFile(args[0], opts...)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tSIZE\tPACKED\tPATH")
	for _, e := range a.Entries() {
		if e.Dir {
			fmt.Fprintf(w, "dir\t-\t-\t%s/\n", e.Path)
			continue
		}
		fmt.Fprintf(w, "file\t%s\t%s\t%s\n",
			humanize.Bytes(e.Size), humanize.Bytes(e.Packed), e.Path)
	}
	return w.Flush()
}
