package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/meigma/pak"
)

var packCmd = &cobra.Command{
	Use:   "pack <dir>",
	Short: "Pack a directory tree into a container",
	Args:  cobra.ExactArgs(1),
	RunE:  runPack,
}

func init() {
	packCmd.Flags().StringP("out", "o", "out.pak", "output container path")
	packCmd.Flags().StringP("manifest", "m", "", "build from a manifest instead of walking the tree")
	packCmd.Flags().IntP("workers", "j", 0, "parallel compression workers (0 = GOMAXPROCS)")
	rootCmd.AddCommand(packCmd)
}

func runPack(cmd *cobra.Command, args []string) error {
	opts, err := codecOptions()
	if err != nil {
		return err
	}
	if workers, _ := cmd.Flags().GetInt("workers"); workers > 0 {
		opts = append(opts, pak.WithWorkers(workers))
	}

	src := os.DirFS(args[0])

	var data []byte
	if manifestPath, _ := cmd.Flags().GetString("manifest"); manifestPath != "" {
		raw, err := os.ReadFile(manifestPath)
		if err != nil {
			return fmt.Errorf("read manifest: %w", err)
		}
		m, err := pak.ParseManifest(raw)
		if err != nil {
			return err
		}
		data, err = pak.BuildManifest(cmd.Context(), m, src, opts...)
		if err != nil {
			return err
		}
	} else {
		data, err = pak.BuildFS(cmd.Context(), src, opts...)
		if err != nil {
			return err
		}
	}

	outPath, _ := cmd.Flags().GetString("out")
	if err := pak.WriteContainer(outPath, data); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s)\n", outPath, humanize.Bytes(uint64(len(data))))
	return nil
}
