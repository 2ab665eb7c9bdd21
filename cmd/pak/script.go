package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meigma/pak/transform"
)

var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "Run the configured script toolchain on a single file",
	Long: `script shells out to the external toolchain configured under
script.compile_cmd and script.decompile_cmd. The source file is fed to
the subprocess on stdin and its stdout is written to the output file.`,
}

var scriptCompileCmd = &cobra.Command{
	Use:   "compile <source> <output>",
	Short: "Compile a script source file to bytecode",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScript(cmd, args, transform.Service.Compile)
	},
}

var scriptDecompileCmd = &cobra.Command{
	Use:   "decompile <bytecode> <output>",
	Short: "Decompile script bytecode back to source",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScript(cmd, args, transform.Service.Decompile)
	},
}

func init() {
	scriptCmd.AddCommand(scriptCompileCmd)
	scriptCmd.AddCommand(scriptDecompileCmd)
	rootCmd.AddCommand(scriptCmd)
}

func runScript(cmd *cobra.Command, args []string, fn func(transform.Service, context.Context, []byte) ([]byte, error)) error {
	svc, err := scriptService()
	if err != nil {
		return err
	}

	in, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	out, err := fn(svc, cmd.Context(), in)
	if err != nil {
		return err
	}

	return os.WriteFile(args[1], out, 0o644)
}

func scriptService() (transform.Service, error) {
	compileArgv := viper.GetStringSlice("script.compile_cmd")
	decompileArgv := viper.GetStringSlice("script.decompile_cmd")
	if len(compileArgv) == 0 && len(decompileArgv) == 0 {
		return nil, fmt.Errorf("no script toolchain configured (set script.compile_cmd / script.decompile_cmd)")
	}
	return transform.NewCommand(compileArgv, decompileArgv, transform.WithLogger(newLogger())), nil
}
