package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meigma/pak"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "pak",
		Short: "Pack and extract PAK archive containers",
		Long: `pak reads and writes PAK archive containers: a compressed index of a
directory/file tree followed by raw-DEFLATE file payloads.

Examples:
  pak list game.pak                      # List entries
  pak extract game.pak -o extracted      # Unpack the whole tree
  pak index game.pak -o index.json       # Dump the index as JSON
  pak pack extracted -o game_new.pak     # Pack a directory
  pak pack extracted -m index.json -o game_new.pak
  pak script decompile init.scb init.lua`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/pak/config.yaml)")
	rootCmd.PersistentFlags().String("layout", "timed", "index layout: timed or legacy")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")

	_ = viper.BindPFlag("layout", rootCmd.PersistentFlags().Lookup("layout"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in the config file and environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(filepath.Join(xdg.ConfigHome, "pak"))
		if homeDir, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(homeDir, ".config", "pak"))
		}
	}

	viper.SetEnvPrefix("PAK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("layout", "timed")
	viper.SetDefault("script.compile_cmd", []string{})
	viper.SetDefault("script.decompile_cmd", []string{})

	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// newLogger builds the CLI logger, routed through slog so the library
// packages can share it.
func newLogger() *slog.Logger {
	opts := log.Options{ReportTimestamp: false}
	if viper.GetBool("verbose") {
		opts.Level = log.DebugLevel
	} else {
		opts.Level = log.WarnLevel
	}
	return slog.New(log.NewWithOptions(os.Stderr, opts))
}

// layoutOption translates the configured layout name.
func layoutOption() (pak.Option, error) {
	switch viper.GetString("layout") {
	case "timed":
		return pak.WithLayout(pak.LayoutTimed), nil
	case "legacy":
		return pak.WithLayout(pak.LayoutLegacy), nil
	default:
		return nil, fmt.Errorf("unknown layout %q (want timed or legacy)", viper.GetString("layout"))
	}
}

// codecOptions assembles the options every codec command shares.
func codecOptions() ([]pak.Option, error) {
	layout, err := layoutOption()
	if err != nil {
		return nil, err
	}
	return []pak.Option{layout, pak.WithLogger(newLogger())}, nil
}
