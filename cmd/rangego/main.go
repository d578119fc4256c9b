// Command rangego manages numeric range indexes from the terminal: ingest
// documents, flush and commit segments, and run range searches against a
// local index directory.
//
// Configuration resolves flags first, then RANGEGO_* environment variables
// (RANGEGO_DIR, RANGEGO_CODEC, ...).
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hupe1980/rangego"
	"github.com/hupe1980/rangego/codec"
	"github.com/hupe1980/rangego/resource"
	"github.com/hupe1980/rangego/segment"
)

var version = "dev"

// cfg resolves flag and environment configuration for all subcommands.
var cfg = viper.New()

func main() {
	rootCmd := &cobra.Command{
		Use:          "rangego",
		Short:        "Range-filterable document index",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg.SetEnvPrefix("RANGEGO")
			cfg.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
			cfg.AutomaticEnv()
			return cfg.BindPFlags(cmd.Flags())
		},
	}

	rootCmd.PersistentFlags().String("dir", "", "index directory (env RANGEGO_DIR)")
	rootCmd.PersistentFlags().String("codec", "", "segment metadata codec: msgpack or json")
	rootCmd.PersistentFlags().String("compression", "", "segment compression: none, lz4 or zstd")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn or error")

	rootCmd.AddCommand(
		newIndexCmd(),
		newSearchCmd(),
		newStatsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		color.Red("Error: %s", err)
		os.Exit(1)
	}
}

// engineOptions assembles engine options from the resolved config.
func engineOptions() ([]rangego.Option, error) {
	opts := []rangego.Option{
		rangego.WithLogger(rangego.NewTextLogger(logLevel())),
	}

	switch name := cfg.GetString("codec"); name {
	case "", "msgpack":
	case "json":
		opts = append(opts, rangego.WithCodec(codec.JSON{}))
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}

	switch name := cfg.GetString("compression"); name {
	case "", "none":
	case "lz4":
		opts = append(opts, rangego.WithCompression(segment.CompressionLZ4))
	case "zstd":
		opts = append(opts, rangego.WithCompression(segment.CompressionZSTD))
	default:
		return nil, fmt.Errorf("unknown compression %q", name)
	}

	if limit := cfg.GetInt64("io-limit"); limit > 0 {
		opts = append(opts, rangego.WithResourceConfig(resource.Config{
			IOLimitBytesPerSec: limit,
		}))
	}

	return opts, nil
}

func logLevel() slog.Level {
	switch cfg.GetString("log-level") {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// openEngine opens the configured index directory.
func openEngine(cmd *cobra.Command) (*rangego.Engine, error) {
	dir := cfg.GetString("dir")
	if dir == "" {
		return nil, fmt.Errorf("no index directory (set --dir or RANGEGO_DIR)")
	}
	opts, err := engineOptions()
	if err != nil {
		return nil, err
	}
	return rangego.OpenLocal(cmd.Context(), dir, opts...)
}
