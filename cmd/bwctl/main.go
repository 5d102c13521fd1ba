package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pg-sharding/batchwrite/pkg"
	"github.com/pg-sharding/batchwrite/pkg/bwlog"
	"github.com/pg-sharding/batchwrite/pkg/config"
	"github.com/pg-sharding/batchwrite/pkg/statistics"
	"github.com/pg-sharding/batchwrite/pkg/tracing"
)

var (
	cfgPath string

	rootCmd = &cobra.Command{
		Use:   "bwctl -c `path-to-config`",
		Short: "batchwrite control tool",
		Long:  "bwctl allocates hi-lo keys and applies batched writes using the batchwrite pipeline",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Version:       pkg.VersionRevision,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
)

// loadConfig reads the config file when one is given, defaults otherwise,
// and sets up logging, statistics and tracing from it.
func loadConfig() (*config.Writer, io.Closer, error) {
	var cfg *config.Writer
	if cfgPath != "" {
		if err := config.LoadWriterCfg(cfgPath); err != nil {
			return nil, nil, err
		}
		cfg = config.WriterConfig()
	} else {
		cfg = &config.Writer{}
		cfg.ApplyDefaults()
	}

	bwlog.ReloadLogger(cfg.LogFileName, cfg.LogLevel, cfg.PrettyLogging)
	statistics.SetQuantiles(cfg.TimeQuantiles)

	var closer io.Closer = io.NopCloser(nil)
	if cfg.JaegerConfig.JaegerUrl != "" {
		c, err := tracing.InitJaegerTracer(cfg.JaegerConfig)
		if err != nil {
			return nil, nil, err
		}
		closer = c
	}
	return cfg, closer, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to batchwrite config file")

	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		bwlog.Zero.Error().Err(err).Msg("")
		os.Exit(1)
	}
}
