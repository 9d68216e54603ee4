package cmd

import (
	"fmt"
	"os"

	"github.com/ss13community/banwatch/core/config"
	"github.com/ss13community/banwatch/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "banwatch",
	Short: "Ban aggregation engine",
	Long: `banwatch polls one or more upstream ban lists on a fixed schedule
and reconciles them into a single store, so downstream tooling has one
place to query bans regardless of which server they came from.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Every leaf config key is also reachable as a --path.to.key=value
	// override, per the configuration contract. Per-source keys
	// (sources.<name>.<opt>) are not statically known ahead of parse
	// time and are instead overridden through environment variables.
	for _, key := range config.FlagKeys() {
		RootCmd.PersistentFlags().String(key, "", fmt.Sprintf("override config key %q", key))
	}
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Use the application's standard logger for error reporting. We
		// default to console format and debug level to get readable,
		// ISO8601-timestamped output for a CLI failure.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
