package cmd

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/ss13community/banwatch/bootstrap"
	"github.com/ss13community/banwatch/core/config"
	"github.com/ss13community/banwatch/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// runCmd starts the scheduler and the ops HTTP server and blocks until an
// interrupt or SIGTERM asks the process to shut down.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the ban aggregation engine",
	Long:  `Starts the reconcile scheduler for every configured source and the ops HTTP server.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(".", cmd.Flags())
		if err != nil {
			log.Fatalf("failed to load configuration: %v", err)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		app, err := bootstrap.Build(ctx, cfg, logg)
		if err != nil {
			logg.Fatal("failed to build application", zap.Error(err))
		}

		logg.Info("starting", zap.Int("sources", len(cfg.Sources)), zap.Int("adapters", len(app.Adapters)))
		if err := app.Run(ctx); err != nil {
			logg.Fatal("run failed", zap.Error(err))
		}
	},
}

func init() {
	RootCmd.AddCommand(runCmd)
}
