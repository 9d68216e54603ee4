package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/ss13community/banwatch/bootstrap"
	"github.com/ss13community/banwatch/core/config"
	"github.com/ss13community/banwatch/core/logger"
	"github.com/ss13community/banwatch/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var reconcileFullRefresh bool

// reconcileCmd runs one reconciliation pass outside the scheduler, for an
// operator who wants to force a run without waiting for the next cron
// trigger.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile [adapter]",
	Short: "Run a single reconcile pass for one or all configured adapters",
	Long: `Runs the same reconciliation the scheduler would run, immediately
and synchronously. With no argument, every configured adapter runs once.`,
	Args: cobra.MaximumNArgs(1),
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

		ctx := context.Background()
		app, err := bootstrap.Build(ctx, cfg, logg)
		if err != nil {
			logg.Fatal("failed to build application", zap.Error(err))
		}

		targets := app.Adapters
		if len(args) == 1 {
			targets = filterAdapter(app.Adapters, args[0])
			if len(targets) == 0 {
				logg.Fatal("no such adapter", zap.String("adapter", args[0]))
			}
		}

		for _, adapter := range targets {
			result, err := app.Engine.Run(ctx, adapter, reconcileFullRefresh)
			if err != nil {
				logg.Error("reconcile failed", zap.String("adapter", adapter.Name()), zap.Error(err))
				continue
			}
			fmt.Printf("%s: inserted=%d updated=%d deleted=%d fullRefresh=%v\n",
				result.Adapter, result.Inserted, result.Updated, result.Deleted, result.CompleteRefresh)
		}
	},
}

func filterAdapter(adapters []reconcile.Adapter, name string) []reconcile.Adapter {
	for _, a := range adapters {
		if a.Name() == name {
			return []reconcile.Adapter{a}
		}
	}
	return nil
}

func init() {
	reconcileCmd.Flags().BoolVar(&reconcileFullRefresh, "full", false, "run a complete refresh, including the deletion phase")
	RootCmd.AddCommand(reconcileCmd)
}
