package bootstrap

import (
	"context"
	"fmt"
	"sort"

	"github.com/ss13community/banwatch/adapters/htmltable"
	"github.com/ss13community/banwatch/adapters/jsonpaged"
	"github.com/ss13community/banwatch/core/config"
	"github.com/ss13community/banwatch/core/database"
	"github.com/ss13community/banwatch/core/objectstore"
	"github.com/ss13community/banwatch/core/opsserver"
	"github.com/ss13community/banwatch/reconcile"
	"github.com/ss13community/banwatch/scheduler"
	"github.com/ss13community/banwatch/store"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// App holds every wired component of a running process. Build assembles
// it from configuration; Run drives its lifecycle.
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Gateway   *store.Gateway
	Engine    *reconcile.Engine
	Adapters  []reconcile.Adapter
	Scheduler *scheduler.Scheduler
	Board     *opsserver.StatusBoard
	Ops       *fiber.App
}

// Build connects the store, migrates the schema, constructs the
// configured adapters, and wires the reconcile engine and scheduler.
// It does not start anything; call Run for that.
func Build(ctx context.Context, cfg *config.Config, logg *zap.Logger) (*App, error) {
	db, err := database.Connect(cfg.DBConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	gw := store.New(db)
	if err := gw.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	var archiveClient objectstore.Client
	if cfg.Archive.Enabled {
		archiveClient, err = objectstore.NewClient(cfg.Archive)
		if err != nil {
			return nil, fmt.Errorf("create archive client: %w", err)
		}
	}
	archiver := objectstore.NewArchiver(archiveClient, cfg.Archive.Bucket)

	adapters, err := buildAdapters(cfg.Sources, archiver)
	if err != nil {
		return nil, fmt.Errorf("build adapters: %w", err)
	}

	engine := reconcile.NewEngine(gw)
	board := opsserver.NewStatusBoard()
	sched := scheduler.New(engine, logg, board)
	for _, adapter := range adapters {
		if err := sched.Register(adapter); err != nil {
			return nil, fmt.Errorf("register adapter %q: %w", adapter.Name(), err)
		}
	}

	return &App{
		Config:    cfg,
		Logger:    logg,
		Gateway:   gw,
		Engine:    engine,
		Adapters:  adapters,
		Scheduler: sched,
		Board:     board,
		Ops:       opsserver.New(board, logg),
	}, nil
}

// Run starts the scheduler and the ops HTTP server, bootstraps every
// adapter with an immediate full refresh, and blocks until ctx is
// cancelled. It then waits for in-flight cron-triggered reconcile jobs
// before shutting the ops server down; runs started by the initial
// bootstrap are not waited for.
func (a *App) Run(ctx context.Context) error {
	a.Scheduler.Bootstrap(a.Adapters)
	a.Scheduler.Start()

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("starting ops server", zap.String("port", a.Config.Server.Port))
		if err := a.Ops.Listen(":" + a.Config.Server.Port); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("ops server failed: %w", err)
	}

	a.Logger.Info("shutting down")
	<-a.Scheduler.Stop().Done()
	return a.Ops.Shutdown()
}

// buildAdapters groups configured sources by adapter kind and constructs
// one Adapter per kind, since jsonpaged and htmltable each share a single
// HTTP client and retry policy across every source they serve.
func buildAdapters(sources map[string]config.SourceConfig, archiver objectstore.Archiver) ([]reconcile.Adapter, error) {
	var jsonSources []jsonpaged.Config
	var htmlSources []htmltable.Config

	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		src := sources[name]
		switch src.Adapter {
		case "jsonpaged":
			jsonSources = append(jsonSources, jsonpaged.Config{
				SourceName: name,
				BaseURL:    src.BaseURL,
				PerPage:    src.PerPage,
			})
		case "htmltable":
			htmlSources = append(htmlSources, htmltable.Config{
				SourceName: name,
				ListURL:    src.ListURL,
			})
		default:
			return nil, fmt.Errorf("source %q: unknown adapter kind %q", name, src.Adapter)
		}
	}

	var adapters []reconcile.Adapter
	if len(jsonSources) > 0 {
		adapters = append(adapters, jsonpaged.New(jsonSources, archiver))
	}
	if len(htmlSources) > 0 {
		adapters = append(adapters, htmltable.New(htmlSources, archiver))
	}
	return adapters, nil
}
