// Package opsserver exposes a minimal HTTP surface for process liveness and
// scheduler status. It never serves ban data; the read side of the stored
// data is deliberately out of scope here.
package opsserver

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RunStatus captures the outcome of the most recent reconcile run for a
// single adapter, as reported by the scheduler.
type RunStatus struct {
	Adapter     string    `json:"adapter"`
	LastRunAt   time.Time `json:"lastRunAt"`
	Duration    string    `json:"duration"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	FullRefresh bool      `json:"fullRefresh"`
}

// StatusBoard is a thread-safe registry of the latest run status per
// adapter, updated by the scheduler and read by the /status handler.
type StatusBoard struct {
	mu   sync.RWMutex
	runs map[string]RunStatus
}

// NewStatusBoard creates an empty status board.
func NewStatusBoard() *StatusBoard {
	return &StatusBoard{runs: make(map[string]RunStatus)}
}

// Record stores the outcome of a completed run for an adapter.
func (b *StatusBoard) Record(status RunStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.runs[status.Adapter] = status
}

// Snapshot returns a copy of the current run statuses, keyed by adapter name.
func (b *StatusBoard) Snapshot() map[string]RunStatus {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]RunStatus, len(b.runs))
	for k, v := range b.runs {
		out[k] = v
	}
	return out
}

// New builds the Fiber app exposing /healthz and /status.
func New(board *StatusBoard, logg *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(func(c *fiber.Ctx) error {
		err := c.Next()
		if err != nil {
			logg.Error("ops request error", zap.String("path", c.Path()), zap.Error(err))
		}
		return err
	})

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/status", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"runs": board.Snapshot()})
	})

	return app
}
