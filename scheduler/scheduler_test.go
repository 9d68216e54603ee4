package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ss13community/banwatch/core/opsserver"
	"github.com/ss13community/banwatch/domain"
	"github.com/ss13community/banwatch/reconcile"
	"github.com/ss13community/banwatch/store"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubGateway struct {
	stored []domain.Ban
}

func (g stubGateway) EnsureSource(_ context.Context, name string) (domain.BanSource, error) {
	return domain.BanSource{ID: 1, Name: name}, nil
}
func (g stubGateway) LoadExisting(_ context.Context, _ uint) ([]domain.Ban, error) { return g.stored, nil }
func (g stubGateway) CommitUpserts(_ context.Context, toInsert []domain.Ban, toUpdate []store.Change, _ time.Time) (store.UpsertResult, error) {
	return store.UpsertResult{Inserted: len(toInsert), Updated: len(toUpdate)}, nil
}
func (g stubGateway) CommitDeletes(_ context.Context, ids []uint, _ time.Time) (int, error) {
	return len(ids), nil
}

type slowAdapter struct {
	name     string
	running  chan struct{}
	release  chan struct{}
	fetchCnt int32
}

func (a *slowAdapter) Name() string        { return a.name }
func (a *slowAdapter) Sources() []string   { return []string{a.name} }
func (a *slowAdapter) SupportsBanIDs() bool { return true }
func (a *slowAdapter) FetchAll(ctx context.Context) ([]domain.Ban, error) {
	atomic.AddInt32(&a.fetchCnt, 1)
	close(a.running)
	<-a.release
	return nil, nil
}
func (a *slowAdapter) FetchNew(ctx context.Context) ([]domain.Ban, error) { return a.FetchAll(ctx) }

func TestGuarded_DropsOverlappingTrigger(t *testing.T) {
	logger := zap.NewNop()
	engine := reconcile.NewEngine(stubGateway{})
	s := New(engine, logger, nil)

	adapter := &slowAdapter{name: "robusta", running: make(chan struct{}), release: make(chan struct{})}
	job := s.guarded(adapter, true)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		job()
	}()

	<-adapter.running
	// Second trigger arrives while the first is still in flight; it must
	// be dropped, not queued.
	job()

	close(adapter.release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&adapter.fetchCnt))
}

func TestRunJob_RecordsStatusOnSuccess(t *testing.T) {
	logger := zap.NewNop()
	engine := reconcile.NewEngine(stubGateway{})
	board := opsserver.NewStatusBoard()
	s := New(engine, logger, board)

	adapter := &fastAdapter{name: "robusta"}
	s.runJob(adapter, true)

	status := board.Snapshot()["robusta"]
	assert.True(t, status.Success)
	assert.True(t, status.FullRefresh)
}

func TestRunJob_ClassifiesSafetyAbortAsError(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	logger := zap.New(core)
	stored := make([]domain.Ban, 5)
	for i := range stored {
		stored[i] = domain.Ban{ID: uint(i + 1)}
	}
	engine := reconcile.NewEngine(stubGateway{stored: stored})
	board := opsserver.NewStatusBoard()
	s := New(engine, logger, board)

	adapter := &fastAdapter{name: "robusta", fetchesEmpty: true}
	s.runJob(adapter, true)

	status := board.Snapshot()["robusta"]
	assert.False(t, status.Success)
	assert.NotEmpty(t, status.Error)

	entries := logs.All()
	assert.NotEmpty(t, entries)
	assert.Contains(t, entries[len(entries)-1].Message, "safety abort")
}

type fastAdapter struct {
	name         string
	fetchesEmpty bool
}

func (a *fastAdapter) Name() string        { return a.name }
func (a *fastAdapter) Sources() []string   { return []string{a.name} }
func (a *fastAdapter) SupportsBanIDs() bool { return true }
func (a *fastAdapter) FetchAll(_ context.Context) ([]domain.Ban, error) {
	if a.fetchesEmpty {
		return nil, nil
	}
	return []domain.Ban{{Source: domain.BanSource{Name: a.name}, Ckey: "x", BannedBy: "y", BanType: domain.BanTypeServer}}, nil
}
func (a *fastAdapter) FetchNew(ctx context.Context) ([]domain.Ban, error) { return a.FetchAll(ctx) }
