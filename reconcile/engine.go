package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/ss13community/banwatch/core/errs"
	"github.com/ss13community/banwatch/domain"
	"github.com/ss13community/banwatch/store"
)

// Gateway is the store surface the engine needs. store.Gateway satisfies it;
// tests use a lighter fake.
type Gateway interface {
	EnsureSource(ctx context.Context, name string) (domain.BanSource, error)
	LoadExisting(ctx context.Context, sourceID uint) ([]domain.Ban, error)
	CommitUpserts(ctx context.Context, toInsert []domain.Ban, toUpdate []store.Change, at time.Time) (store.UpsertResult, error)
	CommitDeletes(ctx context.Context, ids []uint, at time.Time) (int, error)
}

// Result summarizes a single adapter run.
type Result struct {
	Adapter         string
	CompleteRefresh bool
	Inserted        int
	Updated         int
	Deleted         int
}

// Engine runs the reconciliation algorithm against a Gateway.
type Engine struct {
	gw Gateway
}

// NewEngine builds an Engine backed by the given Gateway.
func NewEngine(gw Gateway) *Engine {
	return &Engine{gw: gw}
}

// Run executes one reconciliation pass for adapter. requestedCompleteRefresh
// reflects which cron trigger fired; an empty stored set always forces a
// complete refresh regardless of what was requested.
func (e *Engine) Run(ctx context.Context, adapter Adapter, requestedCompleteRefresh bool) (Result, error) {
	sourcesByName, err := e.ensureSources(ctx, adapter)
	if err != nil {
		return Result{}, err
	}

	stored, err := e.loadStored(ctx, sourcesByName)
	if err != nil {
		return Result{}, err
	}

	isCompleteRefresh := requestedCompleteRefresh || len(stored) == 0

	var fetched []domain.Ban
	if isCompleteRefresh {
		fetched, err = adapter.FetchAll(ctx)
	} else {
		fetched, err = adapter.FetchNew(ctx)
	}
	if err != nil {
		return Result{}, err
	}

	resolved, err := resolveAndCanonicalize(fetched, sourcesByName)
	if err != nil {
		return Result{}, err
	}

	diff := computeDiff(stored, resolved, adapter.SupportsBanIDs())

	toDelete, err := planDeletions(stored, resolved, diff, adapter.SupportsBanIDs(), isCompleteRefresh)
	if err != nil {
		return Result{Adapter: adapter.Name(), CompleteRefresh: isCompleteRefresh}, err
	}

	updates := make([]store.Change, 0, len(diff.ToUpdate))
	for _, u := range diff.ToUpdate {
		updates = append(updates, store.Change{ExistingID: u.ExistingID, Updated: u.Merged})
	}

	now := time.Now().UTC()

	upserted, err := e.gw.CommitUpserts(ctx, diff.ToInsert, updates, now)
	if err != nil {
		return Result{}, errs.StoreFailure(err)
	}

	// The delete phase commits on its own, after the insert/update
	// transaction above has already landed. A cancellation here must not
	// roll back work that already committed.
	deleted, err := e.gw.CommitDeletes(ctx, toDelete, now)
	if err != nil {
		return Result{}, errs.StoreFailure(err)
	}

	return Result{
		Adapter:         adapter.Name(),
		CompleteRefresh: isCompleteRefresh,
		Inserted:        upserted.Inserted,
		Updated:         upserted.Updated,
		Deleted:         deleted,
	}, nil
}

func (e *Engine) ensureSources(ctx context.Context, adapter Adapter) (map[string]domain.BanSource, error) {
	sourcesByName := make(map[string]domain.BanSource, len(adapter.Sources()))
	for _, name := range adapter.Sources() {
		source, err := e.gw.EnsureSource(ctx, name)
		if err != nil {
			return nil, errs.StoreFailure(fmt.Errorf("ensure source %q: %w", name, err))
		}
		sourcesByName[name] = source
	}
	return sourcesByName, nil
}

func (e *Engine) loadStored(ctx context.Context, sourcesByName map[string]domain.BanSource) ([]domain.Ban, error) {
	var stored []domain.Ban
	for _, source := range sourcesByName {
		rows, err := e.gw.LoadExisting(ctx, source.ID)
		if err != nil {
			return nil, errs.StoreFailure(fmt.Errorf("load existing bans for source %q: %w", source.Name, err))
		}
		stored = append(stored, rows...)
	}
	return stored, nil
}

// resolveAndCanonicalize resolves each fetched ban's declared source name to
// its store-assigned BanSource and applies key canonicalization.
func resolveAndCanonicalize(fetched []domain.Ban, sourcesByName map[string]domain.BanSource) ([]domain.Ban, error) {
	resolved := make([]domain.Ban, 0, len(fetched))
	for _, b := range fetched {
		source, ok := sourcesByName[b.Source.Name]
		if !ok {
			return nil, errs.MalformedPayload(fmt.Errorf("ban references undeclared source %q", b.Source.Name))
		}
		b.SourceID = source.ID
		b.Source = source
		domain.CanonicalizeBan(&b)
		resolved = append(resolved, b)
	}
	return resolved, nil
}

// planDeletions implements the reconciler's deletion phase and safety gate.
// It only runs during a complete refresh; incremental refreshes never
// delete.
func planDeletions(stored, fetched []domain.Ban, diff Diff, supportsBanIDs, isCompleteRefresh bool) ([]uint, error) {
	if !isCompleteRefresh {
		return nil, nil
	}

	var missing []uint
	for _, m := range stored {
		if _, ok := diff.Matched[domain.Identity(m, supportsBanIDs)]; !ok {
			missing = append(missing, m.ID)
		}
	}

	if len(fetched) == 0 && len(missing) > 1 {
		return nil, errs.SafetyAbort(fmt.Errorf("fetched 0 bans but %d stored bans would be deleted", len(missing)))
	}

	return missing, nil
}
