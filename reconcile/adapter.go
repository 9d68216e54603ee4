package reconcile

import (
	"context"

	"github.com/ss13community/banwatch/domain"
)

// Adapter fetches bans from one upstream and normalizes them into the
// canonical model. Implementations live under adapters/ and are constructed
// from configuration by the bootstrap package; the engine only ever sees
// this interface.
type Adapter interface {
	// Name identifies the adapter for logging and status reporting.
	Name() string

	// Sources lists the BanSource names this adapter owns. Every fetched
	// Ban must carry a Source.Name present in this list.
	Sources() []string

	// SupportsBanIDs reports whether the upstream exposes a stable
	// per-ban identifier, which selects the identity-equality relation
	// used to match fetched bans against stored ones.
	SupportsBanIDs() bool

	// FetchAll returns every currently-active and historical ban the
	// upstream exposes. Used for full refreshes and cold starts.
	FetchAll(ctx context.Context) ([]domain.Ban, error)

	// FetchNew returns a superset of recently-changed bans. Overshooting
	// is safe: the reconciler is idempotent on unchanged input. Used for
	// incremental refreshes.
	FetchNew(ctx context.Context) ([]domain.Ban, error)
}
