package store

import (
	"context"
	"fmt"
	"time"

	"github.com/ss13community/banwatch/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gateway wraps a *gorm.DB and exposes the typed operations the reconciler
// needs. It never leaks gorm types to callers.
type Gateway struct {
	db *gorm.DB
}

// New wraps an already-connected gorm database.
func New(db *gorm.DB) *Gateway {
	return &Gateway{db: db}
}

// Migrate creates or updates the schema for every domain table. It is safe
// to call on every process start.
func (g *Gateway) Migrate(ctx context.Context) error {
	return g.db.WithContext(ctx).AutoMigrate(
		&domain.BanSource{},
		&domain.Ban{},
		&domain.JobBan{},
		&domain.BanEvent{},
	)
}

// EnsureSource returns the BanSource row for name, creating it if this is
// the first time the source has been seen.
func (g *Gateway) EnsureSource(ctx context.Context, name string) (domain.BanSource, error) {
	var source domain.BanSource
	err := g.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		FirstOrCreate(&source, domain.BanSource{Name: name}).Error
	if err != nil {
		return domain.BanSource{}, fmt.Errorf("ensure ban source %q: %w", name, err)
	}
	return source, nil
}

// LoadExisting returns every stored Ban for a source, with its job set
// preloaded, so the reconciler can compute identity against fetched bans.
func (g *Gateway) LoadExisting(ctx context.Context, sourceID uint) ([]domain.Ban, error) {
	var bans []domain.Ban
	err := g.db.WithContext(ctx).
		Preload("JobBans").
		Where("source_id = ?", sourceID).
		Find(&bans).Error
	if err != nil {
		return nil, fmt.Errorf("load existing bans for source %d: %w", sourceID, err)
	}
	return bans, nil
}

// UpsertResult summarizes what a CommitUpserts call changed.
type UpsertResult struct {
	Inserted int
	Updated  int
}

// Change pairs a stored Ban's ID with the merged record it should become:
// the stored Ban with its mutable fields taken from the fetched one.
type Change struct {
	ExistingID uint
	Updated    domain.Ban
}

// CommitUpserts applies an insert/update batch inside its own transaction,
// writing one BanEvent per affected Ban alongside the mutation. Any failure
// rolls back the whole batch. This transaction commits independently of, and
// before, any deletion phase, so a cancellation during a later delete leaves
// this work intact.
func (g *Gateway) CommitUpserts(ctx context.Context, toInsert []domain.Ban, toUpdate []Change, at time.Time) (UpsertResult, error) {
	var result UpsertResult

	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range toInsert {
			ban := toInsert[i]
			if err := tx.Create(&ban).Error; err != nil {
				return fmt.Errorf("insert ban: %w", err)
			}
			if err := writeEvent(tx, ban.ID, domain.BanEventInserted, "", at); err != nil {
				return err
			}
			result.Inserted++
		}

		for _, change := range toUpdate {
			ban := change.Updated
			ban.ID = change.ExistingID
			if err := tx.Session(&gorm.Session{FullSaveAssociations: false}).
				Select("Ckey", "BanType", "BannedOn", "BannedBy", "Expires", "Reason", "UnbannedBy").
				Updates(&ban).Error; err != nil {
				return fmt.Errorf("update ban %d: %w", change.ExistingID, err)
			}
			if err := tx.Where("ban_id = ?", change.ExistingID).Delete(&domain.JobBan{}).Error; err != nil {
				return fmt.Errorf("clear job bans for %d: %w", change.ExistingID, err)
			}
			if len(ban.JobBans) > 0 {
				for i := range ban.JobBans {
					ban.JobBans[i].BanID = change.ExistingID
				}
				if err := tx.Create(&ban.JobBans).Error; err != nil {
					return fmt.Errorf("insert job bans for %d: %w", change.ExistingID, err)
				}
			}
			if err := writeEvent(tx, change.ExistingID, domain.BanEventUpdated, "", at); err != nil {
				return err
			}
			result.Updated++
		}

		return nil
	})
	if err != nil {
		return UpsertResult{}, err
	}
	return result, nil
}

// CommitDeletes removes every row in ids inside its own transaction, writing
// one BanEvent per removal first. Engine.Run calls it after CommitUpserts
// has already committed, so a cancellation here never rolls back the
// insert/update work. Outside a complete refresh ids is empty and no
// transaction is opened.
func (g *Gateway) CommitDeletes(ctx context.Context, ids []uint, at time.Time) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	deleted := 0
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range ids {
			if err := writeEvent(tx, id, domain.BanEventDeleted, "", at); err != nil {
				return err
			}
			if err := tx.Where("ban_id = ?", id).Delete(&domain.JobBan{}).Error; err != nil {
				return fmt.Errorf("delete job bans for %d: %w", id, err)
			}
			if err := tx.Delete(&domain.Ban{}, id).Error; err != nil {
				return fmt.Errorf("delete ban %d: %w", id, err)
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func writeEvent(tx *gorm.DB, banID uint, kind domain.BanEventKind, detail string, at time.Time) error {
	event := domain.BanEvent{BanID: banID, Kind: kind, At: at, Detail: detail}
	if err := tx.Create(&event).Error; err != nil {
		return fmt.Errorf("write ban event for %d: %w", banID, err)
	}
	return nil
}
