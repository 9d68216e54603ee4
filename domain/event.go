package domain

import "time"

// BanEventKind classifies what happened to a Ban in a single reconcile
// commit.
type BanEventKind string

const (
	BanEventInserted BanEventKind = "inserted"
	BanEventUpdated  BanEventKind = "updated"
	BanEventDeleted  BanEventKind = "deleted"
)

// BanEvent is an append-only audit row written alongside every mutation a
// reconcile commit makes to a Ban. It exists purely for operator visibility
// into what changed and when; nothing reads it back to drive behavior.
type BanEvent struct {
	ID     uint         `gorm:"primaryKey"`
	BanID  uint         `gorm:"not null;index"`
	Kind   BanEventKind `gorm:"size:16;not null"`
	At     time.Time    `gorm:"not null"`
	Detail string       `gorm:"type:text"`
}

func (BanEvent) TableName() string { return "ban_events" }
