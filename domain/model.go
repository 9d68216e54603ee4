package domain

import "time"

// BanType distinguishes a server-wide ban from a job (role) restriction.
type BanType string

const (
	// BanTypeServer bans the player from the server entirely.
	BanTypeServer BanType = "server"
	// BanTypeJob restricts the player from one or more jobs/roles.
	BanTypeJob BanType = "job"
)

// BanSource identifies a logical upstream origin of bans, such as a
// specific server's ban list. Name is globally unique and stable; ID is
// assigned by the store on first insert and never changes.
type BanSource struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;size:120;not null"`
}

func (BanSource) TableName() string { return "ban_sources" }

// Ban is the canonical ban record. SourceBanID is present only for
// sources that support stable upstream identifiers (invariant 1: unique
// per SourceID when present). Ckey, BannedBy, and UnbannedBy are always
// stored in canonical form (invariant 2); BannedOn and Expires are always
// UTC (invariant 3).
// SourceBanID is nullable, and MySQL/Postgres/SQLite all treat NULL as
// distinct from any other NULL under a UNIQUE index, so a plain composite
// unique index gives exactly "unique when present" across every supported
// dialect without dialect-specific partial-index syntax.
type Ban struct {
	ID          uint      `gorm:"primaryKey"`
	SourceID    uint      `gorm:"index:idx_source_ban,unique;not null"`
	Source      BanSource `gorm:"foreignKey:SourceID"`
	SourceBanID *int64    `gorm:"index:idx_source_ban,unique"`
	Ckey        string    `gorm:"size:64;not null;index"`
	BanType     BanType   `gorm:"size:16;not null"`
	BannedOn    time.Time `gorm:"not null"`
	BannedBy    string    `gorm:"size:64;not null"`
	Expires     *time.Time
	Reason      string `gorm:"type:text"`
	UnbannedBy  *string `gorm:"size:64"`
	JobBans     []JobBan `gorm:"foreignKey:BanID;constraint:OnDelete:CASCADE"`
}

func (Ban) TableName() string { return "bans" }

// JobBan is one job/role covered by a job-type Ban. Jobs form a set: order
// is irrelevant and duplicates are forbidden by the composite primary key.
type JobBan struct {
	BanID uint   `gorm:"primaryKey"`
	Job   string `gorm:"primaryKey;size:64"`
}

func (JobBan) TableName() string { return "job_bans" }

// JobSet returns the ban's jobs as a set, ignoring order and duplicates.
func (b Ban) JobSet() map[string]struct{} {
	set := make(map[string]struct{}, len(b.JobBans))
	for _, jb := range b.JobBans {
		set[jb.Job] = struct{}{}
	}
	return set
}
