package reconcile

import (
	"time"

	"github.com/ss13community/banwatch/domain"
)

// Update pairs a stored Ban's ID with the merged record it should become.
type Update struct {
	ExistingID uint
	Merged     domain.Ban
}

// Diff is the result of comparing a fetched batch against stored bans for
// one adapter run.
type Diff struct {
	ToInsert []domain.Ban
	ToUpdate []Update

	// Matched holds the identity of every fetched ban, deduplicated by
	// identity (last occurrence wins). Used by the deletion phase to
	// compute what upstream no longer lists.
	Matched map[domain.IdentityKey]struct{}
}

// computeDiff compares resolved (source-assigned, canonicalized) fetched
// bans against stored bans using the identity relation selected by
// supportsBanIDs. Duplicate identities within fetched collapse to the last
// occurrence, matching the reconciler's documented tie-break.
func computeDiff(stored, fetched []domain.Ban, supportsBanIDs bool) Diff {
	byIdentity := make(map[domain.IdentityKey]domain.Ban, len(fetched))
	order := make([]domain.IdentityKey, 0, len(fetched))
	for _, b := range fetched {
		key := domain.Identity(b, supportsBanIDs)
		if _, seen := byIdentity[key]; !seen {
			order = append(order, key)
		}
		byIdentity[key] = b
	}

	storedByIdentity := make(map[domain.IdentityKey]domain.Ban, len(stored))
	for _, m := range stored {
		storedByIdentity[domain.Identity(m, supportsBanIDs)] = m
	}

	diff := Diff{Matched: make(map[domain.IdentityKey]struct{}, len(order))}
	for _, key := range order {
		b := byIdentity[key]
		diff.Matched[key] = struct{}{}

		existing, present := storedByIdentity[key]
		if !present {
			diff.ToInsert = append(diff.ToInsert, b)
			continue
		}
		if merged, changed := mergeIfChanged(existing, b); changed {
			diff.ToUpdate = append(diff.ToUpdate, Update{ExistingID: existing.ID, Merged: merged})
		}
	}

	return diff
}

// mergeIfChanged copies the mutable fields (reason, expires, unbannedBy,
// and job set for job bans) from the freshly fetched ban onto the stored
// one, and reports whether any of them differed.
func mergeIfChanged(stored, fetched domain.Ban) (domain.Ban, bool) {
	changed := false

	merged := stored
	if stored.Reason != fetched.Reason {
		merged.Reason = fetched.Reason
		changed = true
	}
	if !timePtrEqual(stored.Expires, fetched.Expires) {
		merged.Expires = fetched.Expires
		changed = true
	}
	if !stringPtrEqual(stored.UnbannedBy, fetched.UnbannedBy) {
		merged.UnbannedBy = fetched.UnbannedBy
		changed = true
	}
	if fetched.BanType == domain.BanTypeJob && !domain.JobSetEqual(stored.JobBans, fetched.JobBans) {
		merged.JobBans = fetched.JobBans
		changed = true
	}

	return merged, changed
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func stringPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
