package domain

import (
	"fmt"
	"sort"
	"strings"
)

// IdentityKey is a comparable representation of a Ban's identity, suitable
// for use as a map key when matching fetched bans against stored ones.
// Two Bans have the same identity iff their IdentityKey values are equal.
//
// This is the sum-type encoding from the design notes: rather than two
// distinct Go types (ById / ByTuple), the two branches collapse into one
// prefixed string so both can live in the same map without an interface
// or type switch at every call site.
type IdentityKey string

// Identity computes b's identity key given whether its owning source
// supports stable upstream ban IDs.
//
//   - supportsBanIDs: identity is (sourceId, sourceBanId).
//   - otherwise: identity is the tuple (sourceId, bannedOn, banType, ckey,
//     bannedBy, jobBansAsSet), with jobBansAsSet participating only when
//     banType == BanTypeJob.
//
// Callers must canonicalize b (CanonicalizeBan) before computing identity;
// Identity does not canonicalize on its own so that it can also be used
// to compare two already-canonical records without redundant work.
func Identity(b Ban, supportsBanIDs bool) IdentityKey {
	if supportsBanIDs {
		id := int64(0)
		if b.SourceBanID != nil {
			id = *b.SourceBanID
		}
		return IdentityKey(fmt.Sprintf("id|%d|%d", b.SourceID, id))
	}

	jobs := ""
	if b.BanType == BanTypeJob {
		jobs = jobSetKey(b.JobBans)
	}

	return IdentityKey(fmt.Sprintf("tuple|%d|%d|%s|%s|%s|%s",
		b.SourceID,
		b.BannedOn.UTC().UnixNano(),
		b.BanType,
		b.Ckey,
		b.BannedBy,
		jobs,
	))
}

// jobSetKey returns a canonical, order-independent representation of a set
// of JobBan rows, used both inside Identity and by JobSetEqual.
func jobSetKey(jobBans []JobBan) string {
	jobs := make([]string, 0, len(jobBans))
	seen := make(map[string]struct{}, len(jobBans))
	for _, jb := range jobBans {
		if _, dup := seen[jb.Job]; dup {
			continue
		}
		seen[jb.Job] = struct{}{}
		jobs = append(jobs, jb.Job)
	}
	sort.Strings(jobs)
	return strings.Join(jobs, ",")
}

// JobSetEqual reports whether a and b cover exactly the same set of jobs,
// ignoring order and duplicates. This is the structural equality used to
// detect that a job-ban's role list has changed upstream.
func JobSetEqual(a, b []JobBan) bool {
	return jobSetKey(a) == jobSetKey(b)
}
