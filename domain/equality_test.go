package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIdentity_StableIDs(t *testing.T) {
	id := int64(7)
	a := Ban{SourceID: 1, SourceBanID: &id}
	b := Ban{SourceID: 1, SourceBanID: &id, Reason: "different reason, same identity"}

	assert.Equal(t, Identity(a, true), Identity(b, true))
}

func TestIdentity_StableIDs_DifferentSourceBanID(t *testing.T) {
	id1, id2 := int64(7), int64(8)
	a := Ban{SourceID: 1, SourceBanID: &id1}
	b := Ban{SourceID: 1, SourceBanID: &id2}

	assert.NotEqual(t, Identity(a, true), Identity(b, true))
}

func TestIdentity_TupleFallback(t *testing.T) {
	when := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := Ban{SourceID: 2, BannedOn: when, BanType: BanTypeServer, Ckey: "alice", BannedBy: "mod1"}
	b := Ban{SourceID: 2, BannedOn: when, BanType: BanTypeServer, Ckey: "alice", BannedBy: "mod1"}

	assert.Equal(t, Identity(a, false), Identity(b, false))
}

func TestIdentity_TupleFallback_JobSetParticipates(t *testing.T) {
	when := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := Ban{
		SourceID: 2, BannedOn: when, BanType: BanTypeJob, Ckey: "alice", BannedBy: "mod1",
		JobBans: []JobBan{{Job: "Captain"}, {Job: "HoS"}},
	}
	b := Ban{
		SourceID: 2, BannedOn: when, BanType: BanTypeJob, Ckey: "alice", BannedBy: "mod1",
		JobBans: []JobBan{{Job: "Captain"}},
	}

	assert.NotEqual(t, Identity(a, false), Identity(b, false), "differing job sets must yield differing identity for job bans")
}

func TestIdentity_TupleFallback_JobSetOrderIndependent(t *testing.T) {
	when := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := Ban{
		SourceID: 2, BannedOn: when, BanType: BanTypeJob, Ckey: "alice", BannedBy: "mod1",
		JobBans: []JobBan{{Job: "Captain"}, {Job: "HoS"}},
	}
	b := Ban{
		SourceID: 2, BannedOn: when, BanType: BanTypeJob, Ckey: "alice", BannedBy: "mod1",
		JobBans: []JobBan{{Job: "HoS"}, {Job: "Captain"}},
	}

	assert.Equal(t, Identity(a, false), Identity(b, false))
}

func TestIdentity_TupleFallback_JobSetIgnoredForServerBans(t *testing.T) {
	when := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := Ban{SourceID: 2, BannedOn: when, BanType: BanTypeServer, Ckey: "alice", BannedBy: "mod1"}
	b := Ban{
		SourceID: 2, BannedOn: when, BanType: BanTypeServer, Ckey: "alice", BannedBy: "mod1",
		JobBans: []JobBan{{Job: "leftover"}},
	}

	assert.Equal(t, Identity(a, false), Identity(b, false), "job set must not participate in identity for server bans")
}

func TestJobSetEqual(t *testing.T) {
	assert.True(t, JobSetEqual(
		[]JobBan{{Job: "Captain"}, {Job: "HoS"}},
		[]JobBan{{Job: "HoS"}, {Job: "Captain"}},
	))
	assert.False(t, JobSetEqual(
		[]JobBan{{Job: "Captain"}, {Job: "HoS"}},
		[]JobBan{{Job: "Captain"}},
	))
}

func TestJobSetEqual_DuplicatesIgnored(t *testing.T) {
	assert.True(t, JobSetEqual(
		[]JobBan{{Job: "Captain"}, {Job: "Captain"}},
		[]JobBan{{Job: "Captain"}},
	))
}
