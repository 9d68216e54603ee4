package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Alice", "alice"},
		{"strips punctuation", "Al_ice-99!", "alice99"},
		{"strips unicode symbols", "moß mod", "momod"},
		{"empty stays empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Canonicalize(tt.in))
		})
	}
}

func TestCanonicalize_FixedPoint(t *testing.T) {
	inputs := []string{"Alice", "MOD-1!", "already_canonical123", ""}
	for _, in := range inputs {
		once := Canonicalize(in)
		twice := Canonicalize(once)
		assert.Equal(t, once, twice, "canonicalize must be idempotent for %q", in)
	}
}

func TestCanonicalizeBan(t *testing.T) {
	unbanned := "Mod-One"
	b := Ban{
		Ckey:       "Player_One",
		BannedBy:   "Mod.Two",
		UnbannedBy: &unbanned,
	}
	CanonicalizeBan(&b)
	assert.Equal(t, "playerone", b.Ckey)
	assert.Equal(t, "modtwo", b.BannedBy)
	assert.Equal(t, "modone", *b.UnbannedBy)
}

func TestCanonicalizeBan_NilUnbannedBy(t *testing.T) {
	b := Ban{Ckey: "x", BannedBy: "y"}
	CanonicalizeBan(&b)
	assert.Nil(t, b.UnbannedBy)
}
