package domain

import "strings"

// Canonicalize lowercases s and strips every character outside [a-z0-9].
// It is applied to ckey, bannedBy, and unbannedBy before persistence and
// before any identity comparison, and is a fixed point of itself:
// Canonicalize(Canonicalize(x)) == Canonicalize(x).
func Canonicalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CanonicalizeBan canonicalizes Ckey, BannedBy, and UnbannedBy in place.
func CanonicalizeBan(b *Ban) {
	b.Ckey = Canonicalize(b.Ckey)
	b.BannedBy = Canonicalize(b.BannedBy)
	if b.UnbannedBy != nil {
		canon := Canonicalize(*b.UnbannedBy)
		b.UnbannedBy = &canon
	}
}
