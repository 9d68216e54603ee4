// Package domain defines the canonical ban record shapes shared by every
// source adapter, the reconciler, and the store gateway: BanSource, Ban,
// and JobBan, plus the two equality relations and the key canonicalization
// rule the reconciler depends on.
//
// Nothing in this package talks to a database or an upstream server; it is
// pure value types and predicates. The types carry gorm struct tags so the
// store package can persist them directly, but this package imports no
// database code.
package domain
