// Package store is the persistence gateway for the ban domain. It is the
// only package that issues SQL: everything above it works with domain
// values and hands them to the Gateway, which commits inserts and updates
// in one transaction and deletions in a second, separate one.
package store
