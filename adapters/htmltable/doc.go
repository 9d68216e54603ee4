// Package htmltable implements a source that renders its ban list as a
// plain HTML table with no stable per-row identifier. Columns, in order:
// ckey, banned by, banned on (RFC3339), expires (RFC3339 or "permanent"),
// role (comma-separated; "Server" for a server-wide ban), reason.
//
// Because there is no stable id, this adapter reports supportsBanIds =
// false and relies on the tuple-identity branch of the reconciler.
//
// A table that fails to parse is archived through the optional Archiver
// before the adapter reports MalformedSourcePayload.
package htmltable
