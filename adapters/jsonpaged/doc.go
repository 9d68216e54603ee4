// Package jsonpaged implements the generic paginated-JSON source contract:
//
//	GET /bans/{perPage}/{page}
//	200 -> { "value": { "bans": [...], "lastPage": <int> } }
//
// Ban records carry a stable numeric id, so this adapter reports
// supportsBanIds = true.
//
// A page that fails to decode is archived through the optional Archiver
// before the adapter reports MalformedSourcePayload, so an operator can
// inspect exactly what the upstream returned.
package jsonpaged
