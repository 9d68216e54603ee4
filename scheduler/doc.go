// Package scheduler drives periodic reconciliation of every registered
// adapter on a cron schedule. It owns the only cross-job synchronization
// primitive in the system: a per-adapter guard that drops an overlapping
// trigger rather than queuing it.
package scheduler
