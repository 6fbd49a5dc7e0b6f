// Package history persists reboot runs in a SQLite ledger.
//
// Each run gets a UUID row in runs (organization, shard, network, interval,
// outcome, counters) and one row per dispatched reboot in results, in
// dispatch order. The ledger is optional: the runner only writes to it when
// history.enabled is set. A schema version mismatch is reported, never
// migrated silently.
package history
