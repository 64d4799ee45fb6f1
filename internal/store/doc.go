// Package store provides SQLite-backed durable storage for the
// transaction ledger.
//
// The ledger is append-only with a per-row sync watermark:
//   - Append: insert a transaction, durable before return
//   - Unsynced: rows with synced_at NULL, insertion order
//   - MarkSynced: id-scoped, idempotent watermark advance
//   - WeeklyTotal: SQL-side sum since the most recent Monday
//
// MarkSynced is deliberately id-scoped: a blanket "mark all unsynced"
// update would race a concurrent Append and stamp rows the in-flight
// push never delivered.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
