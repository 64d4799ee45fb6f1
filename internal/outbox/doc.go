// Package outbox propagates locally staged ledger rows to the remote
// sheet.
//
// The interactive path never talks to the network: it appends to the
// local store, then fires a non-blocking trigger. A single worker
// goroutine consumes triggers, reads the unsynced tail, pushes it as
// one batch, and advances the watermark for exactly the rows it pushed.
//
// Delivery is at-least-once. A push can succeed without the watermark
// advancing (crash in between), in which case the rows are pushed again
// later; they are never lost and never marked without a confirmed push.
package outbox
