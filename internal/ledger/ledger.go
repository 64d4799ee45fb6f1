package ledger

import (
	"golang.org/x/text/unicode/norm"
)

// Draft is a transaction as submitted by the interactive path.
// The store assigns ID and CreatedAt on append.
type Draft struct {
	Amount   Amount
	Category string
	Note     string
	Author   string
}

// Record is a stored transaction row.
//
// CreatedAt and SyncedAt carry the raw stored timestamp text (RFC 3339,
// UTC). The outbox translates CreatedAt when building a sink batch; a row
// that fails to parse there is excluded from the batch and stays
// unsynced, so a single bad row never blocks or corrupts a push.
type Record struct {
	ID        int64
	CreatedAt string
	Amount    Amount
	Category  string
	Note      string
	Author    string
	SyncedAt  *string
}

// Synced reports whether the record has been confirmed delivered to the
// remote sink.
func (r Record) Synced() bool {
	return r.SyncedAt != nil
}

// Normalize returns a copy of the draft with category and note text in
// Unicode NFC form. Chat clients emit mixed normalization forms; storing
// NFC keeps category grouping and sheet output consistent.
func (d Draft) Normalize() Draft {
	d.Category = norm.NFC.String(d.Category)
	d.Note = norm.NFC.String(d.Note)
	return d
}
