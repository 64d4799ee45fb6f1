// Package ledger defines the domain types for recorded transactions.
//
// Money is always an integer count of minor currency units (Amount).
// Conversion to and from major-unit decimal strings happens only at
// presentation boundaries: parsing user input and rendering rows for
// the remote sink or chat replies. No float arithmetic anywhere.
//
// A Draft is what the interactive path submits; the store assigns id
// and created_at and turns it into a Record. Record.CreatedAt keeps the
// raw stored form so that translation failures are decided where the
// row is consumed, not where it is read.
package ledger
