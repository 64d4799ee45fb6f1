package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/spendlog/internal/ledger"
)

// timeFormat is the stored timestamp form: RFC 3339 in UTC.
const timeFormat = time.RFC3339

// ErrUnavailable marks local durability failures. Callers match it with
// errors.Is instead of depending on driver error types.
var ErrUnavailable = errors.New("store unavailable")

// Append persists a draft with a fresh id and created_at and no sync
// watermark. The row is durable once Append returns without error.
func (s *Store) Append(ctx context.Context, draft ledger.Draft) (int64, error) {
	draft = draft.Normalize()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (created_at, amount, category, author, note)
		VALUES (?, ?, ?, ?, ?)
	`,
		s.now().UTC().Format(timeFormat),
		int64(draft.Amount),
		draft.Category,
		draft.Author,
		nullable(draft.Note),
	)
	if err != nil {
		return 0, fmt.Errorf("append transaction: %w: %w", ErrUnavailable, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("append transaction: last insert id: %w: %w", ErrUnavailable, err)
	}

	return id, nil
}

// Unsynced returns all rows not yet confirmed delivered, in insertion
// order (oldest first), so the remote append order matches entry order.
//
// Returns an empty slice (not nil) when everything is synced.
func (s *Store) Unsynced(ctx context.Context) ([]ledger.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, amount, category, author, note, synced_at
		FROM transactions
		WHERE synced_at IS NULL
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query unsynced: %w: %w", ErrUnavailable, err)
	}
	defer rows.Close()

	var records []ledger.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate unsynced: %w: %w", ErrUnavailable, err)
	}

	if records == nil {
		records = []ledger.Record{}
	}

	return records, nil
}

// MarkSynced sets the watermark for exactly the given ids, skipping rows
// that are already synced. A single UPDATE statement makes the call
// atomic relative to concurrent Append and MarkSynced; the
// `synced_at IS NULL` guard makes it idempotent.
//
// Returns the number of rows actually updated.
func (s *Store) MarkSynced(ctx context.Context, ids []int64, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	// Build placeholder string for IN clause
	placeholders := make([]byte, 0, len(ids)*2-1)
	args := make([]any, 0, len(ids)+1)
	args = append(args, at.UTC().Format(timeFormat))
	for i, id := range ids {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
		args = append(args, id)
	}

	query := `
		UPDATE transactions
		SET synced_at = ?
		WHERE id IN (` + string(placeholders) + `) AND synced_at IS NULL
	`
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("mark synced: %w: %w", ErrUnavailable, err)
	}

	updated, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark synced: rows affected: %w: %w", ErrUnavailable, err)
	}

	return updated, nil
}

// WeeklyTotal returns the sum of amounts recorded since the most recent
// Monday 00:00 local time. The sum runs inside SQLite; rows are not
// loaded.
func (s *Store) WeeklyTotal(ctx context.Context) (ledger.Amount, error) {
	since := weekStart(s.now()).UTC().Format(timeFormat)

	var total int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE created_at >= ?
	`, since).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("weekly total: %w: %w", ErrUnavailable, err)
	}

	return ledger.Amount(total), nil
}

// weekStart returns the most recent Monday 00:00 in now's location
// (ISO week start).
func weekStart(now time.Time) time.Time {
	back := (int(now.Weekday()) + 6) % 7
	y, m, d := now.AddDate(0, 0, -back).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// scanRecord scans a row into a ledger.Record.
func scanRecord(rows *sql.Rows) (ledger.Record, error) {
	var rec ledger.Record
	var amount int64
	var note, syncedAt sql.NullString

	if err := rows.Scan(
		&rec.ID, &rec.CreatedAt, &amount, &rec.Category, &rec.Author, &note, &syncedAt,
	); err != nil {
		return ledger.Record{}, fmt.Errorf("scan transaction: %w", err)
	}

	rec.Amount = ledger.Amount(amount)
	if note.Valid {
		rec.Note = note.String
	}
	if syncedAt.Valid {
		rec.SyncedAt = &syncedAt.String
	}

	return rec, nil
}

// nullable maps an empty note to NULL.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
