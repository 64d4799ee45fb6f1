package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/spendlog/internal/ledger"
	"github.com/roach88/spendlog/internal/testutil"
)

func openTestStore(t *testing.T) (*Store, *testutil.Clock) {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	// Wednesday 12:00 UTC, a known point mid-week.
	clock := testutil.NewClock(time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC))
	s.now = clock.Now
	return s, clock
}

func draft(amount ledger.Amount, category string) ledger.Draft {
	return ledger.Draft{Amount: amount, Category: category, Author: "alice"}
}

func TestAppend_AssignsMonotonicIDs(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	id1, err := s.Append(ctx, draft(100, "Groceries"))
	require.NoError(t, err)
	id2, err := s.Append(ctx, draft(200, "Transport"))
	require.NoError(t, err)

	assert.Greater(t, id2, id1)
}

func TestAppend_StoresFields(t *testing.T) {
	s, clock := openTestStore(t)
	ctx := context.Background()

	_, err := s.Append(ctx, ledger.Draft{
		Amount:   1250,
		Category: "Cafe",
		Note:     "flat white",
		Author:   "bob",
	})
	require.NoError(t, err)

	records, err := s.Unsynced(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, ledger.Amount(1250), rec.Amount)
	assert.Equal(t, "Cafe", rec.Category)
	assert.Equal(t, "flat white", rec.Note)
	assert.Equal(t, "bob", rec.Author)
	assert.Equal(t, clock.Now().UTC().Format(timeFormat), rec.CreatedAt)
	assert.Nil(t, rec.SyncedAt)
}

func TestAppend_EmptyNoteStoredAsNull(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	_, err := s.Append(ctx, draft(100, "Other"))
	require.NoError(t, err)

	var note any
	err = s.db.QueryRow("SELECT note FROM transactions").Scan(&note)
	require.NoError(t, err)
	assert.Nil(t, note)
}

func TestUnsynced_InsertionOrder(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	for _, c := range []string{"Groceries", "Delivery", "Cafe"} {
		_, err := s.Append(ctx, draft(100, c))
		require.NoError(t, err)
	}

	records, err := s.Unsynced(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "Groceries", records[0].Category)
	assert.Equal(t, "Delivery", records[1].Category)
	assert.Equal(t, "Cafe", records[2].Category)
}

func TestUnsynced_EmptyStoreReturnsEmptySlice(t *testing.T) {
	s, _ := openTestStore(t)

	records, err := s.Unsynced(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestMarkSynced_OnlyGivenIDs(t *testing.T) {
	s, clock := openTestStore(t)
	ctx := context.Background()

	id1, err := s.Append(ctx, draft(100, "Groceries"))
	require.NoError(t, err)
	id2, err := s.Append(ctx, draft(200, "Cafe"))
	require.NoError(t, err)
	id3, err := s.Append(ctx, draft(300, "Transport"))
	require.NoError(t, err)

	updated, err := s.MarkSynced(ctx, []int64{id1, id2}, clock.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	records, err := s.Unsynced(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, id3, records[0].ID)
}

// A row appended after the worker's read must not be stamped by that
// push's MarkSynced call.
func TestMarkSynced_ConcurrentAppendUntouched(t *testing.T) {
	s, clock := openTestStore(t)
	ctx := context.Background()

	id1, err := s.Append(ctx, draft(100, "Groceries"))
	require.NoError(t, err)
	id2, err := s.Append(ctx, draft(200, "Cafe"))
	require.NoError(t, err)

	// Worker reads the batch...
	batch, err := s.Unsynced(ctx)
	require.NoError(t, err)
	require.Len(t, batch, 2)

	// ...a new row lands while the push is in flight...
	id3, err := s.Append(ctx, draft(300, "Transport"))
	require.NoError(t, err)

	// ...and the push marks exactly what it read.
	ids := []int64{batch[0].ID, batch[1].ID}
	updated, err := s.MarkSynced(ctx, ids, clock.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)
	assert.ElementsMatch(t, []int64{id1, id2}, ids)

	records, err := s.Unsynced(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, id3, records[0].ID)
}

func TestMarkSynced_Idempotent(t *testing.T) {
	s, clock := openTestStore(t)
	ctx := context.Background()

	id1, err := s.Append(ctx, draft(100, "Groceries"))
	require.NoError(t, err)
	id2, err := s.Append(ctx, draft(200, "Cafe"))
	require.NoError(t, err)

	updated, err := s.MarkSynced(ctx, []int64{id1}, clock.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	// Overlapping set: only the previously-unsynced row counts.
	updated, err = s.MarkSynced(ctx, []int64{id1, id2}, clock.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	// Fully-synced set: zero rows.
	updated, err = s.MarkSynced(ctx, []int64{id1, id2}, clock.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated)
}

func TestMarkSynced_EmptyIDsNoOp(t *testing.T) {
	s, clock := openTestStore(t)

	updated, err := s.MarkSynced(context.Background(), nil, clock.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated)
}

func TestWeeklyTotal_SinceMonday(t *testing.T) {
	s, clock := openTestStore(t)
	ctx := context.Background()

	// Sunday of the previous week: must not count.
	clock.Advance(-2*24*time.Hour - 13*time.Hour) // Sun 2024-03-03 23:00 UTC
	_, err := s.Append(ctx, draft(9999, "Other"))
	require.NoError(t, err)

	// Monday morning and Wednesday of the current week: must count.
	clock.Advance(10 * time.Hour) // Mon 2024-03-04 09:00 UTC
	_, err = s.Append(ctx, draft(500, "Groceries"))
	require.NoError(t, err)

	clock.Advance(2*24*time.Hour + 3*time.Hour) // Wed 2024-03-06 12:00 UTC
	_, err = s.Append(ctx, draft(250, "Cafe"))
	require.NoError(t, err)

	total, err := s.WeeklyTotal(ctx)
	require.NoError(t, err)
	assert.Equal(t, ledger.Amount(750), total)
}

func TestWeeklyTotal_EmptyStore(t *testing.T) {
	s, _ := openTestStore(t)

	total, err := s.WeeklyTotal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ledger.Amount(0), total)
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			"wednesday",
			time.Date(2024, 3, 6, 12, 30, 0, 0, time.UTC),
			time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		},
		{
			"monday is its own week start",
			time.Date(2024, 3, 4, 0, 0, 1, 0, time.UTC),
			time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		},
		{
			"sunday belongs to the week started six days earlier",
			time.Date(2024, 3, 10, 23, 59, 0, 0, time.UTC),
			time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, weekStart(tt.now))
		})
	}
}
