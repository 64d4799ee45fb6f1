package outbox

import (
	"log/slog"
	"time"

	"github.com/roach88/spendlog/internal/ledger"
)

// sheetTimeFormat is how timestamps appear in the spreadsheet.
const sheetTimeFormat = "2006-01-02 15:04:05"

// buildBatch maps unsynced records to sheet rows and collects the ids
// actually included. Amounts leave minor units only here, at the sink
// boundary.
//
// A record whose stored timestamp does not parse is logged and left out
// of the batch: it stays unsynced for manual follow-up instead of being
// silently marked delivered or poisoning the whole push.
func buildBatch(records []ledger.Record) (rows [][]any, ids []int64) {
	for _, rec := range records {
		ts, err := time.Parse(time.RFC3339, rec.CreatedAt)
		if err != nil {
			slog.Warn("skipping malformed record",
				"id", rec.ID,
				"created_at", rec.CreatedAt,
				"error", err,
			)
			continue
		}

		rows = append(rows, []any{
			ts.Format(sheetTimeFormat),
			rec.Category,
			rec.Amount.Major(),
			rec.Note,
			rec.Author,
		})
		ids = append(ids, rec.ID)
	}

	return rows, ids
}
