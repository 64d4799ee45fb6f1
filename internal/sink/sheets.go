// Package sink adapts the Google Sheets append API as the remote
// target of the outbox. The worker fakes this interface in tests; this
// package stays a thin I/O adapter.
package sink

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"
)

// Sheets appends rows to one sheet of one spreadsheet.
type Sheets struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
}

// NewSheets builds a client authenticated as a service account whose
// key file lives at keyPath. Rows land on sheetName of spreadsheetID.
func NewSheets(ctx context.Context, keyPath, spreadsheetID, sheetName string) (*Sheets, error) {
	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("read service account key: %w", err)
	}

	cfg, err := google.JWTConfigFromJSON(key, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account key: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}

	return &Sheets{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// AppendRows appends the batch after the sheet's existing data, with
// USER_ENTERED parsing so amounts and dates land as values a human
// would have typed. Any failure is returned for the caller to retry.
func (s *Sheets) AppendRows(ctx context.Context, rows [][]any) error {
	vr := &sheets.ValueRange{
		MajorDimension: "ROWS",
		Values:         rows,
	}

	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, s.sheetName, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append rows to sheet: %w", err)
	}

	return nil
}
