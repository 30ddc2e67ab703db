package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"moneta/internal/ledger"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// SheetsMirror replaces a sheet's contents with the tabular export so a
// spreadsheet always shows the latest ledger state.
type SheetsMirror struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// NewSheetsMirror builds a mirror from service account credentials.
func NewSheetsMirror(ctx context.Context, spreadsheetID, sheetName, credentialsFile string) (*SheetsMirror, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if sheetName = strings.TrimSpace(sheetName); sheetName == "" {
		sheetName = "Ledger"
	}

	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &SheetsMirror{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// Mirror clears the sheet and writes the header plus one row per record.
func (m *SheetsMirror) Mirror(ctx context.Context, st *ledger.Store) error {
	clearRange := fmt.Sprintf("%s!A:F", m.sheetName)
	if _, err := m.svc.Spreadsheets.Values.Clear(m.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet: %w", err)
	}

	values := [][]interface{}{toInterfaceRow(Header)}
	for _, row := range Rows(st) {
		values = append(values, toInterfaceRow(row))
	}

	writeRange := fmt.Sprintf("%s!A1", m.sheetName)
	_, err := m.svc.Spreadsheets.Values.Update(m.spreadsheetID, writeRange, &gsheet.ValueRange{
		Values: values,
	}).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write sheet: %w", err)
	}

	slog.InfoContext(ctx, "Mirrored ledger to Google Sheets",
		"spreadsheet_id", m.spreadsheetID,
		"sheet", m.sheetName,
		"rows", len(values)-1)

	return nil
}

func toInterfaceRow(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}
