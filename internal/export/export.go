// Package export renders a ledger for the outside world: a tabular view for
// spreadsheets and CSV downloads, and a JSON backup that the import and
// restore paths accept back.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"moneta/internal/ledger"
)

// Header is the first row of every tabular export.
var Header = []string{"Date", "Type", "Category", "Account", "Amount", "Note"}

// Rows flattens the ledger's records into display rows, one per record, in
// canonical order. Category and account ids are resolved to names with the
// usual fallbacks for dangling references.
func Rows(st *ledger.Store) [][]string {
	records := st.Records()
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Date.ISO(),
			string(r.Type),
			st.CategoryName(r.CategoryID),
			st.AccountName(r.AccountID),
			r.Amount.Decimal(),
			r.Note,
		})
	}
	return rows
}

// CSV renders the ledger's records as a CSV document with a header row.
func CSV(st *ledger.Store) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range Rows(st) {
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// Backup encodes the full ledger as a JSON snapshot. The result round-trips
// through both restore and import.
func Backup(st *ledger.Store) ([]byte, error) {
	return st.Snapshot().Encode()
}
