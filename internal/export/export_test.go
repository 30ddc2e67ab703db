package export

import (
	"strings"
	"testing"

	"moneta/internal/core"
	"moneta/internal/ledger"
)

func sampleLedger(t *testing.T) *ledger.Store {
	t.Helper()
	st := ledger.New()
	st.AddCategory(core.Category{ID: "food", Type: core.Expense, Name: "Food"})
	st.AddAccount(core.Account{ID: "cash", Name: "Cash"})
	st.UpsertRecord(core.Record{ID: "b", Date: core.NewDate(2024, 2, 1), Type: core.Expense, CategoryID: "food", AccountID: "cash", Amount: core.Money{Cents: 6000}, Note: "Groceries"})
	st.UpsertRecord(core.Record{ID: "a", Date: core.NewDate(2024, 1, 15), Type: core.Expense, CategoryID: "food", AccountID: "cash", Amount: core.Money{Cents: 15050}, Note: "Lunch, out"})
	return st
}

func TestRowsCanonicalOrderAndResolution(t *testing.T) {
	rows := Rows(sampleLedger(t))
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	first := rows[0]
	want := []string{"2024-01-15", "expense", "Food", "Cash", "150.50", "Lunch, out"}
	for i := range want {
		if first[i] != want[i] {
			t.Fatalf("column %d: expected %q, got %q", i, want[i], first[i])
		}
	}
	if rows[1][0] != "2024-02-01" {
		t.Fatalf("rows must come out date ascending")
	}
}

func TestRowsDanglingReferences(t *testing.T) {
	st := ledger.New()
	st.MergeImport([]core.Record{{ID: "x", Date: core.NewDate(2024, 1, 1), Type: core.Expense, CategoryID: "ghost", AccountID: "ghost", Amount: core.Money{Cents: 100}}})
	rows := Rows(st)
	if rows[0][2] != "Other" || rows[0][3] != "Account" {
		t.Fatalf("expected fallback names, got %v", rows[0])
	}
}

func TestCSVQuotesCommas(t *testing.T) {
	raw, err := CSV(sampleLedger(t))
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	out := string(raw)
	if !strings.HasPrefix(out, "Date,Type,Category,Account,Amount,Note\n") {
		t.Fatalf("missing header: %q", out)
	}
	if !strings.Contains(out, `"Lunch, out"`) {
		t.Fatalf("note with comma must be quoted: %q", out)
	}
}

func TestBackupRoundTripsThroughImport(t *testing.T) {
	raw, err := Backup(sampleLedger(t))
	if err != nil {
		t.Fatalf("backup: %v", err)
	}
	doc, err := ledger.ParseImportDocument(raw)
	if err != nil {
		t.Fatalf("backup must parse as an import document: %v", err)
	}
	if len(doc.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(doc.Records))
	}
	snap, err := ledger.DecodeSnapshot(raw)
	if err != nil {
		t.Fatalf("backup must parse as a snapshot: %v", err)
	}
	if len(snap.Categories) != 1 || len(snap.Accounts) != 1 {
		t.Fatalf("backup lost catalog collections")
	}
}
