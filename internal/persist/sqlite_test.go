package persist

import (
	"context"
	"path/filepath"
	"testing"

	"moneta/internal/core"
	"moneta/internal/ledger"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLiteStore(filepath.Join(t.TempDir(), "moneta.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	l := ledger.New()
	l.AddCategory(core.Category{ID: "food", Type: core.Expense, Name: "Food"})
	l.AddAccount(core.Account{ID: "cash", Name: "Cash"})
	l.UpsertRecord(core.Record{ID: "r1", Date: core.NewDate(2024, 1, 15), Type: core.Expense, CategoryID: "food", AccountID: "cash", Amount: core.Money{Cents: 15000}, Note: "Lunch"})
	l.UpsertBudget("food", core.Money{Cents: 50000})

	if err := st.Save(ctx, "u1", l.Snapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	back, err := st.Load(ctx, "u1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(back.Records) != 1 || len(back.Categories) != 1 || len(back.Budgets) != 1 {
		t.Fatalf("snapshot lost in round trip: %+v", back)
	}
	if back.Records[0].Note != "Lunch" {
		t.Fatalf("record fields lost: %+v", back.Records[0])
	}
}

func TestSQLiteStoreUnknownUserLoadsEmpty(t *testing.T) {
	st := newTestSQLite(t)
	snap, err := st.Load(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Records) != 0 {
		t.Fatalf("expected empty snapshot")
	}
}

func TestSQLiteStoreUpsertRow(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	l := ledger.New()
	l.AddAccount(core.Account{ID: "cash", Name: "Cash"})
	if err := st.Save(ctx, "u1", l.Snapshot()); err != nil {
		t.Fatalf("first save: %v", err)
	}
	l.AddAccount(core.Account{ID: "bank", Name: "Bank"})
	if err := st.Save(ctx, "u1", l.Snapshot()); err != nil {
		t.Fatalf("second save: %v", err)
	}
	back, err := st.Load(ctx, "u1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(back.Accounts) != 2 {
		t.Fatalf("expected the latest snapshot, got %d accounts", len(back.Accounts))
	}
}
