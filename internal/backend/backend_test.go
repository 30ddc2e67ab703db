package backend

import (
	"path/filepath"
	"testing"
)

func TestTypeIsValid(t *testing.T) {
	cases := []struct {
		typ  Type
		want bool
	}{
		{Memory, true},
		{SQLite, true},
		{Type("sheets"), false},
		{Type(""), false},
	}
	for _, tc := range cases {
		if got := tc.typ.IsValid(); got != tc.want {
			t.Fatalf("%q: expected %v, got %v", tc.typ, tc.want, got)
		}
	}
}

func TestOpenMemory(t *testing.T) {
	store, err := Open(Config{Type: Memory}, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()
}

func TestOpenSQLite(t *testing.T) {
	store, err := Open(Config{Type: SQLite, SQLiteDBPath: filepath.Join(t.TempDir(), "moneta.db")}, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()
}

func TestOpenRejectsUnknownType(t *testing.T) {
	if _, err := Open(Config{Type: Type("oracle")}, nil); err == nil {
		t.Fatalf("expected error for unknown backend type")
	}
}
