package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-15")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.Year() != 2024 || int(d.Month()) != 1 || d.Day() != 15 {
		t.Fatalf("unexpected date %v", d)
	}
	if _, err := ParseDate("15/01/2024"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := ParseDate(""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for empty, got %v", err)
	}
}

func TestRecordValidate(t *testing.T) {
	good := Record{
		ID:         "r1",
		Date:       NewDate(2024, 1, 15),
		Type:       Expense,
		CategoryID: "food",
		AccountID:  "cash",
		Amount:     Money{Cents: 15000},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		mut  func(Record) Record
		want error
	}{
		{"zero date", func(r Record) Record { r.Date = Date{}; return r }, ErrMissingDate},
		{"bad type", func(r Record) Record { r.Type = "transfer"; return r }, ErrInvalidType},
		{"negative amount", func(r Record) Record { r.Amount.Cents = -1; return r }, ErrInvalidAmount},
		{"no category", func(r Record) Record { r.CategoryID = " "; return r }, ErrMissingCategory},
		{"no account", func(r Record) Record { r.AccountID = ""; return r }, ErrMissingAccount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.mut(good).Validate()
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("%v should be a validation error", err)
			}
		})
	}
}

func TestCategoryValidate(t *testing.T) {
	if err := (Category{Name: "Food", Type: Expense}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Category{Name: "", Type: Expense}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected empty name error")
	}
	if err := (Category{Name: "Food", Type: "saving"}).Validate(); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected invalid type error")
	}
}

func TestCanonicalLess(t *testing.T) {
	a := Record{ID: "a", Date: NewDate(2024, 1, 1)}
	b := Record{ID: "b", Date: NewDate(2024, 1, 1)}
	c := Record{ID: "a", Date: NewDate(2024, 1, 2)}
	if !CanonicalLess(a, b) || CanonicalLess(b, a) {
		t.Fatalf("same-day ties must break by id")
	}
	if !CanonicalLess(b, c) {
		t.Fatalf("earlier date must sort first regardless of id")
	}
}

func TestRecordJSONRoundTrip(t *testing.T) {
	r := Record{
		ID:         "r1",
		Date:       NewDate(2024, 2, 1),
		Type:       Income,
		CategoryID: "salary",
		AccountID:  "bank",
		Amount:     Money{Cents: 123450},
		Note:       "payday",
	}
	raw, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Record
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != r {
		t.Fatalf("round trip mismatch: %+v vs %+v", back, r)
	}
}
