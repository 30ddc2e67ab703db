package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Expense RecordType = "expense"
	Income  RecordType = "income"
)

type (
	// RecordType distinguishes money leaving the ledger from money entering it.
	RecordType string

	// Date is a calendar day. The wrapped time is always midnight UTC so that
	// comparisons happen at whole-day granularity.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Record is a single income or expense entry in a user's ledger.
	Record struct {
		ID         string     `json:"id"`
		Date       Date       `json:"date"`
		Type       RecordType `json:"type"`
		CategoryID string     `json:"categoryId"`
		AccountID  string     `json:"accountId"`
		Amount     Money      `json:"amount"`
		Note       string     `json:"note,omitempty"`
	}

	// Category labels records. Type is fixed at creation; changing it would
	// require migrating every record that references the category.
	Category struct {
		ID    string     `json:"id"`
		Type  RecordType `json:"type"`
		Name  string     `json:"name"`
		Color string     `json:"color,omitempty"`
		Icon  string     `json:"icon,omitempty"`
	}

	// Account is a money source/destination. Balance is display-only and is
	// not transactionally maintained.
	Account struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Color   string `json:"color,omitempty"`
		Icon    string `json:"icon,omitempty"`
		Balance Money  `json:"balance"`
	}

	// Budget is a per-category spending limit. At most one budget exists per
	// category; re-adding one overwrites the amount.
	Budget struct {
		ID         string `json:"id"`
		CategoryID string `json:"categoryId"`
		Amount     Money  `json:"amount"`
	}
)

// Error classes. Operation errors wrap one of these so callers can branch with
// errors.Is regardless of the specific failure message.
var (
	ErrValidation           = errors.New("validation error")
	ErrReferentialIntegrity = errors.New("referential integrity error")
	ErrImport               = errors.New("import error")
	ErrNotFound             = errors.New("not found")
)

var (
	ErrMissingDate     = fmt.Errorf("%w: missing or unparseable date", ErrValidation)
	ErrInvalidAmount   = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrInvalidType     = fmt.Errorf("%w: type must be expense or income", ErrValidation)
	ErrEmptyName       = fmt.Errorf("%w: empty name", ErrValidation)
	ErrMissingCategory = fmt.Errorf("%w: missing category reference", ErrValidation)
	ErrMissingAccount  = fmt.Errorf("%w: missing account reference", ErrValidation)
)

// ParseDate parses an ISO calendar day (2006-01-02).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrMissingDate
	}
	return Date{Time: t.UTC()}, nil
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an arbitrary instant to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ISO renders the date as 2006-01-02, the wire and export format.
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

// AddDays returns the date n calendar days later (earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// AddMonths returns the date n calendar months later using Go's normalizing
// month arithmetic: Jan 31 + 1 month lands in early March, it never clamps.
func (d Date) AddMonths(n int) Date {
	return Date{Time: d.Time.AddDate(0, n, 0)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrMissingDate
	}
	return nil
}

// MarshalJSON encodes the date as a bare ISO day string.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.ISO() + `"`), nil
}

// UnmarshalJSON accepts an ISO day string; empty stays the zero date so the
// caller's validation can surface the right error.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (t RecordType) Valid() bool {
	return t == Expense || t == Income
}

func (r Record) Validate() error {
	if err := r.Date.Validate(); err != nil {
		return err
	}
	if !r.Type.Valid() {
		return ErrInvalidType
	}
	if r.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(r.CategoryID) == "" {
		return ErrMissingCategory
	}
	if strings.TrimSpace(r.AccountID) == "" {
		return ErrMissingAccount
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !c.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// CanonicalLess is the ledger's persistence and export order: ascending by
// date, ties broken by id (lexicographic).
func CanonicalLess(a, b Record) bool {
	if !a.Date.Equal(b.Date.Time) {
		return a.Date.Before(b.Date.Time)
	}
	return a.ID < b.ID
}
