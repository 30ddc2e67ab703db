// Package ledger owns one user's in-memory collections of records,
// categories, accounts and budgets, and enforces the referential invariants
// between them. Records are kept in canonical order (date ascending, id
// tiebreak) at all times so persistence and export never need to re-sort.
package ledger

import (
	"fmt"
	"sort"
	"strings"

	"moneta/internal/core"
)

// Store is a single user's ledger. It is not safe for concurrent use; the
// service layer serializes access per user.
type Store struct {
	records    []core.Record
	categories []core.Category
	accounts   []core.Account
	budgets    []core.Budget
}

// New creates an empty ledger.
func New() *Store {
	return &Store{}
}

// FromSnapshot builds a ledger from a decoded snapshot and restores canonical
// record order, which older persisted data may lack.
func FromSnapshot(s Snapshot) *Store {
	st := &Store{
		records:    append([]core.Record(nil), s.Records...),
		categories: append([]core.Category(nil), s.Categories...),
		accounts:   append([]core.Account(nil), s.Accounts...),
		budgets:    append([]core.Budget(nil), s.Budgets...),
	}
	st.sortRecords()
	return st
}

// Snapshot returns a deep-enough copy of the ledger for persistence. Entity
// structs are value types, so copying the slices is sufficient.
func (st *Store) Snapshot() Snapshot {
	return Snapshot{
		Records:    append([]core.Record(nil), st.records...),
		Categories: append([]core.Category(nil), st.categories...),
		Accounts:   append([]core.Account(nil), st.accounts...),
		Budgets:    append([]core.Budget(nil), st.budgets...),
	}
}

func (st *Store) sortRecords() {
	sort.SliceStable(st.records, func(i, j int) bool {
		return core.CanonicalLess(st.records[i], st.records[j])
	})
}

// Records returns all records in canonical order.
func (st *Store) Records() []core.Record {
	return append([]core.Record(nil), st.records...)
}

func (st *Store) Categories() []core.Category {
	return append([]core.Category(nil), st.categories...)
}

func (st *Store) Accounts() []core.Account {
	return append([]core.Account(nil), st.accounts...)
}

func (st *Store) Budgets() []core.Budget {
	return append([]core.Budget(nil), st.budgets...)
}

// Category looks up a category by id.
func (st *Store) Category(id string) (core.Category, bool) {
	for _, c := range st.categories {
		if c.ID == id {
			return c, true
		}
	}
	return core.Category{}, false
}

// Account looks up an account by id.
func (st *Store) Account(id string) (core.Account, bool) {
	for _, a := range st.accounts {
		if a.ID == id {
			return a, true
		}
	}
	return core.Account{}, false
}

// CategoryName resolves a category id for display, falling back to "Other"
// for dangling references the way the analytics views expect.
func (st *Store) CategoryName(id string) string {
	if c, ok := st.Category(id); ok {
		return c.Name
	}
	return "Other"
}

// AccountName resolves an account id for display.
func (st *Store) AccountName(id string) string {
	if a, ok := st.Account(id); ok {
		return a.Name
	}
	return "Account"
}

// UpsertRecord validates and inserts or replaces a record by id, assigning a
// fresh id when none is given. The collection is re-sorted afterwards, so
// calling twice with the same record is harmless.
func (st *Store) UpsertRecord(r core.Record) (core.Record, error) {
	if r.ID == "" {
		r.ID = core.NewID()
	}
	if err := r.Validate(); err != nil {
		return core.Record{}, err
	}
	if _, ok := st.Category(r.CategoryID); !ok {
		return core.Record{}, fmt.Errorf("%w: unknown category %q", core.ErrValidation, r.CategoryID)
	}
	if _, ok := st.Account(r.AccountID); !ok {
		return core.Record{}, fmt.Errorf("%w: unknown account %q", core.ErrValidation, r.AccountID)
	}
	replaced := false
	for i := range st.records {
		if st.records[i].ID == r.ID {
			st.records[i] = r
			replaced = true
			break
		}
	}
	if !replaced {
		st.records = append(st.records, r)
	}
	st.sortRecords()
	return r, nil
}

// DeleteRecord removes a record. Unknown ids are a no-op so deletion stays
// idempotent.
func (st *Store) DeleteRecord(id string) {
	for i := range st.records {
		if st.records[i].ID == id {
			st.records = append(st.records[:i], st.records[i+1:]...)
			return
		}
	}
}

// AddCategory validates and appends a category, assigning an id when missing.
func (st *Store) AddCategory(c core.Category) (core.Category, error) {
	if c.ID == "" {
		c.ID = core.NewID()
	}
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	st.categories = append(st.categories, c)
	return c, nil
}

// DeleteCategory removes a category unless any record still references it.
// Budgets for the category are dropped with it.
func (st *Store) DeleteCategory(id string) error {
	for _, r := range st.records {
		if r.CategoryID == id {
			return fmt.Errorf("%w: category %q has linked records", core.ErrReferentialIntegrity, id)
		}
	}
	for i := range st.categories {
		if st.categories[i].ID == id {
			st.categories = append(st.categories[:i], st.categories[i+1:]...)
			st.dropBudgetsFor(id)
			return nil
		}
	}
	return nil
}

func (st *Store) dropBudgetsFor(categoryID string) {
	kept := st.budgets[:0]
	for _, b := range st.budgets {
		if b.CategoryID != categoryID {
			kept = append(kept, b)
		}
	}
	st.budgets = kept
}

// AddAccount validates and appends an account, assigning an id when missing.
func (st *Store) AddAccount(a core.Account) (core.Account, error) {
	if a.ID == "" {
		a.ID = core.NewID()
	}
	a.Name = strings.TrimSpace(a.Name)
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	st.accounts = append(st.accounts, a)
	return a, nil
}

// DeleteAccount removes an account unless any record still references it.
func (st *Store) DeleteAccount(id string) error {
	for _, r := range st.records {
		if r.AccountID == id {
			return fmt.Errorf("%w: account %q has linked records", core.ErrReferentialIntegrity, id)
		}
	}
	for i := range st.accounts {
		if st.accounts[i].ID == id {
			st.accounts = append(st.accounts[:i], st.accounts[i+1:]...)
			return nil
		}
	}
	return nil
}

// UpsertBudget sets the spending limit for a category. An existing budget for
// the category is updated in place so there is never more than one per
// category.
func (st *Store) UpsertBudget(categoryID string, amount core.Money) (core.Budget, error) {
	if amount.Cents <= 0 {
		return core.Budget{}, core.ErrInvalidAmount
	}
	if _, ok := st.Category(categoryID); !ok {
		return core.Budget{}, fmt.Errorf("%w: unknown category %q", core.ErrValidation, categoryID)
	}
	for i := range st.budgets {
		if st.budgets[i].CategoryID == categoryID {
			st.budgets[i].Amount = amount
			return st.budgets[i], nil
		}
	}
	b := core.Budget{ID: core.NewID(), CategoryID: categoryID, Amount: amount}
	st.budgets = append(st.budgets, b)
	return b, nil
}

// RemoveBudget deletes a budget by id; unknown ids are a no-op.
func (st *Store) RemoveBudget(id string) {
	for i := range st.budgets {
		if st.budgets[i].ID == id {
			st.budgets = append(st.budgets[:i], st.budgets[i+1:]...)
			return
		}
	}
}

// BudgetFor returns the budget covering a category, if any.
func (st *Store) BudgetFor(categoryID string) (core.Budget, bool) {
	for _, b := range st.budgets {
		if b.CategoryID == categoryID {
			return b, true
		}
	}
	return core.Budget{}, false
}

// MergeImport adds the incoming records whose ids are not already present.
// Existing records win on conflict; nothing is validated beyond the id-based
// dedupe because imports may carry references resolved only for display.
// Returns the number of records actually added.
func (st *Store) MergeImport(incoming []core.Record) int {
	seen := make(map[string]struct{}, len(st.records))
	for _, r := range st.records {
		seen[r.ID] = struct{}{}
	}
	added := 0
	for _, r := range incoming {
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		st.records = append(st.records, r)
		added++
	}
	if added > 0 {
		st.sortRecords()
	}
	return added
}
