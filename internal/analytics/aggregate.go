// Package analytics filters ledger records into a resolved period and
// computes the grouped sums behind the budget and analysis views. A single
// GroupSum combinator backs every grouping (category, account, calendar day)
// so expense, income and account totals share one set of semantics.
package analytics

import (
	"sort"
	"strings"

	"moneta/internal/core"
	"moneta/internal/ledger"
	"moneta/internal/period"
)

// DayTotal is one point of a daily trend series.
type DayTotal struct {
	Day   core.Date  `json:"day"`
	Total core.Money `json:"total"`
}

// CategoryTotal pairs a resolved category name with its period sum.
type CategoryTotal struct {
	Name  string     `json:"name"`
	Total core.Money `json:"total"`
}

// Analysis is the full set of aggregates for one resolved period.
type Analysis struct {
	ExpenseByCategory []CategoryTotal `json:"expenseByCategory"`
	IncomeByCategory  []CategoryTotal `json:"incomeByCategory"`
	ExpenseFlow       []DayTotal      `json:"expenseFlow"`
	IncomeFlow        []DayTotal      `json:"incomeFlow"`
	ByAccount         []CategoryTotal `json:"byAccount"`
}

// FilterPeriod returns the records falling inside [start, end). Record dates
// and bounds are whole days already, so the comparison needs no further
// normalization.
func FilterPeriod(records []core.Record, start, end core.Date) []core.Record {
	var out []core.Record
	for _, r := range records {
		if r.Date.Before(start.Time) || !r.Date.Before(end.Time) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// FilterSearch keeps records whose note, category name or account name
// contains the query, case-insensitively. An empty query keeps everything.
func FilterSearch(st *ledger.Store, records []core.Record, query string) []core.Record {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return records
	}
	var out []core.Record
	for _, r := range records {
		hay := strings.ToLower(r.Note + " " + st.CategoryName(r.CategoryID) + " " + st.AccountName(r.AccountID))
		if strings.Contains(hay, query) {
			out = append(out, r)
		}
	}
	return out
}

// InPeriod resolves the period for (granularity, anchor) and applies the
// optional search filter, the exact pipeline every view starts from.
func InPeriod(st *ledger.Store, g period.Granularity, anchor core.Date, search string) []core.Record {
	start, end := period.Range(g, anchor)
	return FilterSearch(st, FilterPeriod(st.Records(), start, end), search)
}

// OfType keeps only records of the given type.
func OfType(records []core.Record, t core.RecordType) []core.Record {
	var out []core.Record
	for _, r := range records {
		if r.Type == t {
			out = append(out, r)
		}
	}
	return out
}

// GroupSum totals record amounts by an arbitrary key.
func GroupSum(records []core.Record, key func(core.Record) string) map[string]core.Money {
	sums := make(map[string]core.Money)
	for _, r := range records {
		k := key(r)
		sums[k] = core.Money{Cents: sums[k].Cents + r.Amount.Cents}
	}
	return sums
}

// DailySeries groups records by calendar day and returns the totals in
// ascending day order. Days without activity do not appear; the charts plot
// only observed points.
func DailySeries(records []core.Record) []DayTotal {
	sums := GroupSum(records, func(r core.Record) string { return r.Date.ISO() })
	days := make([]string, 0, len(sums))
	for d := range sums {
		days = append(days, d)
	}
	sort.Strings(days)
	out := make([]DayTotal, 0, len(days))
	for _, d := range days {
		day, _ := core.ParseDate(d)
		out = append(out, DayTotal{Day: day, Total: sums[d]})
	}
	return out
}

// sortedTotals flattens a GroupSum result into name-sorted pairs for stable
// rendering and comparison.
func sortedTotals(sums map[string]core.Money) []CategoryTotal {
	names := make([]string, 0, len(sums))
	for n := range sums {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]CategoryTotal, 0, len(names))
	for _, n := range names {
		out = append(out, CategoryTotal{Name: n, Total: sums[n]})
	}
	return out
}

// Analyze computes every aggregate view for the period in one pass over the
// filtered records.
func Analyze(st *ledger.Store, g period.Granularity, anchor core.Date, search string) Analysis {
	inPeriod := InPeriod(st, g, anchor, search)
	expenses := OfType(inPeriod, core.Expense)
	incomes := OfType(inPeriod, core.Income)

	byCategory := func(r core.Record) string { return st.CategoryName(r.CategoryID) }
	byAccount := func(r core.Record) string { return st.AccountName(r.AccountID) }

	return Analysis{
		ExpenseByCategory: sortedTotals(GroupSum(expenses, byCategory)),
		IncomeByCategory:  sortedTotals(GroupSum(incomes, byCategory)),
		ExpenseFlow:       DailySeries(expenses),
		IncomeFlow:        DailySeries(incomes),
		ByAccount:         sortedTotals(GroupSum(inPeriod, byAccount)),
	}
}
