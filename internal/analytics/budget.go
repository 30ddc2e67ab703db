package analytics

import (
	"sort"

	"moneta/internal/core"
	"moneta/internal/ledger"
	"moneta/internal/period"
)

// BudgetStatus is one budget evaluated against the current period's spending.
type BudgetStatus struct {
	Budget             core.Budget   `json:"budget"`
	Category           core.Category `json:"category"`
	Spent              core.Money    `json:"spent"`
	UtilizationPercent int           `json:"utilizationPercent"`
}

// Utilization computes min(100, round(100 * spent / limit)). Store validation
// rejects non-positive limits, but malformed persisted data still evaluates
// to 0% rather than dividing by zero.
func Utilization(spent, limit core.Money) int {
	if limit.Cents <= 0 {
		return 0
	}
	if spent.Cents <= 0 {
		return 0
	}
	pct := (100*spent.Cents + limit.Cents/2) / limit.Cents
	if pct > 100 {
		return 100
	}
	return int(pct)
}

// EvaluateBudgets computes the spent amount and clamped utilization for every
// budget, counting only expense records inside the current period. Results
// are ordered by category name for stable rendering.
func EvaluateBudgets(st *ledger.Store, g period.Granularity, anchor core.Date) []BudgetStatus {
	start, end := period.Range(g, anchor)
	expenses := OfType(FilterPeriod(st.Records(), start, end), core.Expense)
	spent := GroupSum(expenses, func(r core.Record) string { return r.CategoryID })

	out := make([]BudgetStatus, 0, len(st.Budgets()))
	for _, b := range st.Budgets() {
		cat, _ := st.Category(b.CategoryID)
		used := spent[b.CategoryID]
		out = append(out, BudgetStatus{
			Budget:             b,
			Category:           cat,
			Spent:              used,
			UtilizationPercent: Utilization(used, b.Amount),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category.Name < out[j].Category.Name })
	return out
}
