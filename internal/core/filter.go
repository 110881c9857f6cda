package core

import (
	"fmt"
	"sort"
	"strings"
)

const (
	FilterAll        FilterType = "all"
	FilterIncome     FilterType = "income"
	FilterExpense    FilterType = "expense"
	FilterInvestment FilterType = "investment"
)

// FilterType selects transactions by type on the list view.
type FilterType string

// Filter combines the type selector with the free-text search box.
type Filter struct {
	Type   FilterType
	Search string
}

// ParseFilterType maps a filter id to its FilterType. Empty means all.
func ParseFilterType(s string) (FilterType, error) {
	switch ft := FilterType(strings.ToLower(strings.TrimSpace(s))); ft {
	case "":
		return FilterAll, nil
	case FilterAll, FilterIncome, FilterExpense, FilterInvestment:
		return ft, nil
	default:
		return "", fmt.Errorf("unknown filter %q: must be one of all, income, expense, investment", s)
	}
}

// TypeID returns the transaction type selected by f; false for FilterAll.
func (f FilterType) TypeID() (TypeID, bool) {
	switch f {
	case FilterIncome:
		return Income, true
	case FilterExpense:
		return Expense, true
	case FilterInvestment:
		return Investment, true
	default:
		return 0, false
	}
}

// Label is the pt-BR name of the filter.
func (f FilterType) Label() string {
	switch f {
	case FilterIncome:
		return "Receitas"
	case FilterExpense:
		return "Despesas"
	case FilterInvestment:
		return "Investimentos"
	default:
		return "Todas"
	}
}

// Active reports whether f narrows the list at all.
func (f Filter) Active() bool {
	return (f.Type != "" && f.Type != FilterAll) || strings.TrimSpace(f.Search) != ""
}

// Match reports whether tx passes both the type and the search predicates.
//
// The description is compared case-insensitively against the trimmed
// query; the value text is compared against the query as typed.
func (f Filter) Match(tx Transaction) bool {
	if want, ok := f.Type.TypeID(); ok && tx.TypeID != want {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Search))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(tx.Description), q) ||
		strings.Contains(tx.ValueText(), f.Search) ||
		strings.Contains(tx.Value.String(), f.Search)
}

// ApplyFilter returns the transactions matching f, most recent first.
// txs is not modified.
func ApplyFilter(txs []Transaction, f Filter) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if f.Match(tx) {
			out = append(out, tx)
		}
	}
	SortByDateDesc(out)
	return out
}

// SortByDateDesc orders txs newest first, keeping the relative order of
// equal dates. Zero dates go last.
func SortByDateDesc(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		a, b := txs[i].Date, txs[j].Date
		if a.IsZero() || b.IsZero() {
			return !a.IsZero() && b.IsZero()
		}
		return a.After(b.Time)
	})
}
