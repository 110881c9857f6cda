package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func ids(txs []Transaction) []int64 {
	out := make([]int64, len(txs))
	for i, t := range txs {
		out[i] = t.ID
	}
	return out
}

func TestApplyFilter(t *testing.T) {
	salary := tx(1, Income, "5000", NewDate(2025, 3, 1))
	salary.Description = "Salário Março"
	pizza := tx(2, Expense, "45.90", NewDate(2025, 3, 10))
	pizza.Description = "Pizza"
	cdb := tx(3, Investment, "1000", NewDate(2025, 3, 5))
	cdb.Description = "Renda Fixa - CDB"
	broken := tx(4, Expense, "12", Date{})
	broken.Description = "sem data"
	all := []Transaction{salary, pizza, cdb, broken}

	cases := []struct {
		name   string
		filter Filter
		want   []int64
	}{
		{"all sorted by date desc", Filter{Type: FilterAll}, []int64{2, 3, 1, 4}},
		{"empty type means all", Filter{}, []int64{2, 3, 1, 4}},
		{"income", Filter{Type: FilterIncome}, []int64{1}},
		{"expense", Filter{Type: FilterExpense}, []int64{2, 4}},
		{"investment", Filter{Type: FilterInvestment}, []int64{3}},
		{"search description case-insensitive", Filter{Search: "  PIZZA "}, []int64{2}},
		{"search value", Filter{Search: "45.9"}, []int64{2}},
		{"search and type", Filter{Type: FilterIncome, Search: "pizza"}, []int64{}},
		{"no match", Filter{Search: "xyz"}, []int64{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ids(ApplyFilter(all, tc.filter))
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("ids mismatch (-want +got):\n%s", diff)
			}
		})
	}
	if all[0].ID != 1 {
		t.Fatalf("input slice reordered")
	}
}

func TestApplyFilterKeepsOrderOfEqualDates(t *testing.T) {
	day := NewDate(2025, 4, 1)
	all := []Transaction{
		tx(5, Expense, "10", day),
		tx(6, Income, "20", NewDate(2025, 4, 2)),
		tx(7, Expense, "30", day),
		tx(8, Investment, "40", day),
		tx(9, Expense, "50", day),
	}

	got := ids(ApplyFilter(all, Filter{Type: FilterAll}))
	if diff := cmp.Diff([]int64{6, 5, 7, 8, 9}, got); diff != "" {
		t.Fatalf("all (-want +got):\n%s", diff)
	}
	got = ids(ApplyFilter(all, Filter{Type: FilterExpense}))
	if diff := cmp.Diff([]int64{5, 7, 9}, got); diff != "" {
		t.Fatalf("expense (-want +got):\n%s", diff)
	}
}

func TestParseFilterType(t *testing.T) {
	for in, want := range map[string]FilterType{"": FilterAll, "ALL": FilterAll, "income": FilterIncome, " expense ": FilterExpense, "investment": FilterInvestment} {
		got, err := ParseFilterType(in)
		if err != nil || got != want {
			t.Fatalf("ParseFilterType(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFilterType("bogus"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestFilterActive(t *testing.T) {
	if (Filter{Type: FilterAll, Search: "  "}).Active() {
		t.Fatalf("blank filter should be inactive")
	}
	if !(Filter{Type: FilterExpense}).Active() || !(Filter{Search: "a"}).Active() {
		t.Fatalf("expected active")
	}
}
