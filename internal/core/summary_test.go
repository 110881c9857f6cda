package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func tx(id int64, typ TypeID, value string, date Date) Transaction {
	return Transaction{
		ID:          id,
		Value:       decimal.RequireFromString(value),
		TypeID:      typ,
		Description: "tx",
		Date:        date,
		Status:      true,
	}
}

func TestCalculateDashboard(t *testing.T) {
	cases := []struct {
		name string
		txs  []Transaction
		want Dashboard
	}{
		{
			name: "empty",
			want: Dashboard{Balance: "0.00", Income: "0.00", Expenses: "0.00", Investments: "0.00"},
		},
		{
			name: "mixed",
			txs: []Transaction{
				tx(1, Income, "100", Date{}),
				tx(2, Expense, "30", Date{}),
				tx(3, Investment, "20", Date{}),
			},
			want: Dashboard{Balance: "50.00", Income: "100.00", Expenses: "30.00", Investments: "20.00"},
		},
		{
			name: "negative balance and unknown type",
			txs: []Transaction{
				tx(1, Income, "10.10", Date{}),
				tx(2, Expense, "20.20", Date{}),
				tx(3, TypeID(42), "1000", Date{}),
			},
			want: Dashboard{Balance: "-10.10", Income: "10.10", Expenses: "20.20", Investments: "0.00"},
		},
		{
			name: "cents do not drift",
			txs: []Transaction{
				tx(1, Income, "0.1", Date{}),
				tx(2, Income, "0.2", Date{}),
			},
			want: Dashboard{Balance: "0.30", Income: "0.30", Expenses: "0.00", Investments: "0.00"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CalculateDashboard(tc.txs); got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestSumByTypeIgnoresStatus(t *testing.T) {
	inactive := tx(1, Expense, "5", Date{})
	inactive.Status = false
	totals := SumByType([]Transaction{inactive})
	if !totals.Expenses.Equal(decimal.NewFromInt(5)) || totals.Count != 1 {
		t.Fatalf("unexpected totals %+v", totals)
	}
}

func TestRecent(t *testing.T) {
	txs := make([]Transaction, 8)
	for i := range txs {
		txs[i] = tx(int64(i+1), Income, "1", Date{})
	}
	got := Recent(txs, 5)
	if len(got) != 5 || got[0].ID != 1 || got[4].ID != 5 {
		t.Fatalf("unexpected recent %+v", got)
	}
	got[0].ID = 99
	if txs[0].ID != 1 {
		t.Fatalf("Recent must copy")
	}
	if len(Recent(txs[:2], 5)) != 2 {
		t.Fatalf("short list should be returned whole")
	}
	if Recent(txs, 0) != nil {
		t.Fatalf("n=0 should return nil")
	}
}
