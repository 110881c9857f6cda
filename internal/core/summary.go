package core

import "github.com/shopspring/decimal"

// Dashboard holds the four dashboard totals as two-decimal strings.
type Dashboard struct {
	Balance     string `json:"balance" yaml:"balance"`
	Income      string `json:"income" yaml:"income"`
	Expenses    string `json:"expenses" yaml:"expenses"`
	Investments string `json:"investments" yaml:"investments"`
}

// Totals is the per-type sum of a list of transactions.
type Totals struct {
	Income      decimal.Decimal
	Expenses    decimal.Decimal
	Investments decimal.Decimal
	Count       int
}

// Balance is income minus expenses minus investments.
func (t Totals) Balance() decimal.Decimal {
	return t.Income.Sub(t.Expenses).Sub(t.Investments)
}

// Dashboard renders t with two fraction digits.
func (t Totals) Dashboard() Dashboard {
	return Dashboard{
		Balance:     t.Balance().StringFixed(2),
		Income:      t.Income.StringFixed(2),
		Expenses:    t.Expenses.StringFixed(2),
		Investments: t.Investments.StringFixed(2),
	}
}

// SumByType sums values grouped by type. Transactions with an unknown type
// are counted but contribute to no total. Status is not considered.
func SumByType(txs []Transaction) Totals {
	t := Totals{
		Income:      decimal.Zero,
		Expenses:    decimal.Zero,
		Investments: decimal.Zero,
		Count:       len(txs),
	}
	for _, tx := range txs {
		switch tx.TypeID {
		case Income:
			t.Income = t.Income.Add(tx.Value)
		case Expense:
			t.Expenses = t.Expenses.Add(tx.Value)
		case Investment:
			t.Investments = t.Investments.Add(tx.Value)
		}
	}
	return t
}

// CalculateDashboard reduces txs into the dashboard totals.
func CalculateDashboard(txs []Transaction) Dashboard {
	return SumByType(txs).Dashboard()
}

// Recent returns at most n transactions in server order.
func Recent(txs []Transaction, n int) []Transaction {
	if n <= 0 {
		return nil
	}
	if len(txs) < n {
		n = len(txs)
	}
	out := make([]Transaction, n)
	copy(out, txs[:n])
	return out
}
