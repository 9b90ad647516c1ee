package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

type (
	// Summary holds the derived totals for a transaction subset. It is
	// always recomputed from the records, never cached.
	Summary struct {
		TotalIncome  Money
		TotalExpense Money
		NetBalance   Money
		Count        int
	}

	// CategoryTotal is one group of a per-category breakdown. Percent is
	// the group's share of its entry type's total, with two fractional
	// digits; it is zero when the type total is zero.
	CategoryTotal struct {
		CategoryID int64
		Type       EntryType
		Total      Money
		Count      int
		Percent    decimal.Decimal
	}

	// MonthTotal is one group of a per-month breakdown.
	MonthTotal struct {
		Year    int
		Month   int // 1-12
		Income  Money
		Expense Money
		Net     Money
		Count   int
	}

	// BalancePoint pairs a transaction with the net balance of everything
	// up to and including it in chronological order.
	BalancePoint struct {
		Transaction Transaction
		Balance     Money
	}
)

// Summarize computes income, expense, net balance and count over txs.
// Identical sets produce identical summaries regardless of input order:
// the sums are plain integer cents, so no rounding drift can occur.
func Summarize(txs []Transaction) Summary {
	s := Summary{Count: len(txs)}
	for _, tx := range txs {
		switch tx.Type {
		case Income:
			s.TotalIncome = s.TotalIncome.Add(tx.Amount)
		case Expense:
			s.TotalExpense = s.TotalExpense.Add(tx.Amount)
		}
	}
	s.NetBalance = s.TotalIncome.Sub(s.TotalExpense)
	return s
}

// BreakdownByCategory groups txs by category, reporting each group's summed
// amount, count, and share of its type's total. Groups are ordered by total
// descending with category id ascending as the tie-break.
func BreakdownByCategory(txs []Transaction) []CategoryTotal {
	sums := Summarize(txs)
	groups := make(map[int64]*CategoryTotal)
	for _, tx := range txs {
		g, ok := groups[tx.CategoryID]
		if !ok {
			g = &CategoryTotal{CategoryID: tx.CategoryID, Type: tx.Type}
			groups[tx.CategoryID] = g
		}
		g.Total = g.Total.Add(tx.Amount)
		g.Count++
	}

	out := make([]CategoryTotal, 0, len(groups))
	for _, g := range groups {
		typeTotal := sums.TotalIncome
		if g.Type == Expense {
			typeTotal = sums.TotalExpense
		}
		if typeTotal.Cents > 0 {
			g.Percent = decimal.NewFromInt(g.Total.Cents).
				Div(decimal.NewFromInt(typeTotal.Cents)).
				Mul(decimal.NewFromInt(100)).
				Round(2)
		}
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total.Cents != out[j].Total.Cents {
			return out[i].Total.Cents > out[j].Total.Cents
		}
		return out[i].CategoryID < out[j].CategoryID
	})
	return out
}

// BreakdownByMonth groups txs by calendar month, ascending.
func BreakdownByMonth(txs []Transaction) []MonthTotal {
	type key struct {
		year  int
		month int
	}
	groups := make(map[key]*MonthTotal)
	for _, tx := range txs {
		k := key{year: tx.Date.Year(), month: int(tx.Date.Month())}
		g, ok := groups[k]
		if !ok {
			g = &MonthTotal{Year: k.year, Month: k.month}
			groups[k] = g
		}
		switch tx.Type {
		case Income:
			g.Income = g.Income.Add(tx.Amount)
		case Expense:
			g.Expense = g.Expense.Add(tx.Amount)
		}
		g.Count++
	}

	out := make([]MonthTotal, 0, len(groups))
	for _, g := range groups {
		g.Net = g.Income.Sub(g.Expense)
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

// RunningBalances returns txs in chronological order, each paired with the
// net balance of all transactions at or before its rank. The balance is
// derived on every call; it is never persisted.
func RunningBalances(txs []Transaction) []BalancePoint {
	ordered := make([]Transaction, len(txs))
	copy(ordered, txs)
	SortChronological(ordered)

	out := make([]BalancePoint, len(ordered))
	var balance Money
	for i, tx := range ordered {
		balance = balance.Add(tx.Signed())
		out[i] = BalancePoint{Transaction: tx, Balance: balance}
	}
	return out
}
