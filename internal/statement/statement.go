// Package statement lays trial-balance rows out as a profit and loss account
// and a balance sheet.
package statement

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tallymis/internal/balance"
	"github.com/cleared-dev/tallymis/internal/model"
)

// Line is one ledger on a statement. Amounts are positive on the side the
// section reports: income and liabilities are shown as positive credits.
type Line struct {
	Ledger string
	Group  string
	Amount decimal.Decimal
}

// Section contains the lines and total for one heading.
type Section struct {
	Label string
	Lines []Line
	Total decimal.Decimal
}

func (s *Section) add(r balance.Row, amount decimal.Decimal) {
	s.Lines = append(s.Lines, Line{Ledger: r.Ledger, Group: r.Group, Amount: amount})
	s.Total = s.Total.Add(amount)
}

// ProfitAndLoss is the trading and profit and loss account for a window.
type ProfitAndLoss struct {
	DirectIncome    Section
	DirectExpense   Section // includes purchases
	IndirectIncome  Section
	IndirectExpense Section
	GrossProfit     decimal.Decimal
	NetProfit       decimal.Decimal
	Skipped         []string // profit and loss ledgers with no usable nature
}

// BuildProfitAndLoss groups profit and loss rows by nature and gross-profit
// flag. It reads each row's movement, so opening balances carried on
// revenue ledgers do not count toward the period.
func BuildProfitAndLoss(rows []balance.Row) ProfitAndLoss {
	pl := ProfitAndLoss{
		DirectIncome:    Section{Label: "Direct Income"},
		DirectExpense:   Section{Label: "Direct Expense"},
		IndirectIncome:  Section{Label: "Indirect Income"},
		IndirectExpense: Section{Label: "Indirect Expense"},
	}

	for _, r := range rows {
		if r.Class.Placement != model.PlacementProfitAndLoss {
			continue
		}
		switch r.Class.Nature {
		case model.NatureIncome:
			if r.Class.GrossProfit {
				pl.DirectIncome.add(r, r.Movement.Neg())
			} else {
				pl.IndirectIncome.add(r, r.Movement.Neg())
			}
		case model.NatureExpense:
			if r.Class.GrossProfit {
				pl.DirectExpense.add(r, r.Movement)
			} else {
				pl.IndirectExpense.add(r, r.Movement)
			}
		default:
			pl.Skipped = append(pl.Skipped, r.Ledger)
		}
	}

	pl.GrossProfit = pl.DirectIncome.Total.Sub(pl.DirectExpense.Total)
	pl.NetProfit = pl.GrossProfit.Add(pl.IndirectIncome.Total).Sub(pl.IndirectExpense.Total)
	return pl
}

// BalanceSheet is the position at the end of a window.
type BalanceSheet struct {
	Assets           Section
	Liabilities      Section
	ProfitCarried    decimal.Decimal // current-period profit shown on the liabilities side
	TotalLiabilities decimal.Decimal // Liabilities.Total + ProfitCarried
	Difference       decimal.Decimal // Assets.Total - TotalLiabilities; zero when the books agree
}

// BuildBalanceSheet lays balance sheet rows out by closing balance. Rows
// whose nature is unknown go to the side their balance falls on. The
// closing balance of every profit and loss row is carried across as
// profit so both sides agree.
func BuildBalanceSheet(rows []balance.Row) BalanceSheet {
	bs := BalanceSheet{
		Assets:      Section{Label: "Assets"},
		Liabilities: Section{Label: "Liabilities"},
	}

	pl := decimal.Zero
	for _, r := range rows {
		if r.Class.Placement == model.PlacementProfitAndLoss {
			pl = pl.Add(r.Closing)
			continue
		}
		if r.Class.Placement != model.PlacementBalanceSheet {
			continue
		}

		switch r.Class.Nature {
		case model.NatureAsset:
			bs.Assets.add(r, r.Closing)
		case model.NatureLiability:
			bs.Liabilities.add(r, r.Closing.Neg())
		default:
			if r.Closing.IsNegative() {
				bs.Liabilities.add(r, r.Closing.Neg())
			} else {
				bs.Assets.add(r, r.Closing)
			}
		}
	}

	bs.ProfitCarried = pl.Neg()
	bs.TotalLiabilities = bs.Liabilities.Total.Add(bs.ProfitCarried)
	bs.Difference = bs.Assets.Total.Sub(bs.TotalLiabilities)
	return bs
}
