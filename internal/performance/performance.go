// Package performance derives cost of goods sold, gross profit and net
// profit from year-to-date balances and user-entered stock values.
package performance

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tallymis/internal/audit"
	"github.com/cleared-dev/tallymis/internal/balance"
	"github.com/cleared-dev/tallymis/internal/model"
)

// Stock holds the user-entered inventory values for the period.
type Stock struct {
	Opening decimal.Decimal
	Closing decimal.Decimal
}

// FlaggedLedger is a row left out of the overview because its classification
// is missing. Movement is what it would have contributed.
type FlaggedLedger struct {
	Ledger   string
	Group    string
	Reason   string
	Movement decimal.Decimal
}

// Reasons a ledger is left out of the overview.
const (
	ReasonUnclassified       = "group not classified"
	ReasonNatureUnknown      = "nature unknown"
	ReasonBalanceSheetNature = "balance-sheet nature on profit and loss group"
)

// Overview is the performance summary. Income figures are positive when
// they add to profit.
type Overview struct {
	OpeningStock    decimal.Decimal
	ClosingStock    decimal.Decimal
	Purchases       decimal.Decimal
	COGS            decimal.Decimal
	Revenue         decimal.Decimal
	DirectExpense   decimal.Decimal
	GrossProfit     decimal.Decimal
	IndirectIncome  decimal.Decimal
	IndirectExpense decimal.Decimal
	NetProfit       decimal.Decimal
	Flagged         []FlaggedLedger
}

// Calculate builds the overview from year-to-date rows. Revenue counts only
// income that affects gross profit; other income is IndirectIncome. Purchase
// ledgers feed COGS and never Direct Expense. An expense that does not affect
// gross profit is indirect whatever its purchase flag says.
func Calculate(rows []balance.Row, stock Stock) Overview {
	o := Overview{
		OpeningStock:    stock.Opening,
		ClosingStock:    stock.Closing,
		Purchases:       decimal.Zero,
		Revenue:         decimal.Zero,
		DirectExpense:   decimal.Zero,
		IndirectIncome:  decimal.Zero,
		IndirectExpense: decimal.Zero,
	}

	for _, r := range rows {
		c := r.Class
		if !c.Classified() {
			o.flag(r, ReasonUnclassified)
			continue
		}
		if c.Placement != model.PlacementProfitAndLoss {
			continue
		}

		switch c.Nature {
		case model.NatureIncome:
			if c.GrossProfit {
				o.Revenue = o.Revenue.Sub(r.Movement)
			} else {
				o.IndirectIncome = o.IndirectIncome.Sub(r.Movement)
			}
		case model.NatureExpense:
			switch {
			case !c.GrossProfit:
				o.IndirectExpense = o.IndirectExpense.Add(r.Movement)
			case c.Purchase:
				o.Purchases = o.Purchases.Add(r.Movement)
			default:
				o.DirectExpense = o.DirectExpense.Add(r.Movement)
			}
		case model.NatureAsset, model.NatureLiability:
			o.flag(r, ReasonBalanceSheetNature)
		default:
			o.flag(r, ReasonNatureUnknown)
		}
	}

	o.COGS = stock.Opening.Add(o.Purchases).Sub(stock.Closing)
	o.GrossProfit = o.Revenue.Sub(o.DirectExpense).Sub(o.COGS)
	o.NetProfit = o.GrossProfit.Add(o.IndirectIncome).Sub(o.IndirectExpense)
	return o
}

func (o *Overview) flag(r balance.Row, reason string) {
	o.Flagged = append(o.Flagged, FlaggedLedger{
		Ledger:   r.Ledger,
		Group:    r.Group,
		Reason:   reason,
		Movement: r.Movement,
	})
}

// Issues reports each flagged ledger as a missing-classification issue.
func (o Overview) Issues() []audit.Issue {
	var out []audit.Issue
	for _, f := range o.Flagged {
		out = append(out, audit.Issue{
			Kind:    audit.KindMissingClass,
			Subject: f.Ledger,
			Err:     fmt.Errorf("group %q: %s, movement %s left out of the overview", f.Group, f.Reason, f.Movement.StringFixed(2)),
		})
	}
	return out
}
