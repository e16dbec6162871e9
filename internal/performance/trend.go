package performance

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tallymis/internal/balance"
	"github.com/cleared-dev/tallymis/internal/fiscal"
	"github.com/cleared-dev/tallymis/internal/model"
	"github.com/cleared-dev/tallymis/internal/movement"
)

// Summer returns a ledger's movement over a window. *movement.Index
// satisfies it.
type Summer interface {
	SumWindow(ledger string, w movement.Window) decimal.Decimal
}

// Month is one point of the monthly trend. Revenue is positive when it adds
// to profit; COGS covers every gross-profit expense including purchases.
type Month struct {
	Start   time.Time
	Revenue decimal.Decimal
	COGS    decimal.Decimal
	Opex    decimal.Decimal
}

// Window returns the days the month covers.
func (m Month) Window() movement.Window {
	return movement.Window{From: m.Start, To: fiscal.PrevDay(m.Start.AddDate(0, 1, 0))}
}

// MonthlyTrend sums revenue, COGS and operating expense per month for the
// twelve months starting at yearStart. Months with no movement are present
// with zero values. Ledgers that are not classified onto the profit and
// loss account are ignored.
func MonthlyTrend(sum Summer, ledgers []model.ClassifiedLedger, yearStart time.Time) []Month {
	start := fiscal.Day(yearStart)
	months := make([]Month, 12)
	for i := range months {
		months[i] = Month{
			Start:   start.AddDate(0, i, 0),
			Revenue: decimal.Zero,
			COGS:    decimal.Zero,
			Opex:    decimal.Zero,
		}
	}

	for _, l := range ledgers {
		c := l.Class
		if c.Placement != model.PlacementProfitAndLoss {
			continue
		}
		for i := range months {
			m := &months[i]
			switch {
			case c.Nature == model.NatureIncome && c.GrossProfit:
				m.Revenue = m.Revenue.Sub(sum.SumWindow(l.Ledger.Name, m.Window()))
			case c.Nature == model.NatureExpense && c.GrossProfit:
				m.COGS = m.COGS.Add(sum.SumWindow(l.Ledger.Name, m.Window()))
			case c.Nature == model.NatureExpense:
				m.Opex = m.Opex.Add(sum.SumWindow(l.Ledger.Name, m.Window()))
			}
		}
	}
	return months
}

// Seller is one revenue ledger ranked by what it earned.
type Seller struct {
	Ledger  string
	Group   string
	Revenue decimal.Decimal
}

// BestSellers ranks the gross-profit income rows by revenue, largest first,
// and returns at most n of them. Rows that earned nothing are left out.
func BestSellers(rows []balance.Row, n int) []Seller {
	var out []Seller
	for _, r := range rows {
		c := r.Class
		if c.Placement != model.PlacementProfitAndLoss || c.Nature != model.NatureIncome || !c.GrossProfit {
			continue
		}
		revenue := r.Movement.Neg()
		if !revenue.IsPositive() {
			continue
		}
		out = append(out, Seller{Ledger: r.Ledger, Group: r.Group, Revenue: revenue})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Revenue.Cmp(out[j].Revenue); c != 0 {
			return c > 0
		}
		return out[i].Ledger < out[j].Ledger
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
