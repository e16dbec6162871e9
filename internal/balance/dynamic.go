package balance

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tallymis/internal/fiscal"
	"github.com/cleared-dev/tallymis/internal/movement"
)

// Override replaces a ledger's dynamic opening or closing balance with a
// figure the user knows better, such as an adjusted stock value.
type Override struct {
	Opening decimal.NullDecimal
	Closing decimal.NullDecimal
}

// Overrides are keyed by ledger name; lookups ignore case.
type Overrides map[string]Override

func (o Overrides) folded() map[string]Override {
	out := make(map[string]Override, len(o))
	for name, ov := range o {
		out[strings.ToLower(strings.TrimSpace(name))] = ov
	}
	return out
}

// DynamicRow is a Row for a user window. The embedded Row carries the
// dynamic opening, the in-window movement and the dynamic closing.
type DynamicRow struct {
	Row
	FiscalOpening     decimal.Decimal // opening balance of the ledger master
	RollForward       decimal.Decimal // movement from the books start to the day before the window
	OpeningOverridden bool
	ClosingOverridden bool
}

// DynamicTable is a trial balance over a user window.
type DynamicTable struct {
	Window movement.Window
	Rows   []DynamicRow
	Totals
}

// Dynamic computes a trial balance over w, rolling each ledger's opening
// forward from the start of the books to the day before w.From. With no
// overrides and w.From at the books start it equals YearToDate(w.To).
func (c *Computer) Dynamic(w movement.Window, overrides Overrides) DynamicTable {
	ov := overrides.folded()
	booksStart := fiscal.Day(c.BooksStart)

	rows := make([]DynamicRow, 0, len(c.Ledgers))
	for _, cl := range c.Ledgers {
		r := DynamicRow{Row: c.row(cl)}
		r.FiscalOpening = r.Opening
		r.RollForward = c.Index.Sum(cl.Ledger.Name, booksStart, fiscal.PrevDay(w.From))
		r.Opening = r.FiscalOpening.Add(r.RollForward)
		r.Movement = c.Index.SumWindow(cl.Ledger.Name, w)

		o := ov[strings.ToLower(strings.TrimSpace(cl.Ledger.Name))]
		if o.Opening.Valid {
			r.Opening = o.Opening.Decimal
			r.OpeningOverridden = true
		}
		r.Closing = r.Opening.Add(r.Movement)
		if o.Closing.Valid {
			r.Closing = o.Closing.Decimal
			r.ClosingOverridden = true
		}
		rows = append(rows, r)
	}
	sortDynamic(rows)

	plain := make([]Row, len(rows))
	for i, r := range rows {
		plain[i] = r.Row
	}
	return DynamicTable{Window: w, Rows: rows, Totals: c.totals(plain)}
}

func sortDynamic(rows []DynamicRow) {
	sort.SliceStable(rows, func(i, j int) bool { return less(rows[i].Row, rows[j].Row) })
}

// Row returns the row for a ledger.
func (t DynamicTable) Row(ledger string) (DynamicRow, bool) {
	for _, r := range t.Rows {
		if strings.EqualFold(r.Ledger, ledger) {
			return r, true
		}
	}
	return DynamicRow{}, false
}
