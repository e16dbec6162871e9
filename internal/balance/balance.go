// Package balance computes trial balances: static, year-to-date and dynamic
// windows with roll-forward from the start of the books.
package balance

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tallymis/internal/fiscal"
	"github.com/cleared-dev/tallymis/internal/model"
	"github.com/cleared-dev/tallymis/internal/movement"
)

// Mode names the kind of trial balance a table holds.
type Mode string

const (
	ModeStatic  Mode = "static"
	ModeYTD     Mode = "ytd"
	ModeDynamic Mode = "dynamic"
)

// Row is one ledger line of a trial balance. Closing is Opening plus
// Movement unless a closing override applies.
type Row struct {
	Ledger          string
	Group           string
	Class           model.ClassifiedGroup
	Opening         decimal.Decimal
	Movement        decimal.Decimal
	Closing         decimal.Decimal
	OpeningResolved bool
}

// Hierarchy resolves the ancestors of a group, nearest first.
type Hierarchy interface {
	Ancestors(group string) []model.Group
}

// Computer combines classified ledgers with indexed voucher movements.
type Computer struct {
	BooksStart time.Time
	Index      *movement.Index
	Ledgers    []model.ClassifiedLedger
	Groups     Hierarchy // optional; without it subtotals stop at the direct group
}

// Table is a static or year-to-date trial balance.
type Table struct {
	Mode   Mode
	Window movement.Window
	Rows   []Row
	Totals
}

// Static computes a trial balance over an arbitrary window. Opening is the
// ledger master's opening balance regardless of where the window starts.
func (c *Computer) Static(w movement.Window) Table {
	rows := make([]Row, 0, len(c.Ledgers))
	for _, cl := range c.Ledgers {
		r := c.row(cl)
		r.Movement = c.Index.SumWindow(cl.Ledger.Name, w)
		r.Closing = r.Opening.Add(r.Movement)
		rows = append(rows, r)
	}
	sortRows(rows)
	return Table{Mode: ModeStatic, Window: w, Rows: rows, Totals: c.totals(rows)}
}

// YearToDate computes the trial balance from the start of the books through
// asOf, matching what the books themselves report for that date.
func (c *Computer) YearToDate(asOf time.Time) Table {
	t := c.Static(movement.Window{From: fiscal.Day(c.BooksStart), To: fiscal.Day(asOf)})
	t.Mode = ModeYTD
	return t
}

func (c *Computer) row(cl model.ClassifiedLedger) Row {
	group := cl.Class.Name()
	if group == "" {
		group = cl.Ledger.Group
	}
	return Row{
		Ledger:          cl.Ledger.Name,
		Group:           group,
		Class:           cl.Class,
		Opening:         cl.Ledger.Opening,
		OpeningResolved: cl.Ledger.OpeningResolved,
	}
}

func less(a, b Row) bool {
	ga, gb := strings.ToLower(a.Group), strings.ToLower(b.Group)
	if ga != gb {
		return ga < gb
	}
	return strings.ToLower(a.Ledger) < strings.ToLower(b.Ledger)
}

func sortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
}

// Row returns the row for a ledger.
func (t Table) Row(ledger string) (Row, bool) {
	for _, r := range t.Rows {
		if strings.EqualFold(r.Ledger, ledger) {
			return r, true
		}
	}
	return Row{}, false
}

// ClassifiedRows returns the rows whose group resolved to a statement.
func (t Table) ClassifiedRows() []Row {
	var out []Row
	for _, r := range t.Rows {
		if r.Class.Classified() {
			out = append(out, r)
		}
	}
	return out
}

// UnclassifiedRows returns the rows that sit in the Unclassified bucket.
func (t Table) UnclassifiedRows() []Row {
	var out []Row
	for _, r := range t.Rows {
		if !r.Class.Classified() {
			out = append(out, r)
		}
	}
	return out
}
