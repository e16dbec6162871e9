package commands

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tallymis/internal/audit"
	"github.com/cleared-dev/tallymis/internal/balance"
	"github.com/cleared-dev/tallymis/internal/export"
	"github.com/cleared-dev/tallymis/internal/fiscal"
	"github.com/cleared-dev/tallymis/internal/journal"
	"github.com/cleared-dev/tallymis/internal/model"
	"github.com/cleared-dev/tallymis/internal/performance"
	"github.com/cleared-dev/tallymis/internal/statement"
)

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

var money = export.Amount

func nature(n model.Nature) string {
	if n == model.NatureUnknown {
		return "-"
	}
	return string(n)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func printGroups(w io.Writer, groups []model.ClassifiedGroup) error {
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "GROUP\tPARENT\tPLACEMENT\tNATURE\tGROSS PROFIT\tPURCHASE\tBASIS")
	for _, g := range groups {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s/%s/%s\n",
			g.Group.Name, g.Group.Parent, g.Placement, nature(g.Nature),
			yesNo(g.GrossProfit), yesNo(g.Purchase),
			g.Basis.Placement, g.Basis.Nature, g.Basis.GrossProfit)
	}
	return tw.Flush()
}

func printLedgers(w io.Writer, ledgers []model.ClassifiedLedger) error {
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "LEDGER\tGROUP\tPLACEMENT\tNATURE\tOPENING\t")
	for _, l := range ledgers {
		opening := money(l.Ledger.Opening)
		if !l.Ledger.OpeningResolved {
			opening += " (unresolved)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			l.Ledger.Name, l.Ledger.Group, l.Class.Placement, nature(l.Class.Nature), opening)
	}
	return tw.Flush()
}

func printRows(tw io.Writer, rows []balance.Row) {
	fmt.Fprintln(tw, "LEDGER\tGROUP\tPLACEMENT\tNATURE\tOPENING\tMOVEMENT\tCLOSING\t")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			r.Ledger, r.Group, r.Class.Placement, nature(r.Class.Nature),
			money(r.Opening), money(r.Movement), money(r.Closing))
	}
}

func printTotals(tw io.Writer, t balance.Totals) {
	fmt.Fprintln(tw, "\t\t\t\t\t\t\t")
	for _, b := range []balance.Bucket{t.BalanceSheet, t.ProfitAndLoss, t.Unclassified} {
		if b.Rows == 0 {
			continue
		}
		fmt.Fprintf(tw, "Total %s (%d)\t\t\t\t%s\t%s\t%s\t\n",
			b.Placement, b.Rows, money(b.Opening), money(b.Movement), money(b.Closing))
	}
	check := t.Check()
	status := "balanced"
	if !check.Balanced() {
		status = "difference " + money(check.Overall)
	}
	fmt.Fprintf(tw, "Check\t\t\t\t\t\t%s\t\n", status)
}

func printTable(w io.Writer, t balance.Table) error {
	fmt.Fprintf(w, "Trial balance (%s) %s\n\n", t.Mode, t.Window)
	tw := newTabWriter(w)
	printRows(tw, t.Rows)
	printTotals(tw, t.Totals)
	return tw.Flush()
}

func printDynamic(w io.Writer, t balance.DynamicTable) error {
	fmt.Fprintf(w, "Trial balance (%s) %s\n\n", balance.ModeDynamic, t.Window)
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "LEDGER\tGROUP\tPLACEMENT\tFISCAL OPENING\tROLL FORWARD\tOPENING\tMOVEMENT\tCLOSING\t")
	for _, r := range t.Rows {
		opening, closing := money(r.Opening), money(r.Closing)
		if r.OpeningOverridden {
			opening += "*"
		}
		if r.ClosingOverridden {
			closing += "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			r.Ledger, r.Group, r.Class.Placement,
			money(r.FiscalOpening), money(r.RollForward), opening, money(r.Movement), closing)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	tw = newTabWriter(w)
	printTotals(tw, t.Totals)
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w, "* overridden")
	return nil
}

func printOverview(w io.Writer, o performance.Overview) error {
	tw := newTabWriter(w)
	lines := []struct {
		label  string
		amount decimal.Decimal
	}{
		{"Revenue", o.Revenue},
		{"Opening stock", o.OpeningStock},
		{"Purchases", o.Purchases},
		{"Closing stock", o.ClosingStock},
		{"Cost of goods sold", o.COGS},
		{"Direct expenses", o.DirectExpense},
		{"Gross profit", o.GrossProfit},
		{"Indirect income", o.IndirectIncome},
		{"Indirect expenses", o.IndirectExpense},
		{"Net profit", o.NetProfit},
	}
	for _, l := range lines {
		fmt.Fprintf(tw, "%s\t%s\t\n", l.label, money(l.amount))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(o.Flagged) == 0 {
		return nil
	}
	fmt.Fprintf(w, "\n%d ledgers left out:\n", len(o.Flagged))
	tw = newTabWriter(w)
	for _, f := range o.Flagged {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t\n", f.Ledger, f.Group, f.Reason, money(f.Movement))
	}
	return tw.Flush()
}

func printSection(tw io.Writer, s statement.Section) {
	fmt.Fprintf(tw, "%s\t\t\n", s.Label)
	for _, l := range s.Lines {
		fmt.Fprintf(tw, "  %s\t%s\t\n", l.Ledger, money(l.Amount))
	}
	fmt.Fprintf(tw, "  Total\t%s\t\n", money(s.Total))
}

func printStatements(w io.Writer, pl statement.ProfitAndLoss, bs statement.BalanceSheet) error {
	fmt.Fprintln(w, "Profit and loss")
	tw := newTabWriter(w)
	printSection(tw, pl.DirectIncome)
	printSection(tw, pl.DirectExpense)
	fmt.Fprintf(tw, "Gross profit\t%s\t\n", money(pl.GrossProfit))
	printSection(tw, pl.IndirectIncome)
	printSection(tw, pl.IndirectExpense)
	fmt.Fprintf(tw, "Net profit\t%s\t\n", money(pl.NetProfit))
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, l := range pl.Skipped {
		fmt.Fprintf(w, "skipped %s: no usable nature\n", l)
	}

	fmt.Fprintln(w, "\nBalance sheet")
	tw = newTabWriter(w)
	printSection(tw, bs.Liabilities)
	fmt.Fprintf(tw, "Profit carried\t%s\t\n", money(bs.ProfitCarried))
	fmt.Fprintf(tw, "Total liabilities\t%s\t\n", money(bs.TotalLiabilities))
	printSection(tw, bs.Assets)
	fmt.Fprintf(tw, "Difference\t%s\t\n", money(bs.Difference))
	return tw.Flush()
}

func printIssues(w io.Writer, issues []audit.Issue) error {
	tw := newTabWriter(w)
	for _, i := range issues {
		msg := ""
		if i.Err != nil {
			msg = i.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", i.Kind, i.Subject, msg)
	}
	return tw.Flush()
}

func printIssueCounts(w io.Writer, counts map[audit.Kind]int) error {
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)

	tw := newTabWriter(w)
	for _, k := range kinds {
		fmt.Fprintf(tw, "%s\t%d\t\n", k, counts[audit.Kind(k)])
	}
	return tw.Flush()
}

func printSubtotals(w io.Writer, groups []balance.Subtotal) error {
	fmt.Fprintln(w, "\nGroup subtotals")
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "GROUP\tLEDGERS\tOPENING\tMOVEMENT\tCLOSING\t")
	for _, s := range groups {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t\n",
			s.Group, s.Ledgers, money(s.Opening), money(s.Movement), money(s.Closing))
	}
	return tw.Flush()
}

func printTrend(w io.Writer, months []performance.Month) error {
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "MONTH\tREVENUE\tCOGS\tOPEX\t")
	for _, m := range months {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n",
			m.Start.Format("Jan 2006"), money(m.Revenue), money(m.COGS), money(m.Opex))
	}
	return tw.Flush()
}

func printSellers(w io.Writer, sellers []performance.Seller) error {
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "#\tLEDGER\tGROUP\tREVENUE\t")
	for i, s := range sellers {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t\n", i+1, s.Ledger, s.Group, money(s.Revenue))
	}
	return tw.Flush()
}

func printLines(w io.Writer, lines []journal.Line) error {
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "DATE\tVOUCHER\tTYPE\tLEDGER\tDEBIT\tCREDIT\tNARRATION")
	for _, l := range lines {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			l.Date.Format(fiscal.DateFormat), l.VoucherID, l.Type, l.Ledger,
			money(l.Debit), money(l.Credit), l.Narration)
	}
	return tw.Flush()
}
