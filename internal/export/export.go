// Package export writes report tables as CSV extracts.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tallymis/internal/audit"
	"github.com/cleared-dev/tallymis/internal/balance"
	"github.com/cleared-dev/tallymis/internal/fiscal"
	"github.com/cleared-dev/tallymis/internal/journal"
	"github.com/cleared-dev/tallymis/internal/model"
	"github.com/cleared-dev/tallymis/internal/performance"
)

// CSV headers for each extract.
const (
	GroupHeader   = "name,parent,is_revenue,nature_of_group,affects_gross_profit,placement,nature,gross_profit,purchase"
	LedgerHeader  = "name,group,opening,opening_resolved,placement,nature,gross_profit"
	BalanceHeader = "ledger,group,placement,nature,gross_profit,opening,movement,closing"
	DynamicHeader = "ledger,group,placement,nature,gross_profit,fiscal_opening,roll_forward,opening,movement,closing,opening_overridden,closing_overridden"
	IssueHeader   = "kind,subject,message"
	TrendHeader   = "month,revenue,cogs,opex"
	SellerHeader  = "rank,ledger,group,revenue"
	LineHeader    = "date,voucher_id,voucher_type,ledger,debit,credit,narration"
)

// Amount formats a figure with at least two decimal places and never
// rounds away precision.
func Amount(d decimal.Decimal) string {
	places := int32(2)
	if e := -d.Exponent(); e > places {
		places = e
	}
	return d.StringFixed(places)
}

func class(c model.ClassifiedGroup) []string {
	return []string{string(c.Placement), string(c.Nature), strconv.FormatBool(c.GrossProfit)}
}

// MarshalGroup converts a classified group to a CSV row.
func MarshalGroup(c model.ClassifiedGroup) []string {
	g := c.Group
	return []string{
		g.Name, g.Parent, g.IsRevenue.String(), g.NatureOfGroup, g.AffectsGrossProfit.String(),
		string(c.Placement), string(c.Nature), strconv.FormatBool(c.GrossProfit), strconv.FormatBool(c.Purchase),
	}
}

// MarshalLedger converts a classified ledger to a CSV row.
func MarshalLedger(l model.ClassifiedLedger) []string {
	row := []string{l.Ledger.Name, l.Ledger.Group, Amount(l.Ledger.Opening), strconv.FormatBool(l.Ledger.OpeningResolved)}
	return append(row, class(l.Class)...)
}

// MarshalRow converts a static or year-to-date balance row to a CSV row.
func MarshalRow(r balance.Row) []string {
	row := append([]string{r.Ledger, r.Group}, class(r.Class)...)
	return append(row, Amount(r.Opening), Amount(r.Movement), Amount(r.Closing))
}

// MarshalDynamicRow converts a dynamic balance row to a CSV row.
func MarshalDynamicRow(r balance.DynamicRow) []string {
	row := append([]string{r.Ledger, r.Group}, class(r.Class)...)
	return append(row,
		Amount(r.FiscalOpening), Amount(r.RollForward),
		Amount(r.Opening), Amount(r.Movement), Amount(r.Closing),
		strconv.FormatBool(r.OpeningOverridden), strconv.FormatBool(r.ClosingOverridden),
	)
}

// MarshalIssue converts an issue to a CSV row.
func MarshalIssue(i audit.Issue) []string {
	msg := ""
	if i.Err != nil {
		msg = i.Err.Error()
	}
	return []string{string(i.Kind), i.Subject, msg}
}

// MarshalMonth converts a monthly trend point to a CSV row.
func MarshalMonth(m performance.Month) []string {
	return []string{m.Start.Format("2006-01"), Amount(m.Revenue), Amount(m.COGS), Amount(m.Opex)}
}

// MarshalLine converts a day-book line to a CSV row.
func MarshalLine(l journal.Line) []string {
	return []string{
		l.Date.Format(fiscal.DateFormat), l.VoucherID, l.Type, l.Ledger,
		Amount(l.Debit), Amount(l.Credit), l.Narration,
	}
}

func write[T any](w io.Writer, header string, items []T, marshal func(T) []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, item := range items {
		if err := cw.Write(marshal(item)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteGroups writes the classified group list.
func WriteGroups(w io.Writer, groups []model.ClassifiedGroup) error {
	return write(w, GroupHeader, groups, MarshalGroup)
}

// WriteLedgers writes the classified ledger list.
func WriteLedgers(w io.Writer, ledgers []model.ClassifiedLedger) error {
	return write(w, LedgerHeader, ledgers, MarshalLedger)
}

// WriteTable writes a static or year-to-date trial balance.
func WriteTable(w io.Writer, t balance.Table) error {
	return write(w, BalanceHeader, t.Rows, MarshalRow)
}

// WriteDynamic writes a dynamic trial balance.
func WriteDynamic(w io.Writer, t balance.DynamicTable) error {
	return write(w, DynamicHeader, t.Rows, MarshalDynamicRow)
}

// WriteIssues writes the issue list.
func WriteIssues(w io.Writer, issues []audit.Issue) error {
	return write(w, IssueHeader, issues, MarshalIssue)
}

// WriteTrend writes a monthly trend.
func WriteTrend(w io.Writer, months []performance.Month) error {
	return write(w, TrendHeader, months, MarshalMonth)
}

// WriteBestSellers writes a ranked revenue list, rank starting at 1.
func WriteBestSellers(w io.Writer, sellers []performance.Seller) error {
	rank := 0
	return write(w, SellerHeader, sellers, func(s performance.Seller) []string {
		rank++
		return []string{strconv.Itoa(rank), s.Ledger, s.Group, Amount(s.Revenue)}
	})
}

// WriteLines writes a day-book listing.
func WriteLines(w io.Writer, lines []journal.Line) error {
	return write(w, LineHeader, lines, MarshalLine)
}

// ToFile creates path, creating parent directories, and fills it.
func ToFile(path string, fill func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating export dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := fill(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
