// Package mis runs one reporting session over an immutable snapshot of the
// books: normalize, classify, validate, index, then answer queries.
package mis

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cleared-dev/tallymis/internal/audit"
	"github.com/cleared-dev/tallymis/internal/balance"
	"github.com/cleared-dev/tallymis/internal/classify"
	"github.com/cleared-dev/tallymis/internal/fiscal"
	"github.com/cleared-dev/tallymis/internal/journal"
	"github.com/cleared-dev/tallymis/internal/log"
	"github.com/cleared-dev/tallymis/internal/masters"
	"github.com/cleared-dev/tallymis/internal/model"
	"github.com/cleared-dev/tallymis/internal/movement"
	"github.com/cleared-dev/tallymis/internal/normalize"
	"github.com/cleared-dev/tallymis/internal/performance"
	"github.com/cleared-dev/tallymis/internal/statement"
)

// Options configure a session.
type Options struct {
	Convention normalize.Convention
	YearStart  fiscal.MonthDay // zero means April 1
	BooksStart time.Time       // zero means the start of the fiscal year holding the first voucher
	Logger     *slog.Logger

	// LoadIssues are problems the source hit while reading the snapshot.
	// They head the session's issue list.
	LoadIssues []audit.Issue
}

// Session holds everything derived from one snapshot. It is read-only once
// built, so a session may be queried from several goroutines, and separate
// sessions share nothing.
type Session struct {
	id         uuid.UUID
	company    string
	booksStart time.Time
	yearStart  fiscal.MonthDay
	engine     *classify.Engine
	groups     []model.ClassifiedGroup
	ledgers    []model.ClassifiedLedger
	vouchers   []model.Voucher
	computer   *balance.Computer
	issues     audit.Log
}

// NewSession builds a session. The only fatal condition is an empty group
// master set, reported as audit.ErrNoGroups; every other problem is kept as
// an issue next to the partial results.
func NewSession(raw model.RawSnapshot, opts Options) (*Session, error) {
	logger := log.WithComponent(opts.Logger, log.ComponentSession)

	engine, err := classify.NewEngine(raw.Groups)
	if err != nil {
		return nil, fmt.Errorf("classifying groups of %q: %w", raw.Company, err)
	}

	s := &Session{
		id:      uuid.New(),
		company: raw.Company,
		engine:  engine,
	}
	s.issues.Append(opts.LoadIssues...)
	s.issues.Append(engine.Issues()...)
	s.groups = engine.All()

	norm := normalize.New(opts.Convention)
	seen := make(map[string]bool, len(raw.Ledgers))
	for _, rl := range raw.Ledgers {
		k := strings.ToLower(strings.TrimSpace(rl.Name))
		if seen[k] {
			s.issues.Add(audit.KindDuplicate, rl.Name, fmt.Errorf("ledger %q defined more than once, first definition kept", rl.Name))
			continue
		}
		seen[k] = true

		l, err := norm.Ledger(rl)
		switch {
		case err != nil:
			s.issues.Add(audit.KindParse, l.Name, err)
		case !l.OpeningResolved:
			s.issues.Add(audit.KindUnresolvedSign, l.Name,
				fmt.Errorf("opening balance %q has no Dr/Cr indicator, treated as zero", rl.Opening))
		}

		cl, err := engine.Ledger(l)
		switch {
		case err == nil:
		case classify.KindOf(err) == audit.KindUnknownGroup:
			s.issues.Add(audit.KindUnknownGroup, l.Name, err)
		default:
			s.issues.Add(audit.KindUnclassifiedLedger, l.Name, err)
		}
		s.ledgers = append(s.ledgers, cl)
	}

	s.issues.Append(journal.ValidateVouchers(raw.Vouchers, masters.NewLedgerSet(raw.Ledgers))...)
	s.vouchers = raw.Vouchers
	s.yearStart = opts.YearStart
	if s.yearStart.Month == 0 {
		s.yearStart = fiscal.April1
	}
	s.booksStart = booksStart(raw.Vouchers, s.yearStart, opts.BooksStart)

	s.computer = &balance.Computer{
		BooksStart: s.booksStart,
		Index:      movement.NewIndex(raw.Vouchers),
		Ledgers:    s.ledgers,
		Groups:     engine,
	}

	logger.Debug("session built",
		log.FieldSession, s.id.String(),
		log.FieldCompany, s.company,
		log.FieldGroups, len(s.groups),
		log.FieldLedgers, len(s.ledgers),
		log.FieldVouchers, len(s.vouchers),
		log.FieldIssues, s.issues.Len(),
	)
	return s, nil
}

func booksStart(vouchers []model.Voucher, md fiscal.MonthDay, configured time.Time) time.Time {
	if !configured.IsZero() {
		return fiscal.Day(configured)
	}
	anchor := time.Now()
	for i, v := range vouchers {
		if i == 0 || v.Date.Before(anchor) {
			anchor = v.Date
		}
	}
	return fiscal.YearStart(anchor, md)
}

// ID identifies the session in logs and exports.
func (s *Session) ID() uuid.UUID { return s.id }

// Company is the company the snapshot was taken from.
func (s *Session) Company() string { return s.company }

// BooksStart is the first day movements are rolled forward from.
func (s *Session) BooksStart() time.Time { return s.booksStart }

// VoucherCount is the number of vouchers in the snapshot.
func (s *Session) VoucherCount() int { return len(s.vouchers) }

// Groups returns every classified group in master order.
func (s *Session) Groups() []model.ClassifiedGroup {
	out := make([]model.ClassifiedGroup, len(s.groups))
	copy(out, s.groups)
	return out
}

// Group classifies one group by name.
func (s *Session) Group(name string) (model.ClassifiedGroup, error) {
	return s.engine.Group(name)
}

// Ledgers returns every classified ledger in master order.
func (s *Session) Ledgers() []model.ClassifiedLedger {
	out := make([]model.ClassifiedLedger, len(s.ledgers))
	copy(out, s.ledgers)
	return out
}

// TrialBalance is the static trial balance over w.
func (s *Session) TrialBalance(w movement.Window) balance.Table {
	return s.computer.Static(w)
}

// YearToDate is the trial balance from the books start through asOf.
func (s *Session) YearToDate(asOf time.Time) balance.Table {
	return s.computer.YearToDate(asOf)
}

// Dynamic is the rolled-forward trial balance over w.
func (s *Session) Dynamic(w movement.Window, overrides balance.Overrides) balance.DynamicTable {
	return s.computer.Dynamic(w, overrides)
}

// Overview computes the performance overview from the year-to-date balance
// at asOf.
func (s *Session) Overview(asOf time.Time, stock performance.Stock) performance.Overview {
	return performance.Calculate(s.YearToDate(asOf).Rows, stock)
}

// ProfitAndLoss lays the year-to-date balance at asOf out as a profit and
// loss account.
func (s *Session) ProfitAndLoss(asOf time.Time) statement.ProfitAndLoss {
	return statement.BuildProfitAndLoss(s.YearToDate(asOf).Rows)
}

// BalanceSheet lays the year-to-date balance at asOf out as a balance sheet.
func (s *Session) BalanceSheet(asOf time.Time) statement.BalanceSheet {
	return statement.BuildBalanceSheet(s.YearToDate(asOf).Rows)
}

// MonthlyTrend returns revenue, COGS and operating expense for each month
// of the fiscal year holding asOf.
func (s *Session) MonthlyTrend(asOf time.Time) []performance.Month {
	return performance.MonthlyTrend(s.computer.Index, s.ledgers, fiscal.YearStart(asOf, s.yearStart))
}

// BestSellers returns the top n revenue ledgers by year-to-date revenue at
// asOf.
func (s *Session) BestSellers(asOf time.Time, n int) []performance.Seller {
	return performance.BestSellers(s.YearToDate(asOf).Rows, n)
}

// VoucherLines lists the day book one entry per line.
func (s *Session) VoucherLines(f journal.Filter) []journal.Line {
	return journal.Lines(s.vouchers, f)
}

// Issues returns every row-level problem found while building the session.
func (s *Session) Issues() []audit.Issue { return s.issues.Issues() }

// IssueCounts returns the number of issues per kind.
func (s *Session) IssueCounts() map[audit.Kind]int { return s.issues.Counts() }
