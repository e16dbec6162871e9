// Package movement sums signed voucher movements per ledger over date
// windows.
package movement

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tallymis/internal/fiscal"
	"github.com/cleared-dev/tallymis/internal/model"
)

// Window is an inclusive range of civil days.
type Window struct {
	From time.Time
	To   time.Time
}

// Empty reports whether the window contains no days.
func (w Window) Empty() bool {
	return fiscal.Day(w.From).After(fiscal.Day(w.To))
}

// Contains reports whether d falls inside the window.
func (w Window) Contains(d time.Time) bool {
	d = fiscal.Day(d)
	return !d.Before(fiscal.Day(w.From)) && !d.After(fiscal.Day(w.To))
}

func (w Window) String() string {
	return w.From.Format(fiscal.DateFormat) + ".." + w.To.Format(fiscal.DateFormat)
}

// Aggregate sums every entry for ledger dated inside [from, to]. It scans
// the whole voucher set; use an Index for repeated queries.
func Aggregate(vouchers []model.Voucher, ledger string, from, to time.Time) decimal.Decimal {
	w := Window{From: from, To: to}
	total := decimal.Zero
	if w.Empty() {
		return total
	}
	k := key(ledger)
	for _, v := range vouchers {
		if !w.Contains(v.Date) {
			continue
		}
		for _, e := range v.Entries {
			if key(e.Ledger) == k {
				total = total.Add(e.Amount)
			}
		}
	}
	return total
}

func key(ledger string) string {
	return strings.ToLower(strings.TrimSpace(ledger))
}

type series struct {
	days []time.Time       // sorted, one per distinct day
	sums []decimal.Decimal // sums[i] = total of all entries on days[0..i]
}

// Index holds per-ledger prefix sums so a window query costs O(log n).
// It is immutable once built and safe for concurrent reads.
type Index struct {
	ledgers map[string]*series
}

// NewIndex builds an index over the vouchers.
func NewIndex(vouchers []model.Voucher) *Index {
	daily := make(map[string]map[time.Time]decimal.Decimal)
	for _, v := range vouchers {
		d := fiscal.Day(v.Date)
		for _, e := range v.Entries {
			k := key(e.Ledger)
			m, ok := daily[k]
			if !ok {
				m = make(map[time.Time]decimal.Decimal)
				daily[k] = m
			}
			m[d] = m[d].Add(e.Amount)
		}
	}

	idx := &Index{ledgers: make(map[string]*series, len(daily))}
	for k, m := range daily {
		s := &series{days: make([]time.Time, 0, len(m))}
		for d := range m {
			s.days = append(s.days, d)
		}
		sort.Slice(s.days, func(i, j int) bool { return s.days[i].Before(s.days[j]) })
		running := decimal.Zero
		s.sums = make([]decimal.Decimal, len(s.days))
		for i, d := range s.days {
			running = running.Add(m[d])
			s.sums[i] = running
		}
		idx.ledgers[k] = s
	}
	return idx
}

// upTo returns the total of all entries dated on or before d.
func (s *series) upTo(d time.Time) decimal.Decimal {
	n := sort.Search(len(s.days), func(i int) bool { return s.days[i].After(d) })
	if n == 0 {
		return decimal.Zero
	}
	return s.sums[n-1]
}

// Sum returns the same total as Aggregate for the indexed vouchers.
func (idx *Index) Sum(ledger string, from, to time.Time) decimal.Decimal {
	w := Window{From: from, To: to}
	if w.Empty() {
		return decimal.Zero
	}
	s, ok := idx.ledgers[key(ledger)]
	if !ok {
		return decimal.Zero
	}
	return s.upTo(fiscal.Day(w.To)).Sub(s.upTo(fiscal.PrevDay(w.From)))
}

// SumWindow is Sum over a Window.
func (idx *Index) SumWindow(ledger string, w Window) decimal.Decimal {
	return idx.Sum(ledger, w.From, w.To)
}

// Ledgers returns the names of ledgers with at least one entry, folded to
// lower case and sorted.
func (idx *Index) Ledgers() []string {
	out := make([]string, 0, len(idx.ledgers))
	for k := range idx.ledgers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Has reports whether the ledger has any indexed entry.
func (idx *Index) Has(ledger string) bool {
	_, ok := idx.ledgers[key(ledger)]
	return ok
}
