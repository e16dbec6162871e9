package journal

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tallymis/internal/model"
	"github.com/cleared-dev/tallymis/internal/movement"
)

// Line is one voucher entry laid out for a day-book listing. Exactly one of
// Debit and Credit is non-zero for a non-zero entry; both are positive.
type Line struct {
	Date      time.Time
	VoucherID string
	Type      string
	Ledger    string
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	Narration string
}

// Filter narrows a listing. A zero window or an empty ledger matches all.
type Filter struct {
	Window movement.Window
	Ledger string
}

func (f Filter) voucher(v model.Voucher) bool {
	if f.Window.From.IsZero() && f.Window.To.IsZero() {
		return true
	}
	if !f.Window.From.IsZero() && v.Date.Before(f.Window.From) {
		return false
	}
	return f.Window.To.IsZero() || !v.Date.After(f.Window.To)
}

func (f Filter) entry(e model.LedgerEntry) bool {
	want := strings.TrimSpace(f.Ledger)
	return want == "" || strings.EqualFold(strings.TrimSpace(e.Ledger), want)
}

// Lines flattens vouchers into one line per entry, ordered by date. Vouchers
// on the same day keep their day-book order.
func Lines(vouchers []model.Voucher, f Filter) []Line {
	var out []Line
	for _, v := range vouchers {
		if !f.voucher(v) {
			continue
		}
		for _, e := range v.Entries {
			if !f.entry(e) {
				continue
			}
			l := Line{
				Date:      v.Date,
				VoucherID: v.ID,
				Type:      v.Type,
				Ledger:    e.Ledger,
				Debit:     decimal.Zero,
				Credit:    decimal.Zero,
				Narration: v.Narration,
			}
			if e.IsDebit() {
				l.Debit = e.Amount
			} else {
				l.Credit = e.Amount.Neg()
			}
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
