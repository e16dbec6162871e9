package journal

import (
	"errors"
	"fmt"

	"github.com/cleared-dev/tallymis/internal/audit"
	"github.com/cleared-dev/tallymis/internal/model"
)

// LedgerChecker tests whether a ledger name exists in the ledger masters.
type LedgerChecker interface {
	Exists(name string) bool
}

// ValidateVouchers checks every voucher and returns the problems found.
// Problem vouchers are never removed; callers keep them so totals stay
// auditable. A nil checker skips the ledger reference check.
func ValidateVouchers(vouchers []model.Voucher, ledgers LedgerChecker) []audit.Issue {
	var issues []audit.Issue

	for _, v := range vouchers {
		if len(v.Entries) == 0 {
			issues = append(issues, audit.Issue{
				Kind:    audit.KindParse,
				Subject: v.ID,
				Err:     errors.New("voucher has no ledger entries"),
			})
			continue
		}

		// Entries of one voucher sum to zero.
		if total := v.Total(); !total.IsZero() {
			issues = append(issues, audit.Issue{
				Kind:    audit.KindImbalanced,
				Subject: v.ID,
				Err:     &audit.ImbalancedVoucherError{Voucher: v.ID, Difference: total},
			})
		}

		for i, e := range v.Entries {
			if e.Ledger == "" {
				issues = append(issues, audit.Issue{
					Kind:    audit.KindParse,
					Subject: v.ID,
					Err:     fmt.Errorf("entry %d has no ledger", i+1),
				})
				continue
			}
			if ledgers != nil && !ledgers.Exists(e.Ledger) {
				issues = append(issues, audit.Issue{
					Kind:    audit.KindUnknownLedger,
					Subject: v.ID,
					Err:     fmt.Errorf("unknown ledger %q", e.Ledger),
				})
			}
		}
	}

	return issues
}
