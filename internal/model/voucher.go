package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Common voucher types. The source may report others.
const (
	VoucherSales    = "Sales"
	VoucherPurchase = "Purchase"
	VoucherPayment  = "Payment"
	VoucherReceipt  = "Receipt"
	VoucherJournal  = "Journal"
	VoucherContra   = "Contra"
)

// LedgerEntry is one signed line of a voucher.
type LedgerEntry struct {
	Ledger string
	Amount decimal.Decimal // Dr positive, Cr negative
	Item   string          // optional inventory item reference
}

// IsDebit reports whether the entry debits its ledger.
func (e LedgerEntry) IsDebit() bool { return e.Amount.IsPositive() }

// Voucher is one accounting transaction.
type Voucher struct {
	ID        string
	Date      time.Time
	Type      string
	Narration string
	Entries   []LedgerEntry
}

// Total returns the signed sum of all entries; zero for a balanced voucher.
func (v Voucher) Total() decimal.Decimal {
	total := decimal.Zero
	for _, e := range v.Entries {
		total = total.Add(e.Amount)
	}
	return total
}
