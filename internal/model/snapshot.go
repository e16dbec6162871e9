package model

import "time"

// RawSnapshot is one fetch of the books: every group, ledger and voucher,
// treated as immutable for the duration of a reporting session.
type RawSnapshot struct {
	Company   string
	FetchedAt time.Time
	Groups    []Group
	Ledgers   []RawLedger
	Vouchers  []Voucher
}
