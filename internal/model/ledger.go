package model

import "github.com/shopspring/decimal"

// RawLedger is a ledger master exactly as the source reported it.
type RawLedger struct {
	Name    string
	Parent  string
	Opening string // raw text, may carry an inline Dr/Cr indicator
	DrCr    string // explicit indicator column, often empty
}

// Ledger is a ledger master with its opening balance normalized to the
// signed convention (Dr positive, Cr negative).
type Ledger struct {
	Name            string
	Group           string
	Opening         decimal.Decimal
	OpeningResolved bool // false when the sign could not be determined
}

// ClassifiedLedger pairs a ledger with the classification of its group.
type ClassifiedLedger struct {
	Ledger Ledger
	Class  ClassifiedGroup
}
