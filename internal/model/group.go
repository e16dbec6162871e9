package model

import "strings"

// TriState is a yes/no flag that may also be absent from the source record.
// Absent is the zero value and is never the same thing as No.
type TriState int8

const (
	Absent TriState = iota
	Yes
	No
)

// Present reports whether the source record carried the flag at all.
func (t TriState) Present() bool { return t != Absent }

// True reports whether the flag is present and set.
func (t TriState) True() bool { return t == Yes }

func (t TriState) String() string {
	switch t {
	case Yes:
		return "Yes"
	case No:
		return "No"
	default:
		return ""
	}
}

// Placement is the financial statement a group reports on.
type Placement string

const (
	PlacementUnclassified  Placement = "Unclassified"
	PlacementBalanceSheet  Placement = "BalanceSheet"
	PlacementProfitAndLoss Placement = "ProfitAndLoss"
)

// Nature is the accounting nature of a group.
type Nature string

const (
	NatureUnknown   Nature = ""
	NatureAsset     Nature = "Asset"
	NatureLiability Nature = "Liability"
	NatureIncome    Nature = "Income"
	NatureExpense   Nature = "Expense"
)

// Source records which rule resolved a classified attribute.
type Source string

const (
	SourceNone    Source = ""
	SourceFlag    Source = "flag"
	SourceNature  Source = "nature"
	SourceParent  Source = "parent"
	SourceKeyword Source = "keyword"
	SourceDefault Source = "default"
)

// rootParent is the pseudo-parent the bookkeeping system reports for
// top-level groups.
const rootParent = "primary"

// Group represents a group master as fetched from the source.
type Group struct {
	Name               string
	Parent             string // "" or "Primary" = root
	IsRevenue          TriState
	NatureOfGroup      string
	AffectsGrossProfit TriState
}

// IsRoot reports whether the group has no parent group.
func (g Group) IsRoot() bool {
	p := strings.TrimSpace(g.Parent)
	return p == "" || strings.EqualFold(p, rootParent)
}

// Basis lists the rule that resolved each classified attribute.
type Basis struct {
	Placement   Source
	Nature      Source
	GrossProfit Source
}

// ClassifiedGroup is a group with its resolved statement placement, nature
// and gross-profit flag.
type ClassifiedGroup struct {
	Group       Group
	Placement   Placement
	Nature      Nature
	GrossProfit bool
	Purchase    bool // Purchase-Accounts semantics; folded into COGS
	Basis       Basis
}

// Name returns the group name.
func (c ClassifiedGroup) Name() string { return c.Group.Name }

// Classified reports whether a placement was resolved.
func (c ClassifiedGroup) Classified() bool {
	return c.Placement == PlacementBalanceSheet || c.Placement == PlacementProfitAndLoss
}
