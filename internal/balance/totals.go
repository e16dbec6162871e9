package balance

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tallymis/internal/model"
)

// Amounts are the three summed columns of a trial balance.
type Amounts struct {
	Opening  decimal.Decimal
	Movement decimal.Decimal
	Closing  decimal.Decimal
}

func (a *Amounts) add(r Row) {
	a.Opening = a.Opening.Add(r.Opening)
	a.Movement = a.Movement.Add(r.Movement)
	a.Closing = a.Closing.Add(r.Closing)
}

// Subtotal sums every ledger under a group, directly or through subgroups.
type Subtotal struct {
	Group   string
	Ledgers int
	Amounts
}

// Bucket sums the rows that report on one statement.
type Bucket struct {
	Placement model.Placement
	Rows      int
	Amounts
}

// Balanced reports whether the bucket's signed closing balances cancel out.
func (b Bucket) Balanced() bool { return b.Closing.IsZero() }

// Totals holds group subtotals and statement buckets for a table.
type Totals struct {
	Groups        []Subtotal // ordered by group name
	BalanceSheet  Bucket
	ProfitAndLoss Bucket
	Unclassified  Bucket
}

// Bucket returns the bucket for a placement.
func (t Totals) Bucket(p model.Placement) Bucket {
	switch p {
	case model.PlacementBalanceSheet:
		return t.BalanceSheet
	case model.PlacementProfitAndLoss:
		return t.ProfitAndLoss
	default:
		return t.Unclassified
	}
}

// Subtotal returns the subtotal for a group.
func (t Totals) Subtotal(group string) (Subtotal, bool) {
	for _, s := range t.Groups {
		if strings.EqualFold(s.Group, group) {
			return s, true
		}
	}
	return Subtotal{}, false
}

// Check is the signed closing difference per bucket and overall. Every
// value is zero for books that balance.
type Check struct {
	BalanceSheet  decimal.Decimal
	ProfitAndLoss decimal.Decimal
	Unclassified  decimal.Decimal
	Overall       decimal.Decimal
}

// Balanced reports whether the whole table balances.
func (c Check) Balanced() bool { return c.Overall.IsZero() }

// Check returns the trial-balance differences.
func (t Totals) Check() Check {
	c := Check{
		BalanceSheet:  t.BalanceSheet.Closing,
		ProfitAndLoss: t.ProfitAndLoss.Closing,
		Unclassified:  t.Unclassified.Closing,
	}
	c.Overall = c.BalanceSheet.Add(c.ProfitAndLoss).Add(c.Unclassified)
	return c
}

func (c *Computer) totals(rows []Row) Totals {
	t := Totals{
		BalanceSheet:  Bucket{Placement: model.PlacementBalanceSheet},
		ProfitAndLoss: Bucket{Placement: model.PlacementProfitAndLoss},
		Unclassified:  Bucket{Placement: model.PlacementUnclassified},
	}
	groups := make(map[string]*Subtotal)

	for _, r := range rows {
		var b *Bucket
		switch r.Class.Placement {
		case model.PlacementBalanceSheet:
			b = &t.BalanceSheet
		case model.PlacementProfitAndLoss:
			b = &t.ProfitAndLoss
		default:
			b = &t.Unclassified
		}
		b.Rows++
		b.add(r)

		for _, g := range c.chain(r.Group) {
			k := strings.ToLower(g)
			s, ok := groups[k]
			if !ok {
				s = &Subtotal{Group: g}
				groups[k] = s
			}
			s.Ledgers++
			s.add(r)
		}
	}

	t.Groups = make([]Subtotal, 0, len(groups))
	for _, s := range groups {
		t.Groups = append(t.Groups, *s)
	}
	sort.Slice(t.Groups, func(i, j int) bool {
		return strings.ToLower(t.Groups[i].Group) < strings.ToLower(t.Groups[j].Group)
	})
	return t
}

// chain returns the group and its ancestors.
func (c *Computer) chain(group string) []string {
	if group == "" {
		return nil
	}
	out := []string{group}
	if c.Groups == nil {
		return out
	}
	for _, a := range c.Groups.Ancestors(group) {
		out = append(out, a.Name)
	}
	return out
}
