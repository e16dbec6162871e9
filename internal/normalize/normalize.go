// Package normalize turns raw bookkeeping figures into signed decimals.
// Dr is positive and Cr is negative throughout.
package normalize

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tallymis/internal/audit"
	"github.com/cleared-dev/tallymis/internal/model"
)

// Convention says how a bare figure with no Dr/Cr indicator is read.
type Convention string

const (
	// ConventionStrict refuses to guess: a bare unsigned non-zero figure is
	// left unresolved.
	ConventionStrict Convention = "strict"
	// ConventionSigned reads the figure's own sign, negative meaning Cr.
	ConventionSigned Convention = "signed"
)

// ParseConvention parses a convention name from configuration.
func ParseConvention(s string) (Convention, error) {
	switch Convention(strings.ToLower(strings.TrimSpace(s))) {
	case "", ConventionStrict:
		return ConventionStrict, nil
	case ConventionSigned:
		return ConventionSigned, nil
	default:
		return "", fmt.Errorf("unknown sign convention %q", s)
	}
}

type side int

const (
	sideNone side = iota
	sideDr
	sideCr
)

// RawBalance is an opening balance as the source reported it.
type RawBalance struct {
	Text string // "1,200.00", "-1200", "1200 Cr", "(1200)"
	Tag  string // explicit Dr/Cr column, may be empty
}

// Balance is a normalized signed balance.
type Balance struct {
	Amount   decimal.Decimal
	Resolved bool
}

// String renders the balance with a trailing Dr/Cr indicator so that
// normalizing the rendered text yields the same Balance.
func (b Balance) String() string {
	if !b.Resolved {
		return "unresolved"
	}
	if b.Amount.IsZero() {
		return "0.00"
	}
	places := int32(2)
	if e := -b.Amount.Exponent(); e > places {
		places = e
	}
	s := b.Amount.Abs().StringFixed(places)
	if b.Amount.IsNegative() {
		return s + " Cr"
	}
	return s + " Dr"
}

// Normalizer resolves raw balances under one sign convention.
type Normalizer struct {
	Convention Convention
}

// New returns a Normalizer for the given convention.
func New(c Convention) Normalizer {
	return Normalizer{Convention: c}
}

// Normalize resolves the sign of a raw balance. An explicit tag wins over an
// inline indicator, which wins over the figure's own sign. When none of those
// decide and the convention is strict, the balance is zero and unresolved.
func (n Normalizer) Normalize(raw RawBalance) (Balance, error) {
	tag, err := parseSide(raw.Tag)
	if err != nil {
		return Balance{}, &audit.ParseError{Field: "dr_cr", Value: raw.Tag, Err: err}
	}

	body, inline := splitInline(strings.TrimSpace(raw.Text))
	num, signed, err := parseSigned(body)
	if err != nil {
		return Balance{}, &audit.ParseError{Field: "opening_balance", Value: raw.Text, Err: err}
	}
	if num.IsZero() {
		return Balance{Amount: decimal.Zero, Resolved: true}, nil
	}

	switch {
	case tag != sideNone:
		return Balance{Amount: apply(tag, num), Resolved: true}, nil
	case inline != sideNone:
		return Balance{Amount: apply(inline, num), Resolved: true}, nil
	case signed, n.Convention == ConventionSigned:
		return Balance{Amount: num, Resolved: true}, nil
	default:
		return Balance{Amount: decimal.Zero, Resolved: false}, nil
	}
}

// Renormalize runs an already-normalized balance through Normalize again.
// For a resolved balance the result is identical.
func (n Normalizer) Renormalize(b Balance) (Balance, error) {
	if !b.Resolved {
		return b, nil
	}
	return n.Normalize(RawBalance{Text: b.String()})
}

// Ledger normalizes a raw ledger master. On a parse error the ledger is still
// returned, with a zero unresolved opening, alongside the error.
func (n Normalizer) Ledger(raw model.RawLedger) (model.Ledger, error) {
	l := model.Ledger{
		Name:  strings.TrimSpace(raw.Name),
		Group: strings.TrimSpace(raw.Parent),
	}
	b, err := n.Normalize(RawBalance{Text: raw.Opening, Tag: raw.DrCr})
	if err != nil {
		l.Opening = decimal.Zero
		return l, err
	}
	l.Opening = b.Amount
	l.OpeningResolved = b.Resolved
	return l, nil
}

func apply(s side, num decimal.Decimal) decimal.Decimal {
	if s == sideCr {
		return num.Abs().Neg()
	}
	return num.Abs()
}

func parseSide(tag string) (side, error) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "":
		return sideNone, nil
	case "dr", "dr.", "debit", "d":
		return sideDr, nil
	case "cr", "cr.", "credit", "c":
		return sideCr, nil
	default:
		return sideNone, fmt.Errorf("unknown indicator %q", tag)
	}
}

// splitInline strips a trailing Dr/Cr indicator from text.
func splitInline(text string) (string, side) {
	lower := strings.ToLower(text)
	for _, suffix := range []struct {
		word string
		side side
	}{
		{"dr.", sideDr}, {"cr.", sideCr}, {"dr", sideDr}, {"cr", sideCr},
	} {
		if strings.HasSuffix(lower, suffix.word) {
			return strings.TrimSpace(text[:len(text)-len(suffix.word)]), suffix.side
		}
	}
	return text, sideNone
}

// parseSigned parses a figure and reports whether it carried its own sign.
func parseSigned(text string) (decimal.Decimal, bool, error) {
	s := strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	if s == "" || s == "-" {
		return decimal.Zero, false, nil
	}
	negative := false
	signed := false
	switch {
	case strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")"):
		s = strings.TrimSpace(s[1 : len(s)-1])
		negative, signed = true, true
	case strings.HasPrefix(s, "-"):
		s = strings.TrimSpace(s[1:])
		negative, signed = true, true
	case strings.HasPrefix(s, "+"):
		s = strings.TrimSpace(s[1:])
		signed = true
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false, err
	}
	if d.IsNegative() {
		return decimal.Zero, false, fmt.Errorf("double sign in %q", text)
	}
	if negative {
		d = d.Neg()
	}
	return d, signed, nil
}

// ParseNumber parses a figure that already carries its sign, as voucher
// amounts do. Empty text is zero; malformed text is a *audit.ParseError.
func ParseNumber(text string) (decimal.Decimal, error) {
	body, inline := splitInline(strings.TrimSpace(text))
	d, _, err := parseSigned(body)
	if err != nil {
		return decimal.Zero, &audit.ParseError{Field: "amount", Value: text, Err: err}
	}
	if inline != sideNone && !d.IsZero() {
		d = apply(inline, d)
	}
	return d, nil
}

// ParseTriState parses a Yes/No flag; empty text is Absent.
func ParseTriState(text string) (model.TriState, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "":
		return model.Absent, nil
	case "yes", "y", "true", "1":
		return model.Yes, nil
	case "no", "n", "false", "0":
		return model.No, nil
	default:
		return model.Absent, &audit.ParseError{Field: "flag", Value: text}
	}
}
