package tally

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tallymis/internal/audit"
	"github.com/cleared-dev/tallymis/internal/model"
	"github.com/cleared-dev/tallymis/internal/normalize"
)

// decodeAll decodes every element with the given local name, wherever it
// appears in the document.
func decodeAll[T any](data []byte, element string) ([]T, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	dec.Entity = xml.HTMLEntity

	var out []T
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("decoding %s: %w", element, err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != element {
			continue
		}
		var v T
		if err := dec.DecodeElement(&v, &se); err != nil {
			return out, fmt.Errorf("decoding %s: %w", element, err)
		}
		out = append(out, v)
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

type xmlCompany struct {
	NameAttr string `xml:"NAME,attr"`
	Name     string `xml:"NAME"`
}

func parseCompanies(data []byte) ([]string, error) {
	rows, err := decodeAll[xmlCompany](data, "COMPANY")
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(rows))
	var names []string
	for _, r := range rows {
		name := firstNonEmpty(r.NameAttr, r.Name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

type xmlLedger struct {
	NameAttr   string `xml:"NAME,attr"`
	Name       string `xml:"NAME.LIST>NAME"`
	ParentAttr string `xml:"PARENT,attr"`
	Parent     string `xml:"PARENT"`
	Opening    string `xml:"OPENINGBALANCE"`
}

func parseLedgers(data []byte) ([]model.RawLedger, error) {
	rows, err := decodeAll[xmlLedger](data, "LEDGER")
	if err != nil {
		return nil, err
	}
	out := make([]model.RawLedger, 0, len(rows))
	for _, r := range rows {
		name := firstNonEmpty(r.NameAttr, r.Name)
		if name == "" {
			continue
		}
		out = append(out, model.RawLedger{
			Name:    name,
			Parent:  firstNonEmpty(r.Parent, r.ParentAttr),
			Opening: strings.TrimSpace(r.Opening),
		})
	}
	return out, nil
}

type xmlGroup struct {
	NameAttr           string `xml:"NAME,attr"`
	Name               string `xml:"NAME.LIST>NAME"`
	ParentAttr         string `xml:"PARENT,attr"`
	Parent             string `xml:"PARENT"`
	IsRevenue          string `xml:"ISREVENUE"`
	AffectsGrossProfit string `xml:"AFFECTSGROSSPROFIT"`
	NatureOfGroup      string `xml:"NATUREOFGROUP"`
}

// parseGroups decodes group masters. A flag that cannot be read is reported
// and left absent so classification falls through to the next rule.
func parseGroups(data []byte) ([]model.Group, []audit.Issue, error) {
	rows, err := decodeAll[xmlGroup](data, "GROUP")
	if err != nil {
		return nil, nil, err
	}
	var issues []audit.Issue
	out := make([]model.Group, 0, len(rows))
	for _, r := range rows {
		name := firstNonEmpty(r.NameAttr, r.Name)
		if name == "" {
			continue
		}
		g := model.Group{
			Name:          name,
			Parent:        firstNonEmpty(r.Parent, r.ParentAttr),
			NatureOfGroup: strings.TrimSpace(r.NatureOfGroup),
		}
		if g.IsRevenue, err = normalize.ParseTriState(r.IsRevenue); err != nil {
			issues = append(issues, audit.Issue{Kind: audit.KindParse, Subject: name, Err: fmt.Errorf("is_revenue: %w", err)})
		}
		if g.AffectsGrossProfit, err = normalize.ParseTriState(r.AffectsGrossProfit); err != nil {
			issues = append(issues, audit.Issue{Kind: audit.KindParse, Subject: name, Err: fmt.Errorf("affects_gross_profit: %w", err)})
		}
		out = append(out, g)
	}
	return out, issues, nil
}

type xmlEntry struct {
	Ledger           string `xml:"LEDGERNAME"`
	Amount           string `xml:"AMOUNT"`
	IsDeemedPositive string `xml:"ISDEEMEDPOSITIVE"`
}

type xmlVoucher struct {
	VchType       string     `xml:"VCHTYPE,attr"`
	GUID          string     `xml:"GUID"`
	Number        string     `xml:"VOUCHERNUMBER"`
	Date          string     `xml:"DATE"`
	Type          string     `xml:"VOUCHERTYPENAME"`
	Narration     string     `xml:"NARRATION"`
	AllEntries    []xmlEntry `xml:"ALLLEDGERENTRIES.LIST"`
	LedgerEntries []xmlEntry `xml:"LEDGERENTRIES.LIST"`
}

// parseDayBook decodes vouchers. A voucher with an unreadable date or
// amount is skipped and reported.
func parseDayBook(data []byte) ([]model.Voucher, []audit.Issue, error) {
	rows, err := decodeAll[xmlVoucher](data, "VOUCHER")
	if err != nil {
		return nil, nil, err
	}
	var (
		out    []model.Voucher
		issues []audit.Issue
	)
	for i, r := range rows {
		id := voucherID(r, i)
		v, err := toVoucher(id, r)
		if err != nil {
			issues = append(issues, audit.Issue{Kind: audit.KindParse, Subject: "voucher " + id, Err: err})
			continue
		}
		out = append(out, v)
	}
	return out, issues, nil
}

func voucherID(r xmlVoucher, i int) string {
	if id := firstNonEmpty(r.GUID); id != "" {
		return id
	}
	if n := firstNonEmpty(r.Number); n != "" {
		return firstNonEmpty(r.Type, r.VchType) + "/" + n
	}
	return "#" + strconv.Itoa(i+1)
}

func toVoucher(id string, r xmlVoucher) (model.Voucher, error) {
	date, err := parseDate(r.Date)
	if err != nil {
		return model.Voucher{}, err
	}
	v := model.Voucher{
		ID:        id,
		Date:      date,
		Type:      firstNonEmpty(r.Type, r.VchType),
		Narration: strings.TrimSpace(r.Narration),
	}
	entries := r.AllEntries
	if len(entries) == 0 {
		entries = r.LedgerEntries
	}
	for _, e := range entries {
		amount, err := signedAmount(e)
		if err != nil {
			return model.Voucher{}, err
		}
		v.Entries = append(v.Entries, model.LedgerEntry{
			Ledger: strings.TrimSpace(e.Ledger),
			Amount: amount,
		})
	}
	return v, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(DateLayout, s)
	if err != nil || len(s) != len(DateLayout) {
		return time.Time{}, &audit.ParseError{Field: "date", Value: s, Err: errors.New("want YYYYMMDD")}
	}
	return t, nil
}

// signedAmount applies the deemed-positive flag: Yes is a credit and No a
// debit whatever the amount's sign. Without the flag the amount's own sign
// stands.
func signedAmount(e xmlEntry) (decimal.Decimal, error) {
	amount, err := normalize.ParseNumber(e.Amount)
	if err != nil {
		return decimal.Zero, err
	}
	switch strings.ToLower(strings.TrimSpace(e.IsDeemedPositive)) {
	case "yes", "y", "true":
		return amount.Abs().Neg(), nil
	case "no", "n", "false":
		return amount.Abs(), nil
	default:
		return amount, nil
	}
}
