// Package masters reads and writes the group and ledger master files.
package masters

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cleared-dev/tallymis/internal/audit"
	"github.com/cleared-dev/tallymis/internal/model"
	"github.com/cleared-dev/tallymis/internal/normalize"
)

// Headers for groups.csv and ledgers.csv.
const (
	GroupHeader  = "name,parent,is_revenue,nature_of_group,affects_gross_profit"
	LedgerHeader = "name,parent,opening_balance,dr_cr"
)

const (
	numGroupFields = 5
	colName        = 0
	colParent      = 1
	colIsRevenue   = 2
	colNature      = 3
	colAffectsGP   = 4

	numLedgerFields = 4
	colOpening      = 2
	colDrCr         = 3
)

var errEmptyName = errors.New("empty name")

// ReadGroups reads groups.csv. Malformed rows are skipped and reported.
func ReadGroups(r io.Reader) ([]model.Group, []audit.Issue, error) {
	records, err := readAll(r, "groups")
	if err != nil || len(records) == 0 {
		return nil, nil, err
	}

	var (
		groups []model.Group
		issues []audit.Issue
	)
	for i, rec := range records[1:] {
		g, err := UnmarshalGroup(rec)
		if err != nil {
			issues = append(issues, rowIssue("groups.csv", i+2, err))
			continue
		}
		groups = append(groups, g)
	}
	return groups, issues, nil
}

// WriteGroups writes groups.csv including the header.
func WriteGroups(w io.Writer, groups []model.Group) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(GroupHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, g := range groups {
		if err := cw.Write(MarshalGroup(g)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalGroup converts a Group to a CSV row. Absent flags are empty cells.
func MarshalGroup(g model.Group) []string {
	row := make([]string, numGroupFields)
	row[colName] = g.Name
	row[colParent] = g.Parent
	row[colIsRevenue] = g.IsRevenue.String()
	row[colNature] = g.NatureOfGroup
	row[colAffectsGP] = g.AffectsGrossProfit.String()
	return row
}

// UnmarshalGroup converts a CSV row to a Group.
func UnmarshalGroup(record []string) (model.Group, error) {
	if len(record) != numGroupFields {
		return model.Group{}, fmt.Errorf("expected %d fields, got %d", numGroupFields, len(record))
	}

	name := strings.TrimSpace(record[colName])
	if name == "" {
		return model.Group{}, &audit.ParseError{Field: "name", Err: errEmptyName}
	}

	isRevenue, err := normalize.ParseTriState(record[colIsRevenue])
	if err != nil {
		return model.Group{}, fmt.Errorf("is_revenue: %w", err)
	}
	affectsGP, err := normalize.ParseTriState(record[colAffectsGP])
	if err != nil {
		return model.Group{}, fmt.Errorf("affects_gross_profit: %w", err)
	}

	return model.Group{
		Name:               name,
		Parent:             strings.TrimSpace(record[colParent]),
		IsRevenue:          isRevenue,
		NatureOfGroup:      strings.TrimSpace(record[colNature]),
		AffectsGrossProfit: affectsGP,
	}, nil
}

// ReadLedgers reads ledgers.csv. Opening balances are kept as raw text; the
// normalizer resolves them later.
func ReadLedgers(r io.Reader) ([]model.RawLedger, []audit.Issue, error) {
	records, err := readAll(r, "ledgers")
	if err != nil || len(records) == 0 {
		return nil, nil, err
	}

	var (
		ledgers []model.RawLedger
		issues  []audit.Issue
	)
	for i, rec := range records[1:] {
		l, err := UnmarshalLedger(rec)
		if err != nil {
			issues = append(issues, rowIssue("ledgers.csv", i+2, err))
			continue
		}
		ledgers = append(ledgers, l)
	}
	return ledgers, issues, nil
}

// WriteLedgers writes ledgers.csv including the header.
func WriteLedgers(w io.Writer, ledgers []model.RawLedger) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(LedgerHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, l := range ledgers {
		if err := cw.Write(MarshalLedger(l)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalLedger converts a RawLedger to a CSV row.
func MarshalLedger(l model.RawLedger) []string {
	row := make([]string, numLedgerFields)
	row[colName] = l.Name
	row[colParent] = l.Parent
	row[colOpening] = l.Opening
	row[colDrCr] = l.DrCr
	return row
}

// UnmarshalLedger converts a CSV row to a RawLedger.
func UnmarshalLedger(record []string) (model.RawLedger, error) {
	if len(record) != numLedgerFields {
		return model.RawLedger{}, fmt.Errorf("expected %d fields, got %d", numLedgerFields, len(record))
	}

	name := strings.TrimSpace(record[colName])
	if name == "" {
		return model.RawLedger{}, &audit.ParseError{Field: "name", Err: errEmptyName}
	}

	return model.RawLedger{
		Name:    name,
		Parent:  strings.TrimSpace(record[colParent]),
		Opening: strings.TrimSpace(record[colOpening]),
		DrCr:    strings.TrimSpace(record[colDrCr]),
	}, nil
}

func readAll(r io.Reader, what string) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s CSV: %w", what, err)
	}
	return records, nil
}

func rowIssue(file string, row int, err error) audit.Issue {
	return audit.Issue{
		Kind:    audit.KindParse,
		Subject: fmt.Sprintf("%s row %d", file, row),
		Err:     err,
	}
}
