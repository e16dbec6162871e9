package journal

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cleared-dev/tallymis/internal/audit"
	"github.com/cleared-dev/tallymis/internal/fiscal"
	"github.com/cleared-dev/tallymis/internal/model"
	"github.com/cleared-dev/tallymis/internal/normalize"
)

// Header is the CSV header for vouchers.csv. Each row is one ledger entry;
// consecutive rows sharing a voucher_id form one voucher.
const Header = "voucher_id,date,voucher_type,ledger,amount,item,narration"

const (
	numFields  = 7
	colID      = 0
	colDate    = 1
	colType    = 2
	colLedger  = 3
	colAmount  = 4
	colItem    = 5
	colNarr    = 6
	subjectRow = "row %d"
)

// ReadVouchers reads vouchers.csv. A malformed row is skipped and reported
// as an issue; the rest of the file is still read. The error is reserved for
// failures that make the whole file unreadable.
func ReadVouchers(r io.Reader) ([]model.Voucher, []audit.Issue, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading vouchers CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}

	var (
		vouchers []model.Voucher
		issues   []audit.Issue
	)
	for i, rec := range records[1:] {
		row := i + 2
		v, e, err := UnmarshalEntry(rec)
		if err != nil {
			issues = append(issues, audit.Issue{
				Kind:    audit.KindParse,
				Subject: fmt.Sprintf(subjectRow, row),
				Err:     err,
			})
			continue
		}
		if n := len(vouchers); n > 0 && vouchers[n-1].ID == v.ID {
			vouchers[n-1].Entries = append(vouchers[n-1].Entries, e)
			continue
		}
		v.Entries = []model.LedgerEntry{e}
		vouchers = append(vouchers, v)
	}
	return vouchers, issues, nil
}

// WriteVouchers writes vouchers.csv including the header.
func WriteVouchers(w io.Writer, vouchers []model.Voucher) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	row := 2
	for _, v := range vouchers {
		for _, e := range v.Entries {
			if err := cw.Write(MarshalEntry(v, e)); err != nil {
				return fmt.Errorf("writing row %d: %w", row, err)
			}
			row++
		}
	}
	return cw.Error()
}

// MarshalEntry converts one entry of a voucher to a CSV row.
func MarshalEntry(v model.Voucher, e model.LedgerEntry) []string {
	row := make([]string, numFields)
	row[colID] = v.ID
	row[colDate] = v.Date.Format(fiscal.DateFormat)
	row[colType] = v.Type
	row[colLedger] = e.Ledger
	row[colAmount] = e.Amount.String()
	row[colItem] = e.Item
	row[colNarr] = v.Narration
	return row
}

// UnmarshalEntry converts a CSV row to the voucher header it belongs to and
// its entry. The returned voucher has no entries.
func UnmarshalEntry(record []string) (model.Voucher, model.LedgerEntry, error) {
	if len(record) != numFields {
		return model.Voucher{}, model.LedgerEntry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	id := strings.TrimSpace(record[colID])
	if id == "" {
		return model.Voucher{}, model.LedgerEntry{}, &audit.ParseError{Field: "voucher_id", Err: errors.New("empty")}
	}

	date, err := fiscal.ParseDate(strings.TrimSpace(record[colDate]))
	if err != nil {
		return model.Voucher{}, model.LedgerEntry{}, &audit.ParseError{Field: "date", Value: record[colDate], Err: err}
	}

	amount, err := normalize.ParseNumber(record[colAmount])
	if err != nil {
		return model.Voucher{}, model.LedgerEntry{}, err
	}

	v := model.Voucher{
		ID:        id,
		Date:      date,
		Type:      strings.TrimSpace(record[colType]),
		Narration: record[colNarr],
	}
	e := model.LedgerEntry{
		Ledger: strings.TrimSpace(record[colLedger]),
		Amount: amount,
		Item:   record[colItem],
	}
	return v, e, nil
}
