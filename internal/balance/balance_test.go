package balance

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/tallymis/internal/classify"
	"github.com/cleared-dev/tallymis/internal/fiscal"
	"github.com/cleared-dev/tallymis/internal/model"
	"github.com/cleared-dev/tallymis/internal/movement"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var booksStart = fiscal.Date(2024, 4, 1)

func groups() []model.Group {
	return []model.Group{
		{Name: "Current Assets", Parent: "Primary", IsRevenue: model.No, NatureOfGroup: "Assets"},
		{Name: "Bank Accounts", Parent: "Current Assets"},
		{Name: "Current Liabilities", Parent: "Primary", IsRevenue: model.No, NatureOfGroup: "Liabilities"},
		{Name: "Capital Account", Parent: "Primary", IsRevenue: model.No, NatureOfGroup: "Liabilities"},
		{Name: "Sales Accounts", Parent: "Primary", IsRevenue: model.Yes, NatureOfGroup: "Income", AffectsGrossProfit: model.Yes},
		{Name: "Indirect Expenses", Parent: "Primary", IsRevenue: model.Yes, NatureOfGroup: "Expenses", AffectsGrossProfit: model.No},
	}
}

func computer(t *testing.T, ledgers []model.Ledger, vouchers []model.Voucher) *Computer {
	t.Helper()
	e, err := classify.NewEngine(groups())
	require.NoError(t, err)

	var cls []model.ClassifiedLedger
	for _, l := range ledgers {
		cl, _ := e.Ledger(l)
		cls = append(cls, cl)
	}
	return &Computer{
		BooksStart: booksStart,
		Index:      movement.NewIndex(vouchers),
		Ledgers:    cls,
		Groups:     e,
	}
}

func ledger(name, group, opening string) model.Ledger {
	return model.Ledger{Name: name, Group: group, Opening: d(opening), OpeningResolved: true}
}

func voucher(day time.Time, entries ...model.LedgerEntry) model.Voucher {
	return model.Voucher{ID: day.Format(fiscal.DateFormat), Date: day, Type: model.VoucherJournal, Entries: entries}
}

func entry(ledger, amount string) model.LedgerEntry {
	return model.LedgerEntry{Ledger: ledger, Amount: d(amount)}
}

// zeroSumBooks: Assets 100, Liabilities 40, Capital 60, Income 20, Expense 20.
func zeroSumBooks(t *testing.T) *Computer {
	return computer(t,
		[]model.Ledger{
			ledger("Bank", "Bank Accounts", "100"),
			ledger("Creditors", "Current Liabilities", "-40"),
			ledger("Capital", "Capital Account", "-60"),
			ledger("Sales", "Sales Accounts", "0"),
			ledger("Rent", "Indirect Expenses", "0"),
		},
		[]model.Voucher{
			voucher(fiscal.Date(2024, 5, 1), entry("Rent", "20"), entry("Sales", "-20")),
		},
	)
}

func tradingBooks(t *testing.T) *Computer {
	return computer(t,
		[]model.Ledger{
			ledger("Bank", "Bank Accounts", "1000"),
			ledger("Capital", "Capital Account", "-1000"),
			ledger("Sales", "Sales Accounts", "0"),
			ledger("Rent", "Indirect Expenses", "0"),
			{Name: "Stray", Group: "Nowhere"},
		},
		[]model.Voucher{
			voucher(fiscal.Date(2024, 4, 1), entry("Bank", "500"), entry("Sales", "-500")),
			voucher(fiscal.Date(2024, 5, 15), entry("Rent", "200"), entry("Bank", "-200")),
			voucher(fiscal.Date(2024, 6, 10), entry("Bank", "300"), entry("Sales", "-300")),
			voucher(fiscal.Date(2024, 7, 1), entry("Rent", "200"), entry("Bank", "-200")),
		},
	)
}

func TestZeroSumBuckets(t *testing.T) {
	c := zeroSumBooks(t)
	for _, table := range []Table{
		c.YearToDate(fiscal.Date(2025, 3, 31)),
		c.Static(movement.Window{From: booksStart, To: fiscal.Date(2025, 3, 31)}),
	} {
		assert.True(t, table.BalanceSheet.Balanced(), "balance sheet: %s", table.BalanceSheet.Closing)
		assert.True(t, table.ProfitAndLoss.Balanced(), "profit and loss: %s", table.ProfitAndLoss.Closing)
		assert.Equal(t, 3, table.BalanceSheet.Rows)
		assert.Equal(t, 2, table.ProfitAndLoss.Rows)
		assert.True(t, table.Check().Balanced())
		assert.True(t, table.ProfitAndLoss.Movement.IsZero())
	}

	dyn := c.Dynamic(movement.Window{From: booksStart, To: fiscal.Date(2025, 3, 31)}, nil)
	assert.True(t, dyn.BalanceSheet.Balanced())
	assert.True(t, dyn.ProfitAndLoss.Balanced())
}

func TestStatic(t *testing.T) {
	c := tradingBooks(t)
	table := c.Static(movement.Window{From: fiscal.Date(2024, 5, 1), To: fiscal.Date(2024, 6, 30)})
	assert.Equal(t, ModeStatic, table.Mode)

	bank, ok := table.Row("bank")
	require.True(t, ok)
	assert.True(t, d("1000").Equal(bank.Opening), "static opening is the master opening")
	assert.True(t, d("100").Equal(bank.Movement))
	assert.True(t, d("1100").Equal(bank.Closing))
	assert.Equal(t, "Bank Accounts", bank.Group)
	assert.True(t, bank.OpeningResolved)
}

func TestYearToDate(t *testing.T) {
	c := tradingBooks(t)
	table := c.YearToDate(fiscal.Date(2024, 6, 30))
	assert.Equal(t, ModeYTD, table.Mode)
	assert.True(t, booksStart.Equal(table.Window.From))

	bank, _ := table.Row("Bank")
	assert.True(t, d("1600").Equal(bank.Closing))
	sales, _ := table.Row("Sales")
	assert.True(t, d("-800").Equal(sales.Closing))
	assert.True(t, table.Check().Balanced())
}

func TestDynamic_RollForward(t *testing.T) {
	c := tradingBooks(t)
	table := c.Dynamic(movement.Window{From: fiscal.Date(2024, 6, 1), To: fiscal.Date(2024, 6, 30)}, nil)

	bank, ok := table.Row("Bank")
	require.True(t, ok)
	assert.True(t, d("1000").Equal(bank.FiscalOpening))
	assert.True(t, d("300").Equal(bank.RollForward))
	assert.True(t, d("1300").Equal(bank.Opening))
	assert.True(t, d("300").Equal(bank.Movement))
	assert.True(t, d("1600").Equal(bank.Closing))
	assert.False(t, bank.OpeningOverridden)
	assert.False(t, bank.ClosingOverridden)
}

func TestDynamic_DegeneratesToYTD(t *testing.T) {
	c := tradingBooks(t)
	for _, end := range []time.Time{
		booksStart,
		fiscal.Date(2024, 5, 14),
		fiscal.Date(2024, 5, 15),
		fiscal.Date(2024, 6, 30),
		fiscal.Date(2025, 3, 31),
	} {
		ytd := c.YearToDate(end)
		dyn := c.Dynamic(movement.Window{From: booksStart, To: end}, nil)
		require.Len(t, dyn.Rows, len(ytd.Rows))
		for i, r := range dyn.Rows {
			assert.Equal(t, ytd.Rows[i].Ledger, r.Ledger)
			assert.True(t, ytd.Rows[i].Closing.Equal(r.Closing),
				"%s at %s: dynamic %s ytd %s", r.Ledger, end.Format(fiscal.DateFormat), r.Closing, ytd.Rows[i].Closing)
			assert.True(t, r.RollForward.IsZero())
		}
	}
}

func TestDynamic_Overrides(t *testing.T) {
	c := tradingBooks(t)
	w := movement.Window{From: fiscal.Date(2024, 6, 1), To: fiscal.Date(2024, 6, 30)}
	table := c.Dynamic(w, Overrides{
		"BANK":  {Opening: decimal.NewNullDecimal(d("5000"))},
		"Sales": {Closing: decimal.NewNullDecimal(d("-1"))},
	})

	bank, _ := table.Row("Bank")
	assert.True(t, bank.OpeningOverridden)
	assert.True(t, d("5000").Equal(bank.Opening))
	assert.True(t, d("5300").Equal(bank.Closing), "closing follows the overridden opening")

	sales, _ := table.Row("Sales")
	assert.False(t, sales.OpeningOverridden)
	assert.True(t, sales.ClosingOverridden)
	assert.True(t, d("-500").Equal(sales.Opening))
	assert.True(t, d("-1").Equal(sales.Closing))
}

func TestDynamic_EmptyWindow(t *testing.T) {
	c := tradingBooks(t)
	table := c.Dynamic(movement.Window{From: fiscal.Date(2024, 7, 1), To: fiscal.Date(2024, 6, 1)}, nil)
	for _, r := range table.Rows {
		assert.True(t, r.Movement.IsZero(), r.Ledger)
		assert.True(t, r.Opening.Equal(r.Closing), r.Ledger)
	}
}

func TestGroupSubtotals(t *testing.T) {
	c := tradingBooks(t)
	table := c.YearToDate(fiscal.Date(2025, 3, 31))

	bank, ok := table.Subtotal("Bank Accounts")
	require.True(t, ok)
	assert.Equal(t, 1, bank.Ledgers)

	parent, ok := table.Subtotal("current assets")
	require.True(t, ok, "ledgers roll up to every ancestor")
	assert.True(t, bank.Closing.Equal(parent.Closing))
	assert.True(t, d("1400").Equal(parent.Closing))

	names := make([]string, 0, len(table.Groups))
	for _, g := range table.Groups {
		names = append(names, g.Group)
	}
	assert.Equal(t, []string{"Bank Accounts", "Capital Account", "Current Assets", "Indirect Expenses", "Nowhere", "Sales Accounts"}, names)
}

func TestUnclassifiedBucket(t *testing.T) {
	c := tradingBooks(t)
	table := c.YearToDate(fiscal.Date(2025, 3, 31))

	assert.Equal(t, 1, table.Unclassified.Rows)
	un := table.UnclassifiedRows()
	require.Len(t, un, 1)
	assert.Equal(t, "Stray", un[0].Ledger)
	assert.False(t, un[0].OpeningResolved)
	assert.Len(t, table.ClassifiedRows(), 4)
	assert.Equal(t, table.Unclassified, table.Bucket(model.PlacementUnclassified))
}

func TestRowsOrderedByGroupThenLedger(t *testing.T) {
	c := computer(t,
		[]model.Ledger{
			ledger("Zeta Bank", "Bank Accounts", "0"),
			ledger("Alpha Bank", "Bank Accounts", "0"),
			ledger("Capital", "Capital Account", "0"),
		},
		nil,
	)
	table := c.Static(movement.Window{From: booksStart, To: booksStart})

	var got []string
	for _, r := range table.Rows {
		got = append(got, r.Group+"/"+r.Ledger)
	}
	assert.Equal(t, []string{"Bank Accounts/Alpha Bank", "Bank Accounts/Zeta Bank", "Capital Account/Capital"}, got)
}

func TestCheck_Imbalanced(t *testing.T) {
	c := computer(t, []model.Ledger{ledger("Bank", "Bank Accounts", "10")}, nil)
	check := c.YearToDate(booksStart).Check()
	assert.False(t, check.Balanced())
	assert.True(t, d("10").Equal(check.BalanceSheet))
	assert.True(t, d("10").Equal(check.Overall))
}

func TestReadOverrides(t *testing.T) {
	ov, err := ReadOverrides(strings.NewReader(`
ledgers:
  Closing Stock:
    opening: "100"
    closing: "150 Dr"
  Capital:
    closing: "(2,000)"
`))
	require.NoError(t, err)
	require.Len(t, ov, 2)

	stock := ov["Closing Stock"]
	assert.True(t, stock.Opening.Valid)
	assert.True(t, d("100").Equal(stock.Opening.Decimal))
	assert.True(t, d("150").Equal(stock.Closing.Decimal))

	capital := ov["Capital"]
	assert.False(t, capital.Opening.Valid)
	assert.True(t, d("-2000").Equal(capital.Closing.Decimal))
}

func TestReadOverrides_Errors(t *testing.T) {
	_, err := ReadOverrides(strings.NewReader("ledgers:\n  Cash:\n    opening: \"abc\"\n"))
	assert.Error(t, err)

	_, err = ReadOverrides(strings.NewReader("ledger:\n  Cash: {}\n"))
	assert.Error(t, err, "unknown keys are rejected")

	ov, err := ReadOverrides(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, ov)

	ov, err = LoadOverrides("")
	require.NoError(t, err)
	assert.Nil(t, ov)
}
