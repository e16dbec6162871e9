package commands_test

import (
	"encoding/csv"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/tallymis/internal/commands"
	"github.com/cleared-dev/tallymis/internal/export"
)

// global flags pointing at the bundled sample books and a scratch config.
func sample(t *testing.T, args ...string) []string {
	t.Helper()
	cfg := filepath.Join(t.TempDir(), "tallymis.yaml")
	return append([]string{"--config", cfg, "--data", testdata}, args...)
}

func TestVersion(t *testing.T) {
	out, err := runTallymis(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "commit:")
}

func TestYTD(t *testing.T) {
	out, err := runTallymis(t, sample(t, "ytd", "--as-of", "2025-03-31")...)
	require.NoError(t, err)

	assert.Contains(t, out, "Trial balance (ytd) 2024-04-01..2025-03-31")
	assert.Regexp(t, `HDFC Bank\s+Bank Accounts\s+BalanceSheet\s+Asset\s+30000\.00\s+10900\.00\s+40900\.00`, out)
	assert.Regexp(t, `Sales\s+Sales Accounts\s+ProfitAndLoss\s+Income\s+0\.00\s+-30000\.00\s+-30000\.00`, out)
	assert.Regexp(t, `Check\s+balanced`, out)
}

func TestYTD_Subtotals(t *testing.T) {
	out, err := runTallymis(t, sample(t, "ytd", "--as-of", "2025-03-31", "--subtotals")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Group subtotals")
	assert.Regexp(t, `Current Assets\s+3\s+`, out)
}

func TestYTD_CSV(t *testing.T) {
	out, err := runTallymis(t, sample(t, "ytd", "--as-of", "2025-03-31", "--csv")...)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, strings.Split(export.BalanceHeader, ","), records[0])
	assert.Len(t, records, 13)
}

func TestTB_Window(t *testing.T) {
	out, err := runTallymis(t, sample(t, "tb", "--from", "2024-06-01", "--to", "2024-06-30")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Trial balance (static) 2024-06-01..2024-06-30")
	assert.Regexp(t, `HDFC Bank\s+Bank Accounts\s+BalanceSheet\s+Asset\s+30000\.00\s+500\.00\s+30500\.00`, out)
}

func TestTB_EmptyWindow(t *testing.T) {
	_, err := runTallymis(t, sample(t, "tb", "--from", "2024-07-01", "--to", "2024-06-30")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestTB_BadDate(t *testing.T) {
	_, err := runTallymis(t, sample(t, "tb", "--from", "01/06/2024")...)
	require.Error(t, err)
}

func TestDynamic_Overrides(t *testing.T) {
	ovPath := filepath.Join(t.TempDir(), "overrides.yaml")
	require.NoError(t, os.WriteFile(ovPath, []byte("ledgers:\n  hdfc bank:\n    opening: \"100\"\n"), 0o644))

	out, err := runTallymis(t, sample(t, "dynamic", "--from", "2024-05-01", "--to", "2024-05-31", "--overrides", ovPath)...)
	require.NoError(t, err)
	assert.Regexp(t, `HDFC Bank\s+Bank Accounts\s+BalanceSheet\s+30000\.00\s+0\.00\s+100\.00\*\s+10400\.00\s+10500\.00\s`, out)
	assert.Contains(t, out, "* overridden")
}

func TestDynamic_RollsForward(t *testing.T) {
	out, err := runTallymis(t, sample(t, "dynamic", "--from", "2024-06-01", "--to", "2024-06-30", "--csv")...)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	var hdfc []string
	for _, r := range records {
		if r[0] == "HDFC Bank" {
			hdfc = r
		}
	}
	require.NotNil(t, hdfc)
	// fiscal_opening, roll_forward, opening, movement, closing
	assert.Equal(t, []string{"30000.00", "10400.00", "40400.00", "500.00", "40900.00"}, hdfc[5:10])
}

func TestDynamic_BadOverrides(t *testing.T) {
	ovPath := filepath.Join(t.TempDir(), "overrides.yaml")
	require.NoError(t, os.WriteFile(ovPath, []byte("ledgers:\n  Cash:\n    opening: lots\n"), 0o644))

	_, err := runTallymis(t, sample(t, "dynamic", "--overrides", ovPath)...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cash")
}

func TestOverview(t *testing.T) {
	out, err := runTallymis(t, sample(t, "overview", "--as-of", "2025-03-31")...)
	require.NoError(t, err)
	assert.Contains(t, out, "testdata: performance to 2025-03-31")
	assert.Regexp(t, `Revenue\s+30000\.00`, out)
	assert.Regexp(t, `Cost of goods sold\s+20000\.00`, out)
	assert.Regexp(t, `Gross profit\s+9000\.00`, out)
	assert.Regexp(t, `Net profit\s+4500\.00`, out)
}

func TestOverview_Stock(t *testing.T) {
	out, err := runTallymis(t, sample(t, "overview", "--as-of", "2025-03-31",
		"--opening-stock", "2,000", "--closing-stock", "5000")...)
	require.NoError(t, err)
	assert.Regexp(t, `Cost of goods sold\s+17000\.00`, out)
	assert.Regexp(t, `Gross profit\s+12000\.00`, out)
}

func TestStatements(t *testing.T) {
	out, err := runTallymis(t, sample(t, "statements", "--as-of", "2025-03-31")...)
	require.NoError(t, err)
	assert.Regexp(t, `Net profit\s+4500\.00`, out)
	assert.Regexp(t, `Profit carried\s+4500\.00`, out)
	assert.Regexp(t, `Difference\s+0\.00`, out)
}

func TestLedgers(t *testing.T) {
	out, err := runTallymis(t, sample(t, "ledgers")...)
	require.NoError(t, err)
	assert.Regexp(t, `Capital\s+Capital Account\s+BalanceSheet\s+Liability\s+-50000\.00`, out)
}

func TestGroups_CSV(t *testing.T) {
	out, err := runTallymis(t, sample(t, "groups", "--csv")...)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, export.GroupHeader+"\n"))
}

func TestIssues(t *testing.T) {
	out, err := runTallymis(t, sample(t, "issues")...)
	require.NoError(t, err)
	assert.Contains(t, out, "No issues.")

	data := t.TempDir()
	groups, err := os.ReadFile(filepath.Join(testdata, "groups.csv"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(data, "groups.csv"), groups, 0o644))
	ledgers := "name,parent,opening_balance,dr_cr\n" +
		"Bank,Bank Accounts,100,\n" +
		"Bank,Bank Accounts,5,Dr\n" +
		"Lost,Nowhere,0,\n"
	require.NoError(t, os.WriteFile(filepath.Join(data, "ledgers.csv"), []byte(ledgers), 0o644))

	cfg := filepath.Join(t.TempDir(), "tallymis.yaml")
	out, err = runTallymis(t, "--config", cfg, "--data", data, "issues", "--summary")
	require.NoError(t, err)
	assert.Regexp(t, `duplicate\s+1`, out)
	assert.Regexp(t, `unresolved_sign\s+1`, out)
	assert.Regexp(t, `unknown_group\s+1`, out)

	out, err = runTallymis(t, "--config", cfg, "--data", data, "issues", "--csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, export.IssueHeader+"\n"))
	assert.Contains(t, out, "duplicate,Bank,")
}

func TestExport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	out, err := runTallymis(t, sample(t, "export", "--out", dir, "--as-of", "2025-03-31")...)
	require.NoError(t, err)

	for _, name := range []string{
		commands.ExportGroups, commands.ExportLedgers, commands.ExportYTD,
		commands.ExportIssues, commands.ExportTrend, commands.ExportVouchers,
	} {
		path := filepath.Join(dir, name)
		assert.Contains(t, out, path)
		_, err := os.Stat(path)
		require.NoError(t, err, "%s should exist", name)
	}

	ytd, err := os.ReadFile(filepath.Join(dir, commands.ExportYTD))
	require.NoError(t, err)
	assert.Contains(t, string(ytd), "HDFC Bank,Bank Accounts,BalanceSheet,Asset,false,30000.00,10900.00,40900.00")
}

func TestTrend(t *testing.T) {
	out, err := runTallymis(t, sample(t, "trend", "--as-of", "2024-06-15")...)
	require.NoError(t, err)
	assert.Contains(t, out, "testdata: monthly trend for the year holding 2024-06-15")
	assert.Regexp(t, `Apr 2024\s+30000\.00\s+21000\.00\s+0\.00`, out)
	assert.Regexp(t, `May 2024\s+0\.00\s+0\.00\s+5000\.00`, out)
	assert.Regexp(t, `Mar 2025\s+0\.00\s+0\.00\s+0\.00`, out)
}

func TestTrend_CSV(t *testing.T) {
	out, err := runTallymis(t, sample(t, "trend", "--as-of", "2025-01-31", "--csv")...)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 13, "header plus every month")
	assert.Equal(t, []string{"2024-04", "30000.00", "21000.00", "0.00"}, records[1])
}

func TestBestSellers(t *testing.T) {
	out, err := runTallymis(t, sample(t, "best-sellers", "--as-of", "2025-03-31")...)
	require.NoError(t, err)
	assert.Regexp(t, `1\s+Sales\s+Sales Accounts\s+30000\.00`, out)
	assert.NotContains(t, out, "Interest Received")

	out, err = runTallymis(t, sample(t, "best-sellers", "--as-of", "2024-04-01")...)
	require.NoError(t, err)
	assert.Contains(t, out, "No revenue recorded.")

	_, err = runTallymis(t, sample(t, "best-sellers", "--top", "0")...)
	require.Error(t, err)
}

func TestVouchers(t *testing.T) {
	out, err := runTallymis(t, sample(t, "vouchers", "--from", "2024-06-01", "--to", "2024-06-30")...)
	require.NoError(t, err)
	assert.Regexp(t, `2024-06-01\s+7\s+Receipt\s+HDFC Bank\s+500\.00\s+0\.00\s+FD interest`, out)
	assert.Regexp(t, `Interest Received\s+0\.00\s+500\.00`, out)
	assert.NotContains(t, out, "May rent")

	out, err = runTallymis(t, sample(t, "vouchers", "--ledger", "rent", "--csv")...)
	require.NoError(t, err)
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"2024-05-01", "4", "Payment", "Rent", "5000.00", "0.00", "May rent"}, records[1])

	_, err = runTallymis(t, sample(t, "vouchers", "--from", "2024-07-01", "--to", "2024-06-30")...)
	require.Error(t, err)
}

func TestSyncThenCache(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "tallymis.yaml")

	_, err := runTallymis(t, "--config", cfg, "--source", "cache", "ytd")
	require.Error(t, err, "nothing synced yet")

	out, err := runTallymis(t, "--config", cfg, "--data", testdata, "sync")
	require.NoError(t, err)
	assert.Contains(t, out, "Synced testdata from csv")

	out, err = runTallymis(t, "--config", cfg, "--source", "cache", "ytd", "--as-of", "2025-03-31")
	require.NoError(t, err)
	assert.Regexp(t, `HDFC Bank\s+Bank Accounts\s+BalanceSheet\s+Asset\s+30000\.00\s+10900\.00\s+40900\.00`, out)
}

func TestSync_FromCacheRejected(t *testing.T) {
	_, err := runTallymis(t, sample(t, "--source", "cache", "sync")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "other than the cache")
}

func TestUnknownSource(t *testing.T) {
	_, err := runTallymis(t, sample(t, "--source", "ftp", "groups")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown source")
}

func TestInvalidConfig(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "tallymis.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("tally:\n  port: 0\n"), 0o644))

	_, err := runTallymis(t, "--config", cfg, "groups")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tally.port")
}

func TestCompanies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<ENVELOPE><COMPANY NAME="Zeta Traders"/><COMPANY NAME="Acme &amp; Sons"/></ENVELOPE>`)
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	cfg := filepath.Join(t.TempDir(), "tallymis.yaml")
	yaml := "tally:\n  host: " + u.Hostname() + "\n  port: " + u.Port() + "\n"
	require.NoError(t, os.WriteFile(cfg, []byte(yaml), 0o644))

	out, err := runTallymis(t, "--config", cfg, "companies")
	require.NoError(t, err)
	assert.Equal(t, "Acme & Sons\nZeta Traders\n", out)
}

func TestCompanies_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	srv.Close()

	cfg := filepath.Join(t.TempDir(), "tallymis.yaml")
	yaml := "tally:\n  host: " + u.Hostname() + "\n  port: " + u.Port() + "\n  timeout: 2s\n"
	require.NoError(t, os.WriteFile(cfg, []byte(yaml), 0o644))

	_, err = runTallymis(t, "--config", cfg, "companies")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unavailable")
}
