package commands

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/tallymis/internal/export"
	"github.com/cleared-dev/tallymis/internal/journal"
	"github.com/cleared-dev/tallymis/internal/mis"
	"github.com/cleared-dev/tallymis/internal/movement"
)

// Files written by the export command.
const (
	ExportGroups   = "groups.csv"
	ExportLedgers  = "ledgers.csv"
	ExportYTD      = "trial_balance_ytd.csv"
	ExportIssues   = "issues.csv"
	ExportTrend    = "monthly_trend.csv"
	ExportVouchers = "vouchers.csv"
)

func newExportCommand(a *app) *cobra.Command {
	var (
		outDir string
		asOf   time.Time
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write classification, YTD trial balance, monthly trend, day book and issues as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			files, err := runExport(s, outDir, asOfOrToday(asOf))
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", f)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "exports", "output directory")
	cmd.Flags().Var(dateValue{&asOf}, "as-of", "last day of the trial balance (default: today)")
	return cmd
}

func runExport(s *mis.Session, dir string, asOf time.Time) ([]string, error) {
	jobs := []struct {
		name string
		fill func(io.Writer) error
	}{
		{ExportGroups, func(w io.Writer) error { return export.WriteGroups(w, s.Groups()) }},
		{ExportLedgers, func(w io.Writer) error { return export.WriteLedgers(w, s.Ledgers()) }},
		{ExportYTD, func(w io.Writer) error { return export.WriteTable(w, s.YearToDate(asOf)) }},
		{ExportIssues, func(w io.Writer) error { return export.WriteIssues(w, s.Issues()) }},
		{ExportTrend, func(w io.Writer) error { return export.WriteTrend(w, s.MonthlyTrend(asOf)) }},
		{ExportVouchers, func(w io.Writer) error {
			return export.WriteLines(w, s.VoucherLines(journal.Filter{Window: movement.Window{To: asOf}}))
		}},
	}

	written := make([]string, 0, len(jobs))
	for _, j := range jobs {
		path := filepath.Join(dir, j.name)
		if err := export.ToFile(path, j.fill); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}
