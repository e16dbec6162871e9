package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/tallymis/internal/export"
	"github.com/cleared-dev/tallymis/internal/fiscal"
	"github.com/cleared-dev/tallymis/internal/journal"
	"github.com/cleared-dev/tallymis/internal/movement"
)

func newTrendCommand(a *app) *cobra.Command {
	var (
		asOf  time.Time
		asCSV bool
	)

	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Monthly revenue, cost of goods sold and operating expense for a fiscal year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			day := asOfOrToday(asOf)
			months := s.MonthlyTrend(day)
			if asCSV {
				return export.WriteTrend(cmd.OutOrStdout(), months)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: monthly trend for the year holding %s\n\n", s.Company(), day.Format(fiscal.DateFormat))
			return printTrend(cmd.OutOrStdout(), months)
		},
	}
	cmd.Flags().Var(dateValue{&asOf}, "as-of", "any day in the fiscal year (default: today)")
	cmd.Flags().BoolVar(&asCSV, "csv", false, "write CSV instead of a table")
	return cmd
}

func newBestSellersCommand(a *app) *cobra.Command {
	var (
		asOf  time.Time
		top   int
		asCSV bool
	)

	cmd := &cobra.Command{
		Use:   "best-sellers",
		Short: "Revenue ledgers ranked by year-to-date revenue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if top < 1 {
				return fmt.Errorf("--top must be at least 1, got %d", top)
			}
			s, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			sellers := s.BestSellers(asOfOrToday(asOf), top)
			if asCSV {
				return export.WriteBestSellers(cmd.OutOrStdout(), sellers)
			}
			if len(sellers) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No revenue recorded.")
				return nil
			}
			return printSellers(cmd.OutOrStdout(), sellers)
		},
	}
	cmd.Flags().Var(dateValue{&asOf}, "as-of", "last day (default: today)")
	cmd.Flags().IntVar(&top, "top", 5, "number of ledgers to list")
	cmd.Flags().BoolVar(&asCSV, "csv", false, "write CSV instead of a table")
	return cmd
}

func newVouchersCommand(a *app) *cobra.Command {
	var (
		w      movement.Window
		ledger string
		asCSV  bool
	)

	cmd := &cobra.Command{
		Use:   "vouchers",
		Short: "List day-book entries, one line per ledger entry",
		Long: `List day-book entries with debit and credit columns. Without --from or
--to every voucher is listed; --ledger keeps only one ledger's entries.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !w.From.IsZero() && !w.To.IsZero() && w.Empty() {
				return fmt.Errorf("window %s is empty", w)
			}
			s, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			lines := s.VoucherLines(journal.Filter{Window: w, Ledger: ledger})
			if asCSV {
				return export.WriteLines(cmd.OutOrStdout(), lines)
			}
			if len(lines) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No vouchers.")
				return nil
			}
			return printLines(cmd.OutOrStdout(), lines)
		},
	}
	cmd.Flags().Var(dateValue{&w.From}, "from", "first day")
	cmd.Flags().Var(dateValue{&w.To}, "to", "last day")
	cmd.Flags().StringVar(&ledger, "ledger", "", "only this ledger's entries")
	cmd.Flags().BoolVar(&asCSV, "csv", false, "write CSV instead of a table")
	return cmd
}
