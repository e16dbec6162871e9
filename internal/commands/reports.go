package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/tallymis/internal/balance"
	"github.com/cleared-dev/tallymis/internal/export"
	"github.com/cleared-dev/tallymis/internal/fiscal"
	"github.com/cleared-dev/tallymis/internal/movement"
	"github.com/cleared-dev/tallymis/internal/performance"
)

func asOfOrToday(t time.Time) time.Time {
	if t.IsZero() {
		return fiscal.Day(time.Now())
	}
	return t
}

func newGroupsCommand(a *app) *cobra.Command {
	var asCSV bool

	cmd := &cobra.Command{
		Use:   "groups",
		Short: "List groups with their resolved classification",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			if asCSV {
				return export.WriteGroups(cmd.OutOrStdout(), s.Groups())
			}
			return printGroups(cmd.OutOrStdout(), s.Groups())
		},
	}
	cmd.Flags().BoolVar(&asCSV, "csv", false, "write CSV instead of a table")
	return cmd
}

func newLedgersCommand(a *app) *cobra.Command {
	var asCSV bool

	cmd := &cobra.Command{
		Use:   "ledgers",
		Short: "List ledgers with their normalized opening balance and classification",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			if asCSV {
				return export.WriteLedgers(cmd.OutOrStdout(), s.Ledgers())
			}
			return printLedgers(cmd.OutOrStdout(), s.Ledgers())
		},
	}
	cmd.Flags().BoolVar(&asCSV, "csv", false, "write CSV instead of a table")
	return cmd
}

func writeTable(cmd *cobra.Command, t balance.Table, asCSV, subtotals bool) error {
	out := cmd.OutOrStdout()
	if asCSV {
		return export.WriteTable(out, t)
	}
	if err := printTable(out, t); err != nil {
		return err
	}
	if subtotals {
		return printSubtotals(out, t.Groups)
	}
	return nil
}

func newTBCommand(a *app) *cobra.Command {
	var (
		w                movement.Window
		asCSV, subtotals bool
	)

	cmd := &cobra.Command{
		Use:   "tb",
		Short: "Static trial balance over a window",
		Long: `Static trial balance: each ledger's master opening balance, the
movement inside the window and the closing balance.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			if w, err = a.yearWindow(w); err != nil {
				return err
			}
			return writeTable(cmd, s.TrialBalance(w), asCSV, subtotals)
		},
	}
	cmd.Flags().Var(dateValue{&w.From}, "from", "first day (default: start of the fiscal year holding --to)")
	cmd.Flags().Var(dateValue{&w.To}, "to", "last day (default: today)")
	cmd.Flags().BoolVar(&asCSV, "csv", false, "write CSV instead of a table")
	cmd.Flags().BoolVar(&subtotals, "subtotals", false, "also print group subtotals")
	return cmd
}

func newYTDCommand(a *app) *cobra.Command {
	var (
		asOf             time.Time
		asCSV, subtotals bool
	)

	cmd := &cobra.Command{
		Use:   "ytd",
		Short: "Year-to-date trial balance from the books start",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			return writeTable(cmd, s.YearToDate(asOfOrToday(asOf)), asCSV, subtotals)
		},
	}
	cmd.Flags().Var(dateValue{&asOf}, "as-of", "last day (default: today)")
	cmd.Flags().BoolVar(&asCSV, "csv", false, "write CSV instead of a table")
	cmd.Flags().BoolVar(&subtotals, "subtotals", false, "also print group subtotals")
	return cmd
}

func newDynamicCommand(a *app) *cobra.Command {
	var (
		w             movement.Window
		overridesPath string
		asCSV         bool
	)

	cmd := &cobra.Command{
		Use:   "dynamic",
		Short: "Trial balance over a window with openings rolled forward",
		Long: `Dynamic trial balance: each ledger's opening is its master opening
plus every movement from the books start to the day before --from.
An overrides file replaces individual openings or closings:

  ledgers:
    Closing Stock:
      opening: "100"
      closing: "150 Dr"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ov, err := balance.LoadOverrides(overridesPath)
			if err != nil {
				return err
			}
			s, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			if w, err = a.yearWindow(w); err != nil {
				return err
			}
			t := s.Dynamic(w, ov)
			if asCSV {
				return export.WriteDynamic(cmd.OutOrStdout(), t)
			}
			return printDynamic(cmd.OutOrStdout(), t)
		},
	}
	cmd.Flags().Var(dateValue{&w.From}, "from", "first day (default: start of the fiscal year holding --to)")
	cmd.Flags().Var(dateValue{&w.To}, "to", "last day (default: today)")
	cmd.Flags().StringVar(&overridesPath, "overrides", "", "YAML file of opening/closing overrides")
	cmd.Flags().BoolVar(&asCSV, "csv", false, "write CSV instead of a table")
	return cmd
}

func newOverviewCommand(a *app) *cobra.Command {
	var (
		asOf  time.Time
		stock performance.Stock
	)

	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Revenue, cost of goods sold, gross and net profit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			o := s.Overview(asOfOrToday(asOf), stock)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: performance to %s\n\n", s.Company(), asOfOrToday(asOf).Format(fiscal.DateFormat))
			return printOverview(cmd.OutOrStdout(), o)
		},
	}
	cmd.Flags().Var(dateValue{&asOf}, "as-of", "last day (default: today)")
	cmd.Flags().Var(amountValue{&stock.Opening}, "opening-stock", "inventory value at the start of the year")
	cmd.Flags().Var(amountValue{&stock.Closing}, "closing-stock", "inventory value at --as-of")
	return cmd
}

func newStatementsCommand(a *app) *cobra.Command {
	var asOf time.Time

	cmd := &cobra.Command{
		Use:   "statements",
		Short: "Profit and loss account and balance sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			day := asOfOrToday(asOf)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: statements to %s\n\n", s.Company(), day.Format(fiscal.DateFormat))
			return printStatements(cmd.OutOrStdout(), s.ProfitAndLoss(day), s.BalanceSheet(day))
		},
	}
	cmd.Flags().Var(dateValue{&asOf}, "as-of", "last day (default: today)")
	return cmd
}

func newIssuesCommand(a *app) *cobra.Command {
	var asCSV, summary bool

	cmd := &cobra.Command{
		Use:   "issues",
		Short: "List problems found while loading and classifying the books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch {
			case asCSV:
				return export.WriteIssues(out, s.Issues())
			case summary:
				return printIssueCounts(out, s.IssueCounts())
			case len(s.Issues()) == 0:
				fmt.Fprintln(out, "No issues.")
				return nil
			default:
				return printIssues(out, s.Issues())
			}
		},
	}
	cmd.Flags().BoolVar(&asCSV, "csv", false, "write CSV instead of a table")
	cmd.Flags().BoolVar(&summary, "summary", false, "count issues by kind")
	return cmd
}
