package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/tallymis/internal/movement"
	"github.com/cleared-dev/tallymis/internal/source"
	"github.com/cleared-dev/tallymis/internal/store"
)

func newCompaniesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "companies",
		Short: "List the companies open in Tally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names, err := a.client().Companies(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(names) == 0 {
				fmt.Fprintln(out, "No companies open.")
				return nil
			}
			for _, n := range names {
				fmt.Fprintln(out, n)
			}
			return nil
		},
	}
}

func newSyncCommand(a *app) *cobra.Command {
	var w movement.Window

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Copy a snapshot from the configured source into the local cache",
		Long: `Loads groups, ledgers and vouchers from the configured source and
replaces the cached snapshot with them. Later commands can read the cache
with --source cache while Tally is closed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.EqualFold(strings.TrimSpace(a.cfg.Source), source.NameCache) {
				return errors.New("sync needs a source other than the cache")
			}
			if !w.From.IsZero() || !w.To.IsZero() {
				var err error
				if w, err = a.yearWindow(w); err != nil {
					return err
				}
			}
			src, err := a.lookup(a.cfg.Source, w)
			if err != nil {
				return err
			}

			st, err := store.Open(a.cfg.Cache.Path, a.logger)
			if err != nil {
				return err
			}
			defer st.Close()

			status, issues, err := source.Sync(cmd.Context(), src, st, a.logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Synced %s from %s into %s (sync %s)\n", status.Company, src.Name(), a.cfg.Cache.Path, status.ID)
			if len(issues) > 0 {
				fmt.Fprintf(out, "%d issues while loading:\n", len(issues))
				return printIssues(out, issues)
			}
			return nil
		},
	}

	cmd.Flags().Var(dateValue{&w.From}, "from", "first day-book date to fetch (default: books start)")
	cmd.Flags().Var(dateValue{&w.To}, "to", "last day-book date to fetch (default: today)")

	return cmd
}
