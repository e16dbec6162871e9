package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/tallymis/internal/config"
	"github.com/cleared-dev/tallymis/internal/masters"
	"github.com/cleared-dev/tallymis/internal/model"
)

func newInitCommand() *cobra.Command {
	var company string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new tallymis project",
		Args:  cobra.MaximumNArgs(1),
		// Nothing to load yet.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.OutOrStdout(), absDir, company)
		},
	}

	cmd.Flags().StringVar(&company, "company", "", "company name (required)")
	_ = cmd.MarkFlagRequired("company")

	return cmd
}

func runInit(out io.Writer, dir, company string) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	// Write tallymis.yaml.
	cfg := config.Default(company)
	if err := config.Save(cfgPath, cfg); err != nil {
		return err
	}

	// Seed the data directory with the standard groups and empty ledgers
	// and vouchers.
	snap := model.RawSnapshot{Company: company, Groups: masters.DefaultGroups()}
	if err := masters.Save(filepath.Join(dir, cfg.DataDir), snap); err != nil {
		return fmt.Errorf("writing masters: %w", err)
	}

	// Write .gitignore.
	gitignore := cfg.Cache.Path + "\n.env\nexports/\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	fmt.Fprintf(out, "Initialized tallymis project for %s at %s\n", company, dir)
	return nil
}
