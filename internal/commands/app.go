package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/tallymis/internal/audit"
	"github.com/cleared-dev/tallymis/internal/config"
	"github.com/cleared-dev/tallymis/internal/fiscal"
	"github.com/cleared-dev/tallymis/internal/log"
	"github.com/cleared-dev/tallymis/internal/mis"
	"github.com/cleared-dev/tallymis/internal/model"
	"github.com/cleared-dev/tallymis/internal/movement"
	"github.com/cleared-dev/tallymis/internal/normalize"
	"github.com/cleared-dev/tallymis/internal/source"
	"github.com/cleared-dev/tallymis/internal/tally"
)

// app carries the global flags and the configuration resolved from them.
type app struct {
	configPath string
	source     string
	dataDir    string

	cfg    *config.Config
	logger *slog.Logger
}

// setup loads .env, the config file and TALLYMIS_* overrides, then applies
// the global flags. Relative paths in the config file are taken from the
// config file's directory.
func (a *app) setup(cmd *cobra.Command) error {
	base := filepath.Dir(a.configPath)
	if err := config.LoadDotEnv(filepath.Join(base, ".env")); err != nil {
		return err
	}

	cfg, err := config.Load(a.configPath)
	if errors.Is(err, fs.ErrNotExist) {
		cfg, err = config.Default(""), nil
	}
	if err != nil {
		return err
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return err
	}

	cfg.DataDir = resolve(base, cfg.DataDir)
	cfg.Cache.Path = resolve(base, cfg.Cache.Path)
	if a.source != "" {
		cfg.Source = a.source
	}
	if a.dataDir != "" {
		cfg.DataDir = a.dataDir
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	lc := cfg.Logger()
	lc.Output = cmd.ErrOrStderr()
	logger, err := log.New(lc)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = log.WithComponent(logger, log.ComponentCLI)
	return nil
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

func (a *app) client() *tally.Client {
	return tally.NewClient(a.cfg.TallyURL(), a.cfg.Tally.Timeout, a.logger)
}

// fetchWindow is the day-book range requested from the gateway: the books
// start (or the current fiscal year) through today.
func (a *app) fetchWindow() (movement.Window, error) {
	ys, err := a.cfg.YearStart()
	if err != nil {
		return movement.Window{}, err
	}
	from, err := a.cfg.BooksStart()
	if err != nil {
		return movement.Window{}, err
	}
	today := fiscal.Day(time.Now())
	if from.IsZero() {
		from = fiscal.YearStart(today, ys)
	}
	return movement.Window{From: from, To: today}, nil
}

func (a *app) registry(w movement.Window) *source.Registry {
	return source.DefaultRegistry(source.Options{
		DataDir:   a.cfg.DataDir,
		CachePath: a.cfg.Cache.Path,
		Client:    a.client(),
		Company:   a.cfg.Company,
		From:      w.From,
		To:        w.To,
		Logger:    a.logger,
	})
}

// lookup resolves the named source against the configured registry.
func (a *app) lookup(name string, w movement.Window) (source.Source, error) {
	if w.From.IsZero() {
		var err error
		if w, err = a.fetchWindow(); err != nil {
			return nil, err
		}
	}
	return a.registry(w).Lookup(name)
}

// load reads a raw snapshot from the configured source.
func (a *app) load(ctx context.Context) (model.RawSnapshot, []audit.Issue, error) {
	src, err := a.lookup(a.cfg.Source, movement.Window{})
	if err != nil {
		return model.RawSnapshot{}, nil, err
	}
	snap, issues, err := src.Load(ctx)
	if err != nil {
		return model.RawSnapshot{}, nil, fmt.Errorf("loading from %s: %w", src.Name(), err)
	}
	return snap, issues, nil
}

// session loads the snapshot and builds a reporting session over it.
func (a *app) session(ctx context.Context) (*mis.Session, error) {
	snap, issues, err := a.load(ctx)
	if err != nil {
		return nil, err
	}

	conv, err := a.cfg.Convention()
	if err != nil {
		return nil, err
	}
	ys, err := a.cfg.YearStart()
	if err != nil {
		return nil, err
	}
	bs, err := a.cfg.BooksStart()
	if err != nil {
		return nil, err
	}

	s, err := mis.NewSession(snap, mis.Options{
		Convention: conv,
		YearStart:  ys,
		BooksStart: bs,
		Logger:     a.logger,
		LoadIssues: issues,
	})
	if err != nil {
		return nil, err
	}
	a.logger.Info("session ready",
		log.FieldSession, s.ID().String(),
		log.FieldCompany, s.Company(),
		log.FieldSource, a.cfg.Source,
		log.FieldIssues, len(s.Issues()),
	)
	return s, nil
}

// yearWindow fills in a missing From with the start of the fiscal year that
// holds To, and a missing To with today.
func (a *app) yearWindow(w movement.Window) (movement.Window, error) {
	if w.To.IsZero() {
		w.To = fiscal.Day(time.Now())
	}
	if w.From.IsZero() {
		ys, err := a.cfg.YearStart()
		if err != nil {
			return w, err
		}
		w.From = fiscal.YearStart(w.To, ys)
	}
	if w.Empty() {
		return w, fmt.Errorf("window %s is empty", w)
	}
	return w, nil
}

// dateValue is a pflag.Value for YYYY-MM-DD dates.
type dateValue struct{ t *time.Time }

func (d dateValue) String() string {
	if d.t == nil || d.t.IsZero() {
		return ""
	}
	return d.t.Format(fiscal.DateFormat)
}

func (d dateValue) Set(s string) error {
	t, err := fiscal.ParseDate(s)
	if err != nil {
		return err
	}
	*d.t = t
	return nil
}

func (dateValue) Type() string { return "date" }

// amountValue is a pflag.Value for figures in any form a voucher amount
// accepts, e.g. "1,500.00" or "1500 Dr".
type amountValue struct{ d *decimal.Decimal }

func (a amountValue) String() string {
	if a.d == nil {
		return "0"
	}
	return a.d.String()
}

func (a amountValue) Set(s string) error {
	d, err := normalize.ParseNumber(s)
	if err != nil {
		return err
	}
	*a.d = d
	return nil
}

func (amountValue) Type() string { return "amount" }
