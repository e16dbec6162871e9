package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cleared-dev/tallymis/internal/audit"
	"github.com/cleared-dev/tallymis/internal/log"
	"github.com/cleared-dev/tallymis/internal/masters"
	"github.com/cleared-dev/tallymis/internal/model"
	"github.com/cleared-dev/tallymis/internal/store"
	"github.com/cleared-dev/tallymis/internal/tally"
)

// Built-in source names.
const (
	NameCSV   = "csv"
	NameCache = "cache"
	NameTally = "tally"
)

// CSV reads groups.csv, ledgers.csv and vouchers.csv from a directory.
// The company defaults to the directory's name.
type CSV struct {
	Dir     string
	Company string
}

func (CSV) Name() string { return NameCSV }

// Load reads the masters directory.
func (c CSV) Load(ctx context.Context) (model.RawSnapshot, []audit.Issue, error) {
	if err := ctx.Err(); err != nil {
		return model.RawSnapshot{}, nil, err
	}
	snap, issues, err := masters.Load(c.Dir)
	if err == nil && c.Company != "" {
		snap.Company = c.Company
	}
	return snap, issues, err
}

// Cache reads the snapshot stored by the last sync.
type Cache struct {
	Path   string
	Logger *slog.Logger
}

func (Cache) Name() string { return NameCache }

// Load opens the cache, reads the snapshot and closes it again.
func (c Cache) Load(ctx context.Context) (model.RawSnapshot, []audit.Issue, error) {
	st, err := store.Open(c.Path, c.Logger)
	if err != nil {
		return model.RawSnapshot{}, nil, err
	}
	defer st.Close()

	snap, err := st.Load(ctx)
	if err != nil {
		return model.RawSnapshot{}, nil, fmt.Errorf("loading cache %s: %w", c.Path, err)
	}
	return snap, nil, nil
}

// Tally fetches a live snapshot from the bookkeeping system.
type Tally struct {
	Client  *tally.Client
	Company string
	From    time.Time
	To      time.Time
}

func (Tally) Name() string { return NameTally }

// Load fetches groups, ledgers and the day book for From..To.
func (t Tally) Load(ctx context.Context) (model.RawSnapshot, []audit.Issue, error) {
	if t.Client == nil {
		return model.RawSnapshot{}, nil, errors.New("tally source: no client configured")
	}
	if t.Company == "" {
		return model.RawSnapshot{}, nil, errors.New("tally source: no company configured")
	}
	return t.Client.Fetch(ctx, t.Company, t.From, t.To)
}

// Options configure the built-in sources.
type Options struct {
	DataDir   string
	CachePath string
	Client    *tally.Client
	Company   string
	From, To  time.Time
	Logger    *slog.Logger
}

// DefaultRegistry returns a registry with every built-in source.
func DefaultRegistry(opts Options) *Registry {
	r := NewRegistry()
	r.Register(CSV{Dir: opts.DataDir, Company: opts.Company})
	r.Register(Cache{Path: opts.CachePath, Logger: opts.Logger})
	r.Register(Tally{Client: opts.Client, Company: opts.Company, From: opts.From, To: opts.To})
	return r
}

// Sync loads a snapshot from src and replaces the cache with it.
func Sync(ctx context.Context, src Source, st *store.Store, logger *slog.Logger) (store.SyncStatus, []audit.Issue, error) {
	logger = log.WithComponent(logger, log.ComponentSource)

	snap, issues, err := src.Load(ctx)
	if err != nil {
		return store.SyncStatus{}, nil, fmt.Errorf("loading from %s: %w", src.Name(), err)
	}
	if snap.FetchedAt.IsZero() {
		snap.FetchedAt = time.Now().UTC()
	}
	status, err := st.Save(ctx, snap)
	if err != nil {
		return store.SyncStatus{}, issues, err
	}
	logger.Info("sync complete",
		log.FieldSource, src.Name(),
		log.FieldSync, status.ID.String(),
		log.FieldIssues, len(issues),
	)
	return status, issues, nil
}
