// Package store caches the latest snapshot of the books in a SQLite file so
// reports can run without the bookkeeping system online. Every sync replaces
// the previous snapshot wholesale.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	_ "modernc.org/sqlite"

	"github.com/cleared-dev/tallymis/internal/fiscal"
	"github.com/cleared-dev/tallymis/internal/log"
	"github.com/cleared-dev/tallymis/internal/model"
	"github.com/cleared-dev/tallymis/internal/normalize"
)

// ErrEmpty is returned when nothing has been synced yet.
var ErrEmpty = errors.New("store: no snapshot synced yet")

// SyncStatus describes the cached snapshot.
type SyncStatus struct {
	ID        uuid.UUID
	Company   string
	FetchedAt time.Time
	SyncedAt  time.Time
}

// Store is the SQLite snapshot cache.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// Open opens or creates the cache at path and migrates its schema.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(path); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:     db,
		logger: log.WithComponent(logger, log.ComponentStore),
		now:    time.Now,
	}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save replaces the cached snapshot with snap in one transaction.
func (s *Store) Save(ctx context.Context, snap model.RawSnapshot) (SyncStatus, error) {
	status := SyncStatus{
		ID:        uuid.New(),
		Company:   snap.Company,
		FetchedAt: snap.FetchedAt.UTC(),
		SyncedAt:  s.now().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SyncStatus{}, fmt.Errorf("begin sync: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, table := range []string{"entries", "vouchers", "ledgers", "account_groups", "sync_status"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return SyncStatus{}, fmt.Errorf("clear %s: %w", table, err)
		}
	}
	if err := insertGroups(ctx, tx, snap.Groups); err != nil {
		return SyncStatus{}, err
	}
	if err := insertLedgers(ctx, tx, snap.Ledgers); err != nil {
		return SyncStatus{}, err
	}
	if err := insertVouchers(ctx, tx, snap.Vouchers); err != nil {
		return SyncStatus{}, err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sync_status (id, sync_id, company, fetched_at, synced_at) VALUES (1, ?, ?, ?, ?)`,
		status.ID.String(), status.Company, formatTime(status.FetchedAt), formatTime(status.SyncedAt),
	); err != nil {
		return SyncStatus{}, fmt.Errorf("record sync: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return SyncStatus{}, fmt.Errorf("commit sync: %w", err)
	}

	s.logger.Info("snapshot cached",
		log.FieldSync, status.ID.String(),
		log.FieldCompany, status.Company,
		log.FieldGroups, len(snap.Groups),
		log.FieldLedgers, len(snap.Ledgers),
		log.FieldVouchers, len(snap.Vouchers),
	)
	return status, nil
}

func insertGroups(ctx context.Context, tx *sql.Tx, groups []model.Group) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO account_groups (position, name, parent, is_revenue, nature_of_group, affects_gross_profit) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare groups: %w", err)
	}
	defer stmt.Close()
	for i, g := range groups {
		if _, err := stmt.ExecContext(ctx, i, g.Name, g.Parent, g.IsRevenue.String(), g.NatureOfGroup, g.AffectsGrossProfit.String()); err != nil {
			return fmt.Errorf("insert group %q: %w", g.Name, err)
		}
	}
	return nil
}

func insertLedgers(ctx context.Context, tx *sql.Tx, ledgers []model.RawLedger) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO ledgers (position, name, parent, opening, dr_cr) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare ledgers: %w", err)
	}
	defer stmt.Close()
	for i, l := range ledgers {
		if _, err := stmt.ExecContext(ctx, i, l.Name, l.Parent, l.Opening, l.DrCr); err != nil {
			return fmt.Errorf("insert ledger %q: %w", l.Name, err)
		}
	}
	return nil
}

func insertVouchers(ctx context.Context, tx *sql.Tx, vouchers []model.Voucher) error {
	vstmt, err := tx.PrepareContext(ctx,
		`INSERT INTO vouchers (position, voucher_id, date, voucher_type, narration) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare vouchers: %w", err)
	}
	defer vstmt.Close()
	estmt, err := tx.PrepareContext(ctx,
		`INSERT INTO entries (voucher_position, position, ledger, amount, item) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare entries: %w", err)
	}
	defer estmt.Close()

	for i, v := range vouchers {
		if _, err := vstmt.ExecContext(ctx, i, v.ID, v.Date.Format(fiscal.DateFormat), v.Type, v.Narration); err != nil {
			return fmt.Errorf("insert voucher %q: %w", v.ID, err)
		}
		for j, e := range v.Entries {
			if _, err := estmt.ExecContext(ctx, i, j, e.Ledger, e.Amount.String(), e.Item); err != nil {
				return fmt.Errorf("insert voucher %q entry %d: %w", v.ID, j+1, err)
			}
		}
	}
	return nil
}

// LastSync describes the cached snapshot, or returns ErrEmpty.
func (s *Store) LastSync(ctx context.Context) (SyncStatus, error) {
	var (
		status          SyncStatus
		id              string
		fetched, synced string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT sync_id, company, fetched_at, synced_at FROM sync_status WHERE id = 1`,
	).Scan(&id, &status.Company, &fetched, &synced)
	if errors.Is(err, sql.ErrNoRows) {
		return SyncStatus{}, ErrEmpty
	}
	if err != nil {
		return SyncStatus{}, fmt.Errorf("read sync status: %w", err)
	}
	if status.ID, err = uuid.Parse(id); err != nil {
		return SyncStatus{}, fmt.Errorf("read sync id: %w", err)
	}
	if status.FetchedAt, err = parseTime(fetched); err != nil {
		return SyncStatus{}, err
	}
	if status.SyncedAt, err = parseTime(synced); err != nil {
		return SyncStatus{}, err
	}
	return status, nil
}

// Load reads the cached snapshot back, in the order it was saved.
func (s *Store) Load(ctx context.Context) (model.RawSnapshot, error) {
	status, err := s.LastSync(ctx)
	if err != nil {
		return model.RawSnapshot{}, err
	}
	snap := model.RawSnapshot{Company: status.Company, FetchedAt: status.FetchedAt}

	if snap.Groups, err = s.loadGroups(ctx); err != nil {
		return model.RawSnapshot{}, err
	}
	if snap.Ledgers, err = s.loadLedgers(ctx); err != nil {
		return model.RawSnapshot{}, err
	}
	if snap.Vouchers, err = s.loadVouchers(ctx); err != nil {
		return model.RawSnapshot{}, err
	}
	return snap, nil
}

func (s *Store) loadGroups(ctx context.Context) ([]model.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, parent, is_revenue, nature_of_group, affects_gross_profit FROM account_groups ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query groups: %w", err)
	}
	defer rows.Close()

	var out []model.Group
	for rows.Next() {
		var g model.Group
		var isRevenue, affectsGP string
		if err := rows.Scan(&g.Name, &g.Parent, &isRevenue, &g.NatureOfGroup, &affectsGP); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		if g.IsRevenue, err = normalize.ParseTriState(isRevenue); err != nil {
			return nil, fmt.Errorf("group %q: %w", g.Name, err)
		}
		if g.AffectsGrossProfit, err = normalize.ParseTriState(affectsGP); err != nil {
			return nil, fmt.Errorf("group %q: %w", g.Name, err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *Store) loadLedgers(ctx context.Context) ([]model.RawLedger, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, parent, opening, dr_cr FROM ledgers ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query ledgers: %w", err)
	}
	defer rows.Close()

	var out []model.RawLedger
	for rows.Next() {
		var l model.RawLedger
		if err := rows.Scan(&l.Name, &l.Parent, &l.Opening, &l.DrCr); err != nil {
			return nil, fmt.Errorf("scan ledger: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) loadVouchers(ctx context.Context) ([]model.Voucher, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT v.position, v.voucher_id, v.date, v.voucher_type, v.narration,
		       e.ledger, e.amount, e.item
		FROM vouchers v
		LEFT JOIN entries e ON e.voucher_position = v.position
		ORDER BY v.position, e.position`)
	if err != nil {
		return nil, fmt.Errorf("query vouchers: %w", err)
	}
	defer rows.Close()

	var (
		out  []model.Voucher
		last = int64(-1)
	)
	for rows.Next() {
		var (
			pos                  int64
			v                    model.Voucher
			date                 string
			ledger, amount, item sql.NullString
		)
		if err := rows.Scan(&pos, &v.ID, &date, &v.Type, &v.Narration, &ledger, &amount, &item); err != nil {
			return nil, fmt.Errorf("scan voucher: %w", err)
		}
		if pos != last {
			if v.Date, err = fiscal.ParseDate(date); err != nil {
				return nil, fmt.Errorf("voucher %q: %w", v.ID, err)
			}
			out = append(out, v)
			last = pos
		}
		if !ledger.Valid {
			continue
		}
		a, err := decimal.NewFromString(amount.String)
		if err != nil {
			return nil, fmt.Errorf("voucher %q amount %q: %w", v.ID, amount.String, err)
		}
		cur := &out[len(out)-1]
		cur.Entries = append(cur.Entries, model.LedgerEntry{Ledger: ledger.String, Amount: a, Item: item.String})
	}
	return out, rows.Err()
}

func formatTime(t time.Time) string { return t.Format(time.RFC3339Nano) }

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("read sync time %q: %w", s, err)
	}
	return t, nil
}
