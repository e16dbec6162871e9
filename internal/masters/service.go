package masters

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cleared-dev/tallymis/internal/audit"
	"github.com/cleared-dev/tallymis/internal/journal"
	"github.com/cleared-dev/tallymis/internal/model"
)

// File names inside a data directory.
const (
	GroupsFile  = "groups.csv"
	LedgersFile = "ledgers.csv"
)

// Load reads groups.csv, ledgers.csv and vouchers.csv from dir into a raw
// snapshot. Row-level problems come back as issues; the error is reserved
// for files that exist but cannot be read. A missing groups.csv is an error
// because nothing can be classified without it.
func Load(dir string) (model.RawSnapshot, []audit.Issue, error) {
	var (
		snap   model.RawSnapshot
		issues []audit.Issue
	)

	groups, gi, err := readFile(filepath.Join(dir, GroupsFile), ReadGroups, true)
	if err != nil {
		return snap, nil, err
	}
	ledgers, li, err := readFile(filepath.Join(dir, LedgersFile), ReadLedgers, false)
	if err != nil {
		return snap, nil, err
	}
	vouchers, vi, err := journal.Load(dir)
	if err != nil {
		return snap, nil, err
	}

	issues = append(issues, gi...)
	issues = append(issues, li...)
	issues = append(issues, vi...)

	snap.Company = filepath.Base(filepath.Clean(dir))
	snap.Groups = groups
	snap.Ledgers = ledgers
	snap.Vouchers = vouchers
	return snap, issues, nil
}

func readFile[T any](path string, read func(io.Reader) ([]T, []audit.Issue, error), required bool) ([]T, []audit.Issue, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	rows, issues, err := read(f)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return rows, issues, nil
}

// Save writes the snapshot's masters and vouchers into dir.
func Save(dir string, snap model.RawSnapshot) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	if err := writeFile(filepath.Join(dir, GroupsFile), func(w io.Writer) error {
		return WriteGroups(w, snap.Groups)
	}); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(dir, LedgersFile), func(w io.Writer) error {
		return WriteLedgers(w, snap.Ledgers)
	}); err != nil {
		return err
	}
	return journal.Save(dir, snap.Vouchers)
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// LedgerSet is a case-insensitive set of ledger names.
type LedgerSet struct {
	names map[string]struct{}
}

// NewLedgerSet indexes the ledger master names.
func NewLedgerSet(ledgers []model.RawLedger) *LedgerSet {
	s := &LedgerSet{names: make(map[string]struct{}, len(ledgers))}
	for _, l := range ledgers {
		s.names[foldName(l.Name)] = struct{}{}
	}
	return s
}

// Exists reports whether a ledger with that name is in the set.
func (s *LedgerSet) Exists(name string) bool {
	_, ok := s.names[foldName(name)]
	return ok
}

// Len returns the number of distinct names.
func (s *LedgerSet) Len() int { return len(s.names) }

func foldName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
