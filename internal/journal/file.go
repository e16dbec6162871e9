package journal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cleared-dev/tallymis/internal/audit"
	"github.com/cleared-dev/tallymis/internal/model"
)

// FileName is the name of the voucher file inside a data directory.
const FileName = "vouchers.csv"

// Load reads vouchers.csv from dir. A missing file is an empty day book.
func Load(dir string) ([]model.Voucher, []audit.Issue, error) {
	path := filepath.Join(dir, FileName)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("opening vouchers %s: %w", path, err)
	}
	defer f.Close()

	vouchers, issues, err := ReadVouchers(f)
	if err != nil {
		return nil, nil, fmt.Errorf("reading vouchers %s: %w", path, err)
	}
	return vouchers, issues, nil
}

// Save writes vouchers.csv into dir, creating dir if needed.
func Save(dir string, vouchers []model.Voucher) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	path := filepath.Join(dir, FileName)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating vouchers %s: %w", path, err)
	}
	if err := WriteVouchers(f, vouchers); err != nil {
		f.Close()
		return fmt.Errorf("writing vouchers %s: %w", path, err)
	}
	return f.Close()
}
