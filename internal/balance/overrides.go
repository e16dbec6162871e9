package balance

import (
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/tallymis/internal/normalize"
)

type overrideFile struct {
	Ledgers map[string]struct {
		Opening *string `yaml:"opening"`
		Closing *string `yaml:"closing"`
	} `yaml:"ledgers"`
}

// ReadOverrides parses a YAML overrides document:
//
//	ledgers:
//	  Closing Stock:
//	    opening: "100"
//	    closing: "150 Dr"
//
// Figures accept the same forms as voucher amounts.
func ReadOverrides(r io.Reader) (Overrides, error) {
	var f overrideFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parsing overrides: %w", err)
	}

	out := make(Overrides, len(f.Ledgers))
	for name, v := range f.Ledgers {
		var o Override
		var err error
		if o.Opening, err = figure(v.Opening); err != nil {
			return nil, fmt.Errorf("ledger %q opening: %w", name, err)
		}
		if o.Closing, err = figure(v.Closing); err != nil {
			return nil, fmt.Errorf("ledger %q closing: %w", name, err)
		}
		out[name] = o
	}
	return out, nil
}

// LoadOverrides reads an overrides file. An empty path means no overrides.
func LoadOverrides(path string) (Overrides, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening overrides: %w", err)
	}
	defer f.Close()
	return ReadOverrides(f)
}

func figure(s *string) (decimal.NullDecimal, error) {
	if s == nil {
		return decimal.NullDecimal{}, nil
	}
	d, err := normalize.ParseNumber(*s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}
