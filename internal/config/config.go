package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/tallymis/internal/fiscal"
	"github.com/cleared-dev/tallymis/internal/log"
	"github.com/cleared-dev/tallymis/internal/normalize"
)

// FileName is the config file written by init and read by every command.
const FileName = "tallymis.yaml"

// EnvPrefix prefixes every environment override, e.g. TALLYMIS_TALLY_PORT.
const EnvPrefix = "TALLYMIS"

// Config represents the top-level tallymis.yaml configuration.
type Config struct {
	Company   string          `yaml:"company"`
	Source    string          `yaml:"source" validate:"required"`
	DataDir   string          `yaml:"data_dir" split_words:"true" validate:"required"`
	Tally     TallyConfig     `yaml:"tally"`
	Fiscal    FiscalConfig    `yaml:"fiscal"`
	Normalize NormalizeConfig `yaml:"normalize"`
	Cache     CacheConfig     `yaml:"cache"`
	Log       LogConfig       `yaml:"log"`
}

// TallyConfig locates the bookkeeping system's HTTP gateway.
type TallyConfig struct {
	Host    string        `yaml:"host" validate:"required,hostname|ip"`
	Port    int           `yaml:"port" validate:"min=1,max=65535"`
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`
}

// FiscalConfig defines the fiscal year boundaries.
type FiscalConfig struct {
	YearStart  string `yaml:"year_start" split_words:"true" validate:"required,monthday"` // "MM-DD", e.g. "04-01"
	BooksStart string `yaml:"books_start,omitempty" split_words:"true" validate:"omitempty,datetime=2006-01-02"`
}

// NormalizeConfig picks how bare opening balances are read.
type NormalizeConfig struct {
	Convention string `yaml:"convention" validate:"oneof=strict signed"`
}

// CacheConfig locates the snapshot cache.
type CacheConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// Load reads a tallymis.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default("")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(company string) *Config {
	return &Config{
		Company: company,
		Source:  "csv",
		DataDir: "data",
		Tally: TallyConfig{
			Host:    "127.0.0.1",
			Port:    9000,
			Timeout: 60 * time.Second,
		},
		Fiscal: FiscalConfig{
			YearStart: fiscal.April1.String(),
		},
		Normalize: NormalizeConfig{
			Convention: string(normalize.ConventionStrict),
		},
		Cache: CacheConfig{
			Path: "tallymis.db",
		},
		Log: LogConfig{
			Level:  "warn",
			Format: log.FormatText,
		},
	}
}

// LoadDotEnv loads KEY=value pairs from a .env file into the process
// environment. Variables already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays TALLYMIS_* environment variables onto cfg. Unset
// variables leave the file's values alone.
func ApplyEnv(cfg *Config) error {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("monthday", func(fl validator.FieldLevel) bool {
		_, err := fiscal.ParseMonthDay(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks the configuration and reports every invalid field.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (got %v)", fieldPath(fe.Namespace()), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

// YearStart parses the fiscal-year start.
func (c *Config) YearStart() (fiscal.MonthDay, error) {
	return fiscal.ParseMonthDay(c.Fiscal.YearStart)
}

// BooksStart parses the books-start date. Zero means derive it from the
// vouchers.
func (c *Config) BooksStart() (time.Time, error) {
	if strings.TrimSpace(c.Fiscal.BooksStart) == "" {
		return time.Time{}, nil
	}
	return fiscal.ParseDate(c.Fiscal.BooksStart)
}

// Convention parses the sign convention.
func (c *Config) Convention() (normalize.Convention, error) {
	return normalize.ParseConvention(c.Normalize.Convention)
}

// Logger returns the logger settings.
func (c *Config) Logger() log.Config {
	return log.Config{Level: c.Log.Level, Format: c.Log.Format}
}

// TallyURL is the gateway endpoint requests are posted to.
func (c *Config) TallyURL() string {
	return "http://" + net.JoinHostPort(c.Tally.Host, strconv.Itoa(c.Tally.Port))
}
