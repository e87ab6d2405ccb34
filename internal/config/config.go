package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/books/internal/period"
)

const dateFormat = "2006-01-02"

// Config represents the top-level books.yaml configuration.
type Config struct {
	Business BusinessConfig `yaml:"business"`
	Fiscal   FiscalConfig   `yaml:"fiscal"`
	Period   PeriodConfig   `yaml:"period"`
	Tax      TaxConfig      `yaml:"tax"`
	Approval ApprovalConfig `yaml:"approval"`
	Posting  PostingConfig  `yaml:"posting"`
	Events   EventsConfig   `yaml:"events"`
	Logging  LoggingConfig  `yaml:"logging"`
	Git      GitConfig      `yaml:"git"`
	API      APIConfig      `yaml:"api"`
}

// BusinessConfig identifies the business entity.
type BusinessConfig struct {
	Name       string `yaml:"name"`
	EntityType string `yaml:"entity_type"`
}

// FiscalConfig defines the fiscal year boundaries.
type FiscalConfig struct {
	YearStart string `yaml:"year_start"` // "MM-DD" format, e.g. "01-01"
}

// PeriodConfig holds the period lock cutoff. Empty means nothing is locked.
type PeriodConfig struct {
	LockDate string `yaml:"lock_date"` // "YYYY-MM-DD"
}

// TaxConfig describes the business's tax registration.
type TaxConfig struct {
	Registered bool    `yaml:"registered"`
	State      string  `yaml:"state"`
	Rate       float64 `yaml:"rate"` // percent, informational
}

// ApprovalConfig controls the maker-checker rule on bills.
type ApprovalConfig struct {
	BillThreshold float64 `yaml:"bill_threshold"`
}

// PostingConfig tunes the posting rules.
type PostingConfig struct {
	COGSRatio float64 `yaml:"cogs_ratio"` // share of subtotal booked as COGS when item cost is unknown
}

// EventsConfig controls how handler failures reach the publisher.
type EventsConfig struct {
	Strict bool `yaml:"strict"`
}

// LoggingConfig selects the logrus level and formatter.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// APIConfig configures `books serve`.
type APIConfig struct {
	// CORSOrigins are full origins such as "https://app.example.com".
	// Empty allows every origin.
	CORSOrigins []string `yaml:"cors_origins,omitempty"`
}

// Load reads a books.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if _, err := cfg.Lock(); err != nil {
		return nil, err
	}
	return &cfg, nil
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

// Lock returns the configured period lock.
func (c *Config) Lock() (period.Lock, error) {
	if c.Period.LockDate == "" {
		return period.Lock{}, nil
	}
	d, err := time.Parse(dateFormat, c.Period.LockDate)
	if err != nil {
		return period.Lock{}, fmt.Errorf("parsing period.lock_date %q: %w", c.Period.LockDate, err)
	}
	return period.LockedThrough(d), nil
}

// SetLock stores lock as the period lock date.
func (c *Config) SetLock(lock period.Lock) {
	if d, ok := lock.Date(); ok {
		c.Period.LockDate = d.Format(dateFormat)
		return
	}
	c.Period.LockDate = ""
}

// Default returns a Config with sensible defaults for a new project.
func Default(businessName, entityType string) *Config {
	return &Config{
		Business: BusinessConfig{
			Name:       businessName,
			EntityType: entityType,
		},
		Fiscal: FiscalConfig{
			YearStart: "01-01",
		},
		Approval: ApprovalConfig{
			BillThreshold: 1000,
		},
		Posting: PostingConfig{
			COGSRatio: 0.4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "Books",
			AuthorEmail: "books@cleared.dev",
		},
	}
}
