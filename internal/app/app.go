// Package app wires one books directory: configuration, the chart of
// accounts, the journal, the record collections, the event bus and every
// producer and subscriber.
//
// Layout of a books directory:
//
//	books.yaml                      configuration
//	accounts/chart-of-accounts.csv  chart of accounts
//	YYYY/MM/journal.csv             journal, one file per month
//	records/*.yaml                  orders, expenses, vendors, bills, invoices, customers
//	logs/posting-log.csv            event handler outcomes
//	import/                         bank statements waiting to be imported
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/cleared-dev/books/internal/accounts"
	"github.com/cleared-dev/books/internal/config"
	"github.com/cleared-dev/books/internal/events"
	"github.com/cleared-dev/books/internal/expenses"
	"github.com/cleared-dev/books/internal/expenses/bankcsv"
	"github.com/cleared-dev/books/internal/gitops"
	"github.com/cleared-dev/books/internal/journal"
	"github.com/cleared-dev/books/internal/logging"
	"github.com/cleared-dev/books/internal/model"
	"github.com/cleared-dev/books/internal/payables"
	"github.com/cleared-dev/books/internal/period"
	"github.com/cleared-dev/books/internal/posting"
	"github.com/cleared-dev/books/internal/postinglog"
	"github.com/cleared-dev/books/internal/receivables"
	"github.com/cleared-dev/books/internal/reports"
	"github.com/cleared-dev/books/internal/sales"
	"github.com/cleared-dev/books/internal/store"
	"github.com/cleared-dev/books/internal/store/yamlfile"
)

// ConfigFile is the configuration file name inside a books directory.
const ConfigFile = "books.yaml"

// RecordsDir holds the sub-ledger collections.
const RecordsDir = "records"

// App is an opened books directory.
type App struct {
	Root   string
	Config *config.Config
	// Runtime is Config with the BOOKS_* environment applied. It is never saved.
	Runtime config.Config
	Logger  *logrus.Logger

	Accounts    *accounts.Service
	Journal     *journal.Service
	Bus         *events.Bus
	Posting     *posting.Engine
	PostingLog  *postinglog.Log
	Sales       *sales.Service
	Expenses    *expenses.Service
	Payables    *payables.Service
	Receivables *receivables.Service
	Reports     *reports.Service
	Customers   store.Collection[model.Customer]
	Git         gitops.Repo
}

// Open loads the books directory at root. Logs go to logOut.
func Open(root string, logOut io.Writer) (*App, error) {
	cfg, err := config.Load(filepath.Join(root, ConfigFile))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	accts, err := accounts.Load(root)
	if err != nil {
		return nil, fmt.Errorf("loading accounts: %w", err)
	}
	return build(root, cfg, logOut, accts)
}

func build(root string, cfg *config.Config, logOut io.Writer, accts *accounts.Service) (*App, error) {
	env, err := config.LoadEnv(root)
	if err != nil {
		return nil, err
	}
	rt := cfg.Runtime(env)
	logger := logging.New(logOut, rt.Logging.Level, rt.Logging.Format)

	records := filepath.Join(root, RecordsDir)
	plog := postinglog.New(root, logger)
	bus := events.NewBus(logger,
		events.WithStrict(rt.Events.Strict),
		events.WithObserver(plog.Observer()),
	)

	jrnl := journal.NewService(journal.NewCSVRepository(root), accts, logger)
	engine := posting.New(jrnl, logger, decimal.NewFromFloat(cfg.Posting.COGSRatio))
	engine.Register(bus)

	salesSvc := sales.New(yamlfile.New[model.Order](records, "orders"), bus, logger)
	expenseSvc := expenses.New(yamlfile.New[model.Expense](records, "expenses"), bus, logger)
	payablesSvc := payables.New(
		yamlfile.New[model.Vendor](records, "vendors"),
		yamlfile.New[model.Bill](records, "bills"),
		bus, logger,
		decimal.NewFromFloat(cfg.Approval.BillThreshold),
	)
	receivablesSvc := receivables.New(yamlfile.New[model.Invoice](records, "invoices"), bus, logger)
	receivablesSvc.Register(bus)

	return &App{
		Root:        root,
		Config:      cfg,
		Runtime:     rt,
		Logger:      logger,
		Accounts:    accts,
		Journal:     jrnl,
		Bus:         bus,
		Posting:     engine,
		PostingLog:  plog,
		Sales:       salesSvc,
		Expenses:    expenseSvc,
		Payables:    payablesSvc,
		Receivables: receivablesSvc,
		Reports:     reports.New(jrnl, salesSvc, expenseSvc, decimal.NewFromFloat(cfg.Posting.COGSRatio)),
		Customers:   yamlfile.New[model.Customer](records, "customers"),
		Git:         gitops.Repo{Dir: root, AuthorName: cfg.Git.AuthorName, AuthorEmail: cfg.Git.AuthorEmail},
	}, nil
}

// Lock returns the configured period lock.
func (a *App) Lock() (period.Lock, error) {
	return a.Config.Lock()
}

// TaxSettings returns the tax registration for reports.
func (a *App) TaxSettings() reports.TaxSettings {
	return reports.TaxSettings{
		Registered: a.Config.Tax.Registered,
		State:      a.Config.Tax.State,
		Rate:       a.Config.Tax.Rate,
	}
}

// SaveConfig writes books.yaml.
func (a *App) SaveConfig() error {
	return config.Save(filepath.Join(a.Root, ConfigFile), a.Config)
}

// SaveAccounts writes the chart of accounts.
func (a *App) SaveAccounts() error {
	return a.Accounts.Save(a.Root)
}

// Commit records the directory state in git when auto-commit is enabled.
// Failures are logged: the books themselves are already written.
func (a *App) Commit(ctx context.Context, message string) string {
	if !a.Config.Git.AutoCommit || !a.Git.IsRepo() {
		return ""
	}
	hash, err := a.Git.Commit(ctx, message)
	if err != nil {
		logging.LogError(a.Logger, "app", "Commit", message, nil, err)
		return ""
	}
	if hash != "" {
		a.Logger.WithFields(logrus.Fields{"commit": hash}).Debug(message)
	}
	return hash
}

// InitOptions describes a new books directory.
type InitOptions struct {
	Name       string
	EntityType string
	Git        bool
}

// Init creates a books directory at root and opens it. It refuses to
// overwrite an existing books.yaml.
func Init(ctx context.Context, root string, opts InitOptions, logOut io.Writer) (*App, error) {
	cfgPath := filepath.Join(root, ConfigFile)
	if _, err := os.Stat(cfgPath); err == nil {
		return nil, fmt.Errorf("%s already exists", cfgPath)
	}

	for _, d := range []string{"accounts", RecordsDir, "logs", bankcsv.InboxDir, bankcsv.ProcessedDir} {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			return nil, fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default(opts.Name, opts.EntityType)
	cfg.Git.AutoCommit = opts.Git
	if err := config.Save(cfgPath, cfg); err != nil {
		return nil, fmt.Errorf("writing config: %w", err)
	}

	accts := accounts.NewService(accounts.DefaultChart(opts.EntityType))
	if err := accts.Save(root); err != nil {
		return nil, fmt.Errorf("writing chart of accounts: %w", err)
	}

	if err := os.WriteFile(filepath.Join(root, bankcsv.RulesFile), []byte("# - match: github\n#   category: Software\n[]\n"), 0o644); err != nil {
		return nil, fmt.Errorf("writing import rules: %w", err)
	}

	a, err := build(root, cfg, logOut, accts)
	if err != nil {
		return nil, err
	}
	if opts.Git {
		if err := a.Git.Init(ctx); err != nil {
			return nil, err
		}
		if _, err := a.Git.Commit(ctx, "init: "+opts.Name); err != nil {
			return nil, fmt.Errorf("initial commit: %w", err)
		}
	}
	return a, nil
}
