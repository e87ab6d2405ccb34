package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/books/internal/expenses"
	"github.com/cleared-dev/books/internal/expenses/bankcsv"
	"github.com/cleared-dev/books/internal/logging"
)

func newExpenseCommand(dir *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expense",
		Short: "Direct expenses",
	}
	cmd.AddCommand(newExpenseRecordCommand(dir), newExpenseImportCommand(dir), newExpenseListCommand(dir))
	return cmd
}

func newExpenseRecordCommand(dir *string) *cobra.Command {
	var in expenses.Input
	var amount, date string

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record an expense and post it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if in.Amount, err = parseAmount("amount", amount); err != nil {
				return err
			}
			if in.Date, err = parseDate(date); err != nil {
				return err
			}
			s, err := open(cmd, *dir)
			if err != nil {
				return err
			}
			exp, err := s.Expenses.Record(cmd.Context(), s.lock, in)
			if exp.ID != "" {
				s.Commit(cmd.Context(), fmt.Sprintf("expense: %s %s", exp.Category, money(exp.Amount)))
				fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s %s %s\n", exp.ID, exp.Category, money(exp.Amount))
			}
			return err
		},
	}
	cmd.Flags().StringVar(&in.Category, "category", "", "expense category, matched to an expense account (required)")
	cmd.Flags().StringVar(&amount, "amount", "", "amount (required)")
	cmd.Flags().StringVar(&in.Description, "description", "", "description")
	cmd.Flags().StringVar(&in.PaymentMethod, "method", "bank", "payment method; cash credits the cash account")
	cmd.Flags().StringVar(&date, "date", "", "expense date (YYYY-MM-DD), default today")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newExpenseImportCommand(dir *string) *cobra.Command {
	var format string
	var watch bool

	cmd := &cobra.Command{
		Use:   "import [file.csv...]",
		Short: "Import bank statement debits as expenses",
		Long: `Import bank statement debits as expenses. Without arguments every CSV in
the import/ inbox is imported and then moved to import/processed/; with
--watch the inbox is then watched for new files until interrupted.
Categories come from the rules in import/rules.yaml.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			parser, err := bankcsv.Lookup(format)
			if err != nil {
				return err
			}
			if watch && len(args) > 0 {
				return errors.New("--watch reads the import inbox and takes no files")
			}
			s, err := open(cmd, *dir)
			if err != nil {
				return err
			}
			rules, err := bankcsv.LoadRules(filepath.Join(s.Root, bankcsv.RulesFile))
			if err != nil {
				return err
			}
			imp := &importer{session: s, parser: parser, rules: rules, out: cmd.OutOrStdout()}

			if len(args) > 0 {
				for _, path := range args {
					if err := imp.file(cmd.Context(), path, false); err != nil {
						return err
					}
				}
				return nil
			}

			files, err := bankcsv.Pending(s.Root)
			if err != nil {
				return err
			}
			for _, path := range files {
				if err := imp.file(cmd.Context(), path, true); err != nil {
					return err
				}
			}
			if !watch {
				if len(files) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing to import")
				}
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s\n", filepath.Join(s.Root, bankcsv.InboxDir))
			return bankcsv.Watch(ctx, s.Root, time.Second, func(path string) {
				if err := imp.file(ctx, path, true); err != nil {
					logging.LogError(s.Logger, "commands", "expense import", path, nil, err)
				}
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "chase", "bank export format")
	cmd.Flags().BoolVar(&watch, "watch", false, "keep watching the import inbox")
	return cmd
}

// importer imports one bank export at a time into an opened books directory.
type importer struct {
	*session
	parser bankcsv.Parser
	rules  bankcsv.Rules
	out    io.Writer
}

func (imp *importer) file(ctx context.Context, path string, archive bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	res, err := imp.Expenses.Import(ctx, imp.lock, imp.parser, f, imp.rules)
	f.Close()
	if err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	fmt.Fprintf(imp.out, "%s: %d recorded, %d duplicate, %d credits skipped, %d locked\n",
		filepath.Base(path), len(res.Recorded), res.Duplicate, res.Credits, res.Locked)
	if archive {
		if err := bankcsv.Archive(imp.Root, path); err != nil {
			return err
		}
	}
	imp.Commit(ctx, fmt.Sprintf("expense: import %s (%d expenses)", filepath.Base(path), len(res.Recorded)))
	return nil
}

func newExpenseListCommand(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := open(cmd, *dir)
			if err != nil {
				return err
			}
			list, err := s.Expenses.List(cmd.Context())
			if err != nil {
				return err
			}
			w := table(cmd.OutOrStdout())
			fmt.Fprintln(w, "ID\tDATE\tCATEGORY\tAMOUNT\tMETHOD\tDESCRIPTION")
			for _, e := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", e.ID, e.Date.Format(dateFormat), e.Category, money(e.Amount), e.PaymentMethod, e.Description)
			}
			return w.Flush()
		},
	}
}
