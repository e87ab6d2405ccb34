package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/books/internal/journal"
	"github.com/cleared-dev/books/internal/model"
)

func newJournalCommand(dir *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Journal entries",
	}
	cmd.AddCommand(newJournalListCommand(dir), newJournalPostCommand(dir), newJournalExportCommand(dir))
	return cmd
}

func newJournalListCommand(dir *string) *cobra.Command {
	var from, to, account string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journal entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := parseRange(from, to)
			if err != nil {
				return err
			}
			s, err := open(cmd, *dir)
			if err != nil {
				return err
			}
			entries, err := s.Journal.List(cmd.Context(), r)
			if err != nil {
				return err
			}
			if account != "" {
				var filtered []model.JournalEntry
				for _, e := range entries {
					if e.Touches(account) {
						filtered = append(filtered, e)
					}
				}
				entries = filtered
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), entries)
			}

			w := table(cmd.OutOrStdout())
			fmt.Fprintln(w, "ENTRY\tDATE\tACCOUNT\tDEBIT\tCREDIT\tDESCRIPTION")
			for _, e := range entries {
				for i, l := range e.Lines {
					id, date, desc := "", "", ""
					if i == 0 {
						id, date, desc = e.ID, e.Date.Format(dateFormat), e.Description
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", id, date, l.AccountID, blankZero(l.Debit.StringFixed(2)), blankZero(l.Credit.StringFixed(2)), desc)
				}
			}
			return w.Flush()
		},
	}
	addRangeFlags(cmd, &from, &to)
	cmd.Flags().StringVar(&account, "account", "", "only entries touching this account")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func blankZero(s string) string {
	if s == "0.00" {
		return ""
	}
	return s
}

func newJournalPostCommand(dir *string) *cobra.Command {
	var date, description, reference string
	var lines []string

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post a manual adjustment entry",
		Long: `Post a manual adjustment entry. Each --line is account:debit:credit,
for example --line tax_payable:180: --line bank::180.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := parseDate(date)
			if err != nil {
				return err
			}
			entry := model.JournalEntry{
				Date:          d,
				Description:   description,
				ReferenceID:   reference,
				ReferenceType: model.ReferenceAdjustment,
			}
			for _, raw := range lines {
				l, err := parseLine(raw)
				if err != nil {
					return err
				}
				entry.Lines = append(entry.Lines, l)
			}

			s, err := open(cmd, *dir)
			if err != nil {
				return err
			}
			posted, err := s.Journal.Post(cmd.Context(), s.lock, entry)
			if err != nil {
				var ue *journal.UnbalancedError
				if errors.As(err, &ue) {
					return fmt.Errorf("entry does not balance: debits %s, credits %s", money(ue.Debit), money(ue.Credit))
				}
				return err
			}
			s.Commit(cmd.Context(), "journal: "+posted.ID+" "+description)
			fmt.Fprintf(cmd.OutOrStdout(), "Posted %s (%s)\n", posted.ID, money(posted.TotalAmount))
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "entry date (YYYY-MM-DD), default today")
	cmd.Flags().StringVar(&description, "description", "", "description (required)")
	cmd.Flags().StringVar(&reference, "reference", "", "reference ID")
	cmd.Flags().StringArrayVar(&lines, "line", nil, "account:debit:credit, repeatable")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

// parseLine parses "account:debit:credit"; an empty side is zero.
func parseLine(raw string) (model.JournalLine, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 3 || parts[0] == "" {
		return model.JournalLine{}, fmt.Errorf("line %q must be account:debit:credit", raw)
	}
	debit, err := parseAmount("debit", parts[1])
	if err != nil {
		return model.JournalLine{}, err
	}
	credit, err := parseAmount("credit", parts[2])
	if err != nil {
		return model.JournalLine{}, err
	}
	return model.JournalLine{AccountID: parts[0], Debit: debit, Credit: credit}, nil
}

func newJournalExportCommand(dir *string) *cobra.Command {
	var from, to, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export journal entries as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := parseRange(from, to)
			if err != nil {
				return err
			}
			s, err := open(cmd, *dir)
			if err != nil {
				return err
			}
			entries, err := s.Journal.List(cmd.Context(), r)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}
			return journal.WriteEntries(w, entries)
		},
	}
	addRangeFlags(cmd, &from, &to)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}
