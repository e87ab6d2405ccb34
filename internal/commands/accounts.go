package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/books/internal/accounts"
	"github.com/cleared-dev/books/internal/journal"
	"github.com/cleared-dev/books/internal/model"
)

func newAccountsCommand(dir *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Chart of accounts",
	}
	cmd.AddCommand(newAccountsListCommand(dir), newAccountsShowCommand(dir), newAccountsAddCommand(dir), newAccountsDeleteCommand(dir))
	return cmd
}

func newAccountsListCommand(dir *string) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts with their balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := open(cmd, *dir)
			if err != nil {
				return err
			}
			accts, err := s.Journal.ListAccounts(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), accts)
			}

			w := table(cmd.OutOrStdout())
			fmt.Fprintln(w, "CODE\tID\tNAME\tTYPE\tBALANCE")
			for _, a := range accts {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", a.Code, a.ID, a.Name, a.Type, money(a.Balance))
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newAccountsShowCommand(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <account-id|code>",
		Short: "Show one account, its balance and its journal activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd, *dir)
			if err != nil {
				return err
			}
			acct, ok := s.Accounts.Get(args[0])
			if !ok {
				if code, convErr := strconv.Atoi(args[0]); convErr == nil {
					acct, ok = s.Accounts.ByCode(code)
				}
			}
			if !ok {
				return fmt.Errorf("%s: %w", args[0], accounts.ErrNotFound)
			}

			entries, err := s.Journal.List(cmd.Context(), journal.Range{})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d %s (%s, %s)\n", acct.Code, acct.Name, acct.ID, acct.Type)
			fmt.Fprintf(out, "Balance: %s\n", money(accounts.Balance(acct, entries)))

			w := table(out)
			fmt.Fprintln(w, "ENTRY\tDATE\tDEBIT\tCREDIT\tDESCRIPTION")
			for _, e := range entries {
				for _, l := range e.Lines {
					if l.AccountID == acct.ID {
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.Date.Format(dateFormat),
							blankZero(money(l.Debit)), blankZero(money(l.Credit)), e.Description)
					}
				}
			}
			return w.Flush()
		},
	}
}

func newAccountsAddCommand(dir *string) *cobra.Command {
	var acct model.Account
	var accountType string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := open(cmd, *dir)
			if err != nil {
				return err
			}
			acct.Type = model.AccountType(accountType)
			added, err := s.Accounts.Add(acct)
			if err != nil {
				return err
			}
			if err := s.SaveAccounts(); err != nil {
				return err
			}
			s.Commit(cmd.Context(), fmt.Sprintf("accounts: add %d %s", added.Code, added.Name))
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d %s (%s)\n", added.Code, added.Name, added.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&acct.ID, "id", "", "account ID (generated when empty)")
	cmd.Flags().IntVar(&acct.Code, "code", 0, "account code (required)")
	cmd.Flags().StringVar(&acct.Name, "name", "", "account name (required)")
	cmd.Flags().StringVar(&accountType, "type", "", "asset, liability, equity, income or expense (required)")
	cmd.Flags().StringVar(&acct.Subtype, "subtype", "", "subtype")
	cmd.Flags().StringVar(&acct.Description, "description", "", "description")
	_ = cmd.MarkFlagRequired("code")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func newAccountsDeleteCommand(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <account-id>",
		Short: "Delete an unused, non-system account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd, *dir)
			if err != nil {
				return err
			}
			if err := s.Journal.DeleteAccount(cmd.Context(), args[0]); err != nil {
				return err
			}
			if err := s.SaveAccounts(); err != nil {
				return err
			}
			s.Commit(cmd.Context(), "accounts: delete "+args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}
