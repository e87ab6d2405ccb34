package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/books/internal/id"
	"github.com/cleared-dev/books/internal/model"
	"github.com/cleared-dev/books/internal/receivables"
)

func newCustomerCommand(dir *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "customer",
		Short: "Customers",
	}

	var c model.Customer
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a customer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := open(cmd, *dir)
			if err != nil {
				return err
			}
			if c.ID == "" {
				c.ID = id.New(id.PrefixCustomer)
			}
			c.Name = strings.TrimSpace(c.Name)
			if err := model.Validate(c); err != nil {
				return fmt.Errorf("customer: %w", err)
			}
			if err := s.Customers.Add(cmd.Context(), c); err != nil {
				return fmt.Errorf("saving customer: %w", err)
			}
			s.Commit(cmd.Context(), "customer: add "+c.Name)
			fmt.Fprintf(cmd.OutOrStdout(), "Added customer %s (%s)\n", c.Name, c.ID)
			return nil
		},
	}
	add.Flags().StringVar(&c.ID, "id", "", "customer ID; generated when empty")
	add.Flags().StringVar(&c.Name, "name", "", "customer name (required)")
	add.Flags().StringVar(&c.Email, "email", "", "email for payment reminders")
	_ = add.MarkFlagRequired("name")

	list := &cobra.Command{
		Use:   "list",
		Short: "List customers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := open(cmd, *dir)
			if err != nil {
				return err
			}
			customers, err := s.Customers.GetAll(cmd.Context())
			if err != nil {
				return err
			}
			w := table(cmd.OutOrStdout())
			fmt.Fprintln(w, "ID\tNAME\tEMAIL")
			for _, c := range customers {
				fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, c.Name, c.Email)
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

func newInvoiceCommand(dir *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoice",
		Short: "Customer invoices",
	}
	cmd.AddCommand(
		newInvoiceCreateCommand(dir),
		newInvoicePayCommand(dir),
		newInvoiceListCommand(dir),
		newInvoiceRemindCommand(dir),
	)
	return cmd
}

func newInvoiceCreateCommand(dir *string) *cobra.Command {
	var in receivables.InvoiceInput
	var amount, tax, date, due string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Raise an invoice outside an order",
		Long: `Raise an invoice outside an order and post it: Dr Accounts Receivable,
Cr Sales Revenue and Cr Tax Payable for the tax share. Orders are invoiced
automatically and need no separate invoice.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if in.Amount, err = parseAmount("amount", amount); err != nil {
				return err
			}
			if in.TaxAmount, err = parseAmount("tax", tax); err != nil {
				return err
			}
			if in.Date, err = parseDate(date); err != nil {
				return err
			}
			if due != "" {
				if in.DueDate, err = parseDate(due); err != nil {
					return err
				}
			}
			s, err := open(cmd, *dir)
			if err != nil {
				return err
			}
			inv, err := s.Receivables.CreateInvoice(cmd.Context(), s.lock, in)
			if inv.ID != "" {
				s.Commit(cmd.Context(), "invoice: "+inv.ID)
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s due %s\n", inv.ID, money(inv.Amount), inv.DueDate.Format(dateFormat))
			}
			return err
		},
	}
	cmd.Flags().StringVar(&in.CustomerID, "customer", "", "customer ID (required)")
	cmd.Flags().StringVar(&amount, "amount", "", "amount (required)")
	cmd.Flags().StringVar(&tax, "tax", "", "tax included in the amount")
	cmd.Flags().StringVar(&date, "date", "", "invoice date (YYYY-MM-DD), default today")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD), default 30 days after the invoice date")
	_ = cmd.MarkFlagRequired("customer")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newInvoicePayCommand(dir *string) *cobra.Command {
	var amount, method, date string

	cmd := &cobra.Command{
		Use:   "pay <invoice-id>",
		Short: "Record a customer payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDate(date)
			if err != nil {
				return err
			}
			amt, err := parseAmount("amount", amount)
			if err != nil {
				return err
			}
			s, err := open(cmd, *dir)
			if err != nil {
				return err
			}
			if amount == "" {
				inv, err := s.Receivables.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				amt = inv.BalanceDue
			}

			inv, err := s.Receivables.RecordPayment(cmd.Context(), s.lock, args[0], amt, method, d)
			if err != nil && (inv.ID == "" || errors.Is(err, receivables.ErrAlreadyPaid)) {
				return err
			}
			s.Commit(cmd.Context(), "invoice: payment "+inv.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "Paid %s; %s due (%s)\n", inv.ID, money(inv.BalanceDue), inv.Status)
			return err
		},
	}
	cmd.Flags().StringVar(&amount, "amount", "", "amount; default the full balance due")
	cmd.Flags().StringVar(&method, "method", "bank", "payment method; cash debits the cash account")
	cmd.Flags().StringVar(&date, "date", "", "payment date (YYYY-MM-DD), default today")
	return cmd
}

func newInvoiceListCommand(dir *string) *cobra.Command {
	var outstanding, asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List invoices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := open(cmd, *dir)
			if err != nil {
				return err
			}
			var list []model.Invoice
			if outstanding {
				list, err = s.Receivables.Outstanding(cmd.Context())
			} else {
				list, err = s.Receivables.List(cmd.Context())
			}
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), list)
			}
			w := table(cmd.OutOrStdout())
			fmt.Fprintln(w, "ID\tDATE\tCUSTOMER\tAMOUNT\tDUE\tDUE DATE\tSTATUS")
			for _, inv := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", inv.ID, inv.Date.Format(dateFormat), inv.CustomerID,
					money(inv.Amount), money(inv.BalanceDue), inv.DueDate.Format(dateFormat), inv.Status)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&outstanding, "outstanding", false, "only invoices with a balance due")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newInvoiceRemindCommand(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Send payment reminders for outstanding invoices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := open(cmd, *dir)
			if err != nil {
				return err
			}
			res, err := s.Receivables.SendReminders(cmd.Context(),
				receivables.Directory{Customers: s.Customers},
				receivables.LogNotifier{Logger: s.Logger})
			if len(res.Sent) > 0 {
				s.Commit(cmd.Context(), fmt.Sprintf("invoice: %d payment reminders", len(res.Sent)))
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sent %d reminders, skipped %d\n", len(res.Sent), len(res.Skipped))
			return nil
		},
	}
}
