package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/books/internal/model"
	"github.com/cleared-dev/books/internal/payables"
)

func newVendorCommand(dir *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vendor",
		Short: "Vendors",
	}

	var v model.Vendor
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a vendor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := open(cmd, *dir)
			if err != nil {
				return err
			}
			added, err := s.Payables.AddVendor(cmd.Context(), v)
			if err != nil {
				return err
			}
			s.Commit(cmd.Context(), "vendor: add "+added.Name)
			fmt.Fprintf(cmd.OutOrStdout(), "Added vendor %s (%s)\n", added.Name, added.ID)
			return nil
		},
	}
	add.Flags().StringVar(&v.Name, "name", "", "vendor name (required)")
	add.Flags().StringVar(&v.ContactPerson, "contact", "", "contact person")
	add.Flags().StringVar(&v.Email, "email", "", "email")
	add.Flags().StringVar(&v.Category, "category", "", "default expense category for bills; empty books cost of goods")
	_ = add.MarkFlagRequired("name")

	list := &cobra.Command{
		Use:   "list",
		Short: "List vendors with balances due",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := open(cmd, *dir)
			if err != nil {
				return err
			}
			vendors, err := s.Payables.Vendors(cmd.Context())
			if err != nil {
				return err
			}
			w := table(cmd.OutOrStdout())
			fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tBALANCE DUE")
			for _, v := range vendors {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", v.ID, v.Name, v.Category, money(v.BalanceDue))
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

func newBillCommand(dir *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bill",
		Short: "Vendor bills",
	}
	cmd.AddCommand(
		newBillCreateCommand(dir),
		newBillApproveCommand(dir),
		newBillPayCommand(dir),
		newBillCreditCommand(dir),
		newBillListCommand(dir),
	)
	return cmd
}

func newBillCreateCommand(dir *string) *cobra.Command {
	var in payables.BillInput
	var amount, date string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Record a vendor bill",
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
			bill, err := s.Payables.CreateBill(cmd.Context(), s.lock, in)
			if bill.ID != "" {
				s.Commit(cmd.Context(), fmt.Sprintf("bill: %s %s %s", bill.ID, bill.VendorName, money(bill.Amount)))
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s (%s)\n", bill.ID, money(bill.Amount), bill.Status)
				if bill.Status == model.BillPendingApproval {
					fmt.Fprintf(cmd.OutOrStdout(), "Amount is at or above %s: run `books bill approve %s`\n", money(s.Payables.Threshold()), bill.ID)
				}
			}
			return err
		},
	}
	cmd.Flags().StringVar(&in.VendorID, "vendor", "", "vendor ID (required)")
	cmd.Flags().StringVar(&amount, "amount", "", "amount (required)")
	cmd.Flags().StringVar(&in.Category, "category", "", "expense category; default the vendor's, else cost of goods")
	cmd.Flags().StringVar(&in.Description, "description", "", "description")
	cmd.Flags().StringVar(&date, "date", "", "bill date (YYYY-MM-DD), default today")
	_ = cmd.MarkFlagRequired("vendor")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newBillApproveCommand(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "approve <bill-id>",
		Short: "Approve a pending bill and post it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd, *dir)
			if err != nil {
				return err
			}
			bill, err := s.Payables.ApproveBill(cmd.Context(), s.lock, args[0])
			if err != nil && (bill.ID == "" || errors.Is(err, payables.ErrNotPendingApproval)) {
				return err
			}
			s.Commit(cmd.Context(), "bill: approve "+bill.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "Approved %s %s\n", bill.ID, money(bill.Amount))
			return err
		},
	}
}

func newBillPayCommand(dir *string) *cobra.Command {
	var amount, method, date string

	cmd := &cobra.Command{
		Use:   "pay <bill-id>",
		Short: "Pay a bill, fully or in part",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDate(date)
			if err != nil {
				return err
			}
			s, err := open(cmd, *dir)
			if err != nil {
				return err
			}
			amt, err := parseAmount("amount", amount)
			if err != nil {
				return err
			}
			if amount == "" {
				bill, err := s.Payables.Bill(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				amt = bill.BalanceDue
			}

			bill, err := s.Payables.PayBill(cmd.Context(), s.lock, args[0], amt, method, d)
			if err != nil && (bill.ID == "" || errors.Is(err, payables.ErrNotApproved) || errors.Is(err, payables.ErrAlreadyPaid)) {
				return err
			}
			s.Commit(cmd.Context(), "bill: pay "+bill.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "Paid %s; %s due (%s)\n", bill.ID, money(bill.BalanceDue), bill.Status)
			return err
		},
	}
	cmd.Flags().StringVar(&amount, "amount", "", "amount; default the full balance due")
	cmd.Flags().StringVar(&method, "method", "bank", "payment method")
	cmd.Flags().StringVar(&date, "date", "", "payment date (YYYY-MM-DD), default today")
	return cmd
}

func newBillCreditCommand(dir *string) *cobra.Command {
	var in payables.CreditInput
	var amount, date string

	cmd := &cobra.Command{
		Use:   "credit",
		Short: "Record a vendor credit note",
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
			creditID, err := s.Payables.CreditVendor(cmd.Context(), s.lock, in)
			if creditID != "" {
				s.Commit(cmd.Context(), "bill: credit "+creditID)
				fmt.Fprintf(cmd.OutOrStdout(), "Credited %s from %s\n", money(in.Amount), in.VendorID)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&in.VendorID, "vendor", "", "vendor ID (required)")
	cmd.Flags().StringVar(&amount, "amount", "", "amount (required)")
	cmd.Flags().StringVar(&in.Category, "category", "", "expense category to reverse; default cost of goods")
	cmd.Flags().StringVar(&in.Reason, "reason", "", "reason")
	cmd.Flags().StringVar(&date, "date", "", "credit date (YYYY-MM-DD), default today")
	_ = cmd.MarkFlagRequired("vendor")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newBillListCommand(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List bills",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := open(cmd, *dir)
			if err != nil {
				return err
			}
			bills, err := s.Payables.Bills(cmd.Context())
			if err != nil {
				return err
			}
			w := table(cmd.OutOrStdout())
			fmt.Fprintln(w, "ID\tDATE\tVENDOR\tAMOUNT\tDUE\tSTATUS")
			for _, b := range bills {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", b.ID, b.Date.Format(dateFormat), b.VendorName, money(b.Amount), money(b.BalanceDue), b.Status)
			}
			return w.Flush()
		},
	}
}
