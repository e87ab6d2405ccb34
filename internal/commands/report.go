package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/books/internal/reports"
)

func newReportCommand(dir *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Financial reports",
	}
	cmd.AddCommand(
		newProfitLossCommand(dir),
		newTaxReportCommand(dir),
		newTrialBalanceCommand(dir),
		newReconcileCommand(dir),
	)
	return cmd
}

func newProfitLossCommand(dir *string) *cobra.Command {
	var from, to string
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "pl",
		Aliases: []string{"profit-loss"},
		Short:   "Profit and loss statement",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := parseRange(from, to)
			if err != nil {
				return err
			}
			s, err := open(cmd, *dir)
			if err != nil {
				return err
			}
			pl, err := s.Reports.ProfitLoss(cmd.Context(), r)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), pl)
			}
			printProfitLoss(cmd.OutOrStdout(), pl)
			return nil
		},
	}
	addRangeFlags(cmd, &from, &to)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func printProfitLoss(out io.Writer, pl reports.ProfitLoss) {
	w := table(out)
	if pl.Estimated {
		fmt.Fprintln(w, "(estimated from orders and expenses: the journal is empty)")
	}
	fmt.Fprintln(w, "Revenue\t")
	for _, l := range pl.Revenue.Breakdown {
		fmt.Fprintf(w, "  %s\t%s\n", l.Name, money(l.Amount))
	}
	fmt.Fprintf(w, "Total revenue\t%s\n", money(pl.Revenue.Total))
	fmt.Fprintf(w, "Cost of goods sold\t%s\n", money(pl.COGS))
	fmt.Fprintf(w, "Gross profit\t%s\n", money(pl.GrossProfit))
	fmt.Fprintln(w, "Expenses\t")
	for _, l := range pl.Expenses.Breakdown {
		fmt.Fprintf(w, "  %s\t%s\n", l.Name, money(l.Amount))
	}
	fmt.Fprintf(w, "Total expenses\t%s\n", money(pl.Expenses.Total))
	fmt.Fprintf(w, "Net profit\t%s\n", money(pl.NetProfit))
	fmt.Fprintf(w, "Net margin\t%s%%\n", money(pl.NetProfitMargin))
	_ = w.Flush()
}

func newTaxReportCommand(dir *string) *cobra.Command {
	var from, to string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tax",
		Short: "Sales tax collected and remitted",
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
			rep, err := s.Reports.TaxReport(cmd.Context(), r, s.TaxSettings())
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), rep)
			}
			w := table(cmd.OutOrStdout())
			if rep.Registered {
				fmt.Fprintf(w, "Registered in %s at %.2f%%\n", rep.State, rep.Rate)
			} else {
				fmt.Fprintln(w, "Not registered for sales tax")
			}
			fmt.Fprintln(w, "MONTH\tCOLLECTED\tREMITTED")
			for _, m := range rep.Monthly {
				fmt.Fprintf(w, "%s\t%s\t%s\n", m.Month, money(m.Collected), money(m.Remitted))
			}
			fmt.Fprintf(w, "Total\t%s\t%s\n", money(rep.Collected), money(rep.Remitted))
			fmt.Fprintf(w, "Net liability\t%s\t\n", money(rep.NetLiability))
			return w.Flush()
		},
	}
	addRangeFlags(cmd, &from, &to)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newTrialBalanceCommand(dir *string) *cobra.Command {
	var from, to string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "trial-balance",
		Short: "Trial balance",
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
			tb, err := s.Reports.TrialBalance(cmd.Context(), r)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), tb)
			}
			w := table(cmd.OutOrStdout())
			fmt.Fprintln(w, "CODE\tACCOUNT\tDEBIT\tCREDIT")
			for _, row := range tb.Rows {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", row.Code, row.Name, blankZero(money(row.Debit)), blankZero(money(row.Credit)))
			}
			fmt.Fprintf(w, "\tTotal\t%s\t%s\n", money(tb.TotalDebit), money(tb.TotalCredit))
			if err := w.Flush(); err != nil {
				return err
			}
			if !tb.Balanced {
				return fmt.Errorf("trial balance is out by %s", money(tb.TotalDebit.Sub(tb.TotalCredit).Abs()))
			}
			return nil
		},
	}
	addRangeFlags(cmd, &from, &to)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newReconcileCommand(dir *string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Check receivable and payable control accounts against their sub-ledgers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := open(cmd, *dir)
			if err != nil {
				return err
			}
			checks, err := s.Reports.Reconcile(cmd.Context(), s.Receivables, s.Payables)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), checks)
			}
			w := table(cmd.OutOrStdout())
			fmt.Fprintln(w, "ACCOUNT\tLEDGER\tSUB-LEDGER\tDIFFERENCE\t")
			failed := 0
			for _, c := range checks {
				mark := "ok"
				if !c.OK {
					mark = "MISMATCH"
					failed++
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.AccountID, money(c.Ledger), money(c.SubLedger), money(c.Difference), mark)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d control accounts do not reconcile", failed)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
