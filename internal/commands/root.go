package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand(version string) *cobra.Command {
	var dir string

	rootCmd := &cobra.Command{
		Use:     "books",
		Short:   "Double-entry books for a small business",
		Version: version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&dir, "dir", "C", ".", "books directory")

	rootCmd.AddCommand(
		newInitCommand(),
		newAccountsCommand(&dir),
		newJournalCommand(&dir),
		newPeriodCommand(&dir),
		newOrderCommand(&dir),
		newExpenseCommand(&dir),
		newVendorCommand(&dir),
		newBillCommand(&dir),
		newCustomerCommand(&dir),
		newInvoiceCommand(&dir),
		newReportCommand(&dir),
		newServeCommand(&dir),
	)

	return rootCmd
}
