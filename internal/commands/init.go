package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/books/internal/app"
)

func newInitCommand() *cobra.Command {
	var opts app.InitOptions

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new books directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			a, err := app.Init(cmd.Context(), absDir, opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized books for %s at %s (%d accounts)\n",
				a.Config.Business.Name, absDir, len(a.Accounts.All()))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "business name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&opts.EntityType, "entity-type", "sole_trader", "entity type")
	cmd.Flags().BoolVar(&opts.Git, "git", true, "version the directory with git")

	return cmd
}
