package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/books/internal/period"
)

func newPeriodCommand(dir *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "period",
		Short: "Period lock",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the lock date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := open(cmd, *dir)
			if err != nil {
				return err
			}
			if d, ok := s.lock.Date(); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "Locked through %s\n", d.Format(dateFormat))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "No period is locked")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "lock <date>",
		Short: "Close every period up to and including date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDate(args[0])
			if err != nil {
				return err
			}
			return setLock(cmd, *dir, period.LockedThrough(d))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "unlock",
		Short: "Remove the period lock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return setLock(cmd, *dir, period.Lock{})
		},
	})
	return cmd
}

func setLock(cmd *cobra.Command, dir string, lock period.Lock) error {
	s, err := open(cmd, dir)
	if err != nil {
		return err
	}
	s.Config.SetLock(lock)
	if err := s.SaveConfig(); err != nil {
		return err
	}
	msg := "period: unlock"
	if d, ok := lock.Date(); ok {
		msg = "period: lock through " + d.Format(dateFormat)
	}
	s.Commit(cmd.Context(), msg)
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}
