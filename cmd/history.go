package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded reconciliation runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		runJournal, err := openJournal(ctx)
		if err != nil {
			return err
		}
		if runJournal == nil {
			return fmt.Errorf("journal is disabled: set journal.path or NETSTATE_JOURNAL")
		}
		defer runJournal.Close()

		entries, err := runJournal.List(ctx, historyLimit)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), entries)
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "Maximum number of runs to list, 0 for all")
	rootCmd.AddCommand(historyCmd)
}
