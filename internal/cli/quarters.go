package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var quartersCount int

var quartersCmd = &cobra.Command{
	Use:   "quarters <ticker>",
	Short: "List recently completed fiscal quarters with likely-filed results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := getApp()
		qs, err := a.Calendar.RecentQuarters(args[0], quartersCount)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "QUARTER\tSTART\tEND")
		for _, q := range qs {
			fmt.Fprintf(w, "FY%d Q%d\t%s\t%s\n",
				q.FiscalYear, q.FiscalQuarter,
				q.Start.Format("2006-01-02"), q.End.Format("2006-01-02"))
		}
		return w.Flush()
	},
}

func init() {
	quartersCmd.Flags().IntVarP(&quartersCount, "count", "n", 4, "Number of quarters to list")
}
