package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics <ticker> <fiscal-year> <fiscal-quarter>",
	Short: "Fetch every known metric for one fiscal quarter",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ticker := args[0]
		fy, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("fiscal year must be a number: %q", args[1])
		}
		fq, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("fiscal quarter must be a number: %q", args[2])
		}

		a := getApp()
		values, err := a.Edgar.GetAllMetrics(cmd.Context(), ticker, fy, fq)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, name := range a.Registry.AllNames() {
			v := values[name]
			if v == nil {
				fmt.Fprintf(w, "%s\t-\n", name)
				continue
			}
			fmt.Fprintf(w, "%s\t%g\n", name, *v)
		}
		return w.Flush()
	},
}
