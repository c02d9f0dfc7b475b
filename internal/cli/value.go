package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var valueCmd = &cobra.Command{
	Use:   "value <ticker> <fiscal-year> <fiscal-quarter> <metric>",
	Short: "Fetch one reconciled metric value from EDGAR",
	Args:  cobra.ExactArgs(4),
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
		metric, ok := a.Registry.Resolve(args[3])
		if !ok {
			metric, err = a.Registry.Find(args[3])
			if err != nil {
				return fmt.Errorf("unknown metric %q; run 'execcheck metrics' style names like revenue or gross_margin", args[3])
			}
		}

		value, err := a.Edgar.GetValue(cmd.Context(), ticker, fy, fq, metric)
		if err != nil {
			return err
		}
		if value == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%s FY%d Q%d %s: no data\n", ticker, fy, fq, metric.CanonicalName)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s FY%d Q%d %s: %g\n", ticker, fy, fq, metric.CanonicalName, *value)
		return nil
	},
}
