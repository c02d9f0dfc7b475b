package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the local filing cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [namespace]",
	Short: "Drop cached filing data",
	Long: `Drops cached EDGAR responses. With no namespace everything goes;
otherwise only that namespace (edgar_concepts, edgar_metrics, transcripts).
Useful after a transient SEC outage left absent values memoized.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		namespace := ""
		if len(args) == 1 {
			namespace = args[0]
		}

		a := getApp()
		if err := a.Cache.Clear(cmd.Context(), namespace); err != nil {
			return err
		}
		if namespace == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "cache cleared")
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "cache namespace %q cleared\n", namespace)
		}
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
}
