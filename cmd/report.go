package cmd

import (
	"fmt"
	"sort"

	"github.com/remedialportal/console/pkg/portal"
	"github.com/spf13/cobra"
)

var (
	reportStatus string
	reportFull   bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Applications report with O-level results attached",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		defer client.Close()

		rows, err := client.ApplicationsReport(cmd.Context(), reportStatus)
		if err != nil {
			return err
		}

		if reportFull {
			return printJSON(rows)
		}

		summary := portal.StatusSummary(rows)
		statuses := make([]string, 0, len(summary))
		for s := range summary {
			statuses = append(statuses, s)
		}
		sort.Strings(statuses)

		for _, s := range statuses {
			fmt.Fprintf(cmd.OutOrStdout(), "%-14s %d\n", s, summary[s])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-14s %d\n", "TOTAL", len(rows))
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportStatus, "status", "", "filter by application status")
	reportCmd.Flags().BoolVar(&reportFull, "full", false, "print full rows as JSON instead of a summary")

	rootCmd.AddCommand(reportCmd)
}
