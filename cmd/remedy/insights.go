package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Show learned error and fix patterns",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		mgr, err := newManager()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer mgr.Close()

		insights := mgr.InsightsReport(ctx)

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("\n%s\n\n", cyan("=== Remedy Insights ==="))

		fmt.Printf("%s\n", yellow("Most Common Errors:"))
		if len(insights.CommonErrors) == 0 {
			fmt.Printf("  %s\n", gray("No errors recorded yet"))
		}
		for _, e := range insights.CommonErrors {
			fmt.Printf("  %s: %d occurrences\n", e.Type, e.Count)
		}
		fmt.Println()

		fmt.Printf("%s\n", yellow("Most Effective Fixes:"))
		if len(insights.EffectiveFixes) == 0 {
			fmt.Printf("  %s\n", gray("No fixes recorded yet"))
		}
		for _, f := range insights.EffectiveFixes {
			fmt.Printf("  %s (%s): %.0f%% success over %d attempts\n",
				f.FixAction, f.ErrorType, f.SuccessRate*100, f.TotalAttempts)
		}
		fmt.Println()

		if len(insights.Recommendations) > 0 {
			fmt.Printf("%s\n", yellow("Recommendations:"))
			for _, rec := range insights.Recommendations {
				fmt.Printf("  - %s\n", rec)
			}
			fmt.Println()
		}
	},
}

func init() {
	rootCmd.AddCommand(insightsCmd)
}
