package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/remedyops/remedy/internal/types"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Run a full audit of logs and source",
	Long: `Analyze the application's log files and Python source together.

Log lines are classified into error categories, source files are
checked for syntax errors, risky patterns and optimization
opportunities, and the results are merged into one report with
recommendations.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		mgr, err := newManager()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer mgr.Close()

		report, err := mgr.RunFullAudit(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("\n%s\n\n", cyan("=== Remedy Audit Report ==="))

		fmt.Printf("%s\n", yellow("Log Analysis:"))
		fmt.Printf("  Errors:   %d\n", len(report.Logs.Errors))
		fmt.Printf("  Warnings: %d\n", len(report.Logs.Warnings))
		for category, count := range report.Logs.Histogram {
			fmt.Printf("    %s: %d\n", category, count)
		}
		fmt.Println()

		fmt.Printf("%s\n", yellow("Code Analysis:"))
		fmt.Printf("  Files analyzed: %d\n", report.Code.FilesAnalyzed)
		fmt.Printf("  Issues:         %d", report.Code.Metrics.TotalIssues)
		if report.Code.Metrics.HighSeverity > 0 {
			fmt.Printf(" (%s)", red(fmt.Sprintf("%d high severity", report.Code.Metrics.HighSeverity)))
		}
		fmt.Println()
		fmt.Printf("  Optimizations:  %d\n", report.Code.Metrics.OptimizationOpportunities)

		for _, issue := range report.Code.Issues {
			marker := gray("•")
			if issue.Severity == types.SeverityHigh {
				marker = red("●")
			}
			fmt.Printf("    %s %s:%d %s\n", marker, issue.File, issue.Line, issue.Message)
		}
		fmt.Println()

		if len(report.Recommendations) > 0 {
			fmt.Printf("%s\n", yellow("Recommendations:"))
			for _, rec := range report.Recommendations {
				fmt.Printf("  - %s\n", rec)
			}
			fmt.Println()
		}
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
}
