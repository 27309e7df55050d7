package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show model backend and last-run status",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		mgr, err := newManager()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer mgr.Close()

		status := mgr.CurrentStatus(ctx)

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		green := color.New(color.FgGreen).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("\n%s\n\n", cyan("=== Remedy Status ==="))

		fmt.Printf("%s\n", yellow("Model Backend:"))
		if status.ModelEnabled {
			fmt.Printf("  %s %s (%s)\n", green("●"), status.Model.Backend, status.Model.Model)
			if status.Model.Endpoint != "" {
				fmt.Printf("  Endpoint: %s\n", status.Model.Endpoint)
			}
			if status.Model.FallbackSubstituted {
				fmt.Printf("  %s\n", yellow("Note: requested backend unavailable, fallback in use"))
			}
		} else {
			fmt.Printf("  %s disabled (deterministic fallbacks only)\n", red("○"))
		}
		fmt.Println()

		fmt.Printf("%s\n", yellow("Last Run:"))
		if status.LastRun == nil {
			fmt.Printf("  %s\n", gray("No runs recorded"))
		} else {
			fmt.Printf("  %s (%s)\n", status.LastRun.Format("2006-01-02 15:04:05"), status.LastOperation)
			for k, v := range status.LastResults {
				fmt.Printf("    %s: %v\n", k, v)
			}
		}
		fmt.Println()

		if len(status.RecentRuns) > 0 {
			fmt.Printf("%s\n", yellow("Recent Runs:"))
			for _, run := range status.RecentRuns {
				fmt.Printf("  %s %s  success=%d failed=%d skipped=%d\n",
					run.StartedAt.Format("2006-01-02 15:04:05"),
					run.Kind, run.Success, run.Failed, run.Skipped)
			}
			fmt.Println()
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
