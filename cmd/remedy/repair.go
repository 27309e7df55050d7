package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/remedyops/remedy/internal/types"
)

var repairTypes []string

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Attempt automated repairs",
	Long: `Run fresh log and code analyses, then attempt one fix per
matching issue.

Files are backed up before any mutation and restored on failure. API
errors are always skipped; fixes without a deterministic transform are
reported as suggestions instead of applied.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		mgr, err := newManager()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer mgr.Close()

		result, err := mgr.RunAutoRepair(ctx, repairTypes)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		green := color.New(color.FgGreen).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("\n%s\n\n", cyan("=== Remedy Auto-Repair ==="))

		for _, r := range result.Repairs {
			switch r.Status {
			case types.RepairSuccess:
				fmt.Printf("  %s %s: %s\n", green("✓"), r.Kind, r.Action)
			case types.RepairFailed:
				fmt.Printf("  %s %s: %s\n", red("✗"), r.Kind, r.Error)
			case types.RepairSuggested:
				fmt.Printf("  %s %s: suggestion available\n", gray("→"), r.Kind)
			default:
				fmt.Printf("  %s %s: %s\n", gray("○"), r.Kind, r.Reason)
			}
		}

		fmt.Printf("\nSuccess: %s  Failed: %s  Skipped: %s\n",
			green(fmt.Sprintf("%d", result.Success)),
			red(fmt.Sprintf("%d", result.Failed)),
			gray(fmt.Sprintf("%d", result.Skipped)))
	},
}

func init() {
	repairCmd.Flags().StringSliceVar(&repairTypes, "types", nil, "Repair types to run (logs, code, dependencies)")
	rootCmd.AddCommand(repairCmd)
}
