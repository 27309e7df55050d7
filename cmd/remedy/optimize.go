package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/remedyops/remedy/internal/types"
)

var optimizeTypes []string

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Apply safe optimizations and measure the effect",
	Long: `Apply conservative code optimizations, then re-analyze the source
and report which metrics improved.

Only transforms with an exact textual rewrite are applied; everything
else is surfaced for manual review. Outdated dependencies are reported
but never upgraded automatically.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		mgr, err := newManager()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer mgr.Close()

		result, err := mgr.RunOptimization(ctx, optimizeTypes)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		green := color.New(color.FgGreen).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("\n%s\n\n", cyan("=== Remedy Optimization ==="))

		for _, o := range result.Optimizations {
			switch o.Status {
			case types.RepairSuccess:
				fmt.Printf("  %s %s: %s\n", green("✓"), o.Kind, o.Action)
			case types.RepairSuggested:
				fmt.Printf("  %s %s: %s\n", yellow("→"), o.Kind, o.Action)
			default:
				fmt.Printf("  %s %s: %s\n", gray("○"), o.Kind, o.Reason)
			}
		}

		if len(result.Improvements) > 0 {
			fmt.Printf("\n%s\n", yellow("Improvements:"))
			for _, imp := range result.Improvements {
				fmt.Printf("  %s: %s (%d → %d)\n",
					imp.Metric, green(imp.Improvement), imp.Before, imp.After)
			}
		} else {
			fmt.Printf("\n%s\n", gray("No measurable improvements this run"))
		}
		fmt.Println()
	},
}

func init() {
	optimizeCmd.Flags().StringSliceVar(&optimizeTypes, "types", nil, "Optimization types to run (code, dependencies)")
	rootCmd.AddCommand(optimizeCmd)
}
