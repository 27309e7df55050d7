package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var logsRecent int

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show recent classified errors from the error log",
	Run: func(cmd *cobra.Command, args []string) {
		mgr, err := newManager()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer mgr.Close()

		errors := mgr.RecentLogErrors(logsRecent)

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("\n%s\n\n", cyan("=== Recent Errors ==="))
		if len(errors) == 0 {
			fmt.Printf("  %s\n\n", gray("No recent errors"))
			return
		}
		for _, e := range errors {
			fmt.Printf("  %s %s\n", red(fmt.Sprintf("[%s]", e.Type)), e.Line)
		}
		fmt.Println()
	},
}

func init() {
	logsCmd.Flags().IntVar(&logsRecent, "recent", 10, "Number of recent errors to show")
	rootCmd.AddCommand(logsCmd)
}
