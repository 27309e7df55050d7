package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/remedyops/remedy/internal/config"
	"github.com/remedyops/remedy/internal/orchestrator"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "remedy",
	Short: "Self-auditing maintenance loop for Python applications",
	Long: `Remedy audits an application's logs and source, repairs what it
safely can, and learns which fixes work over time.

Repairs are conservative: every mutated file is backed up first and
restored on failure, API errors are never auto-fixed, and anything
outside the deterministic fix catalog is surfaced as a suggestion.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "remedy.yaml", "Path to config file")
}

// newManager loads configuration and builds the wired component set
// shared by every subcommand
func newManager() (*orchestrator.Manager, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return orchestrator.New(cfg)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
