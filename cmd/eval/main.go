// Package main implements tourassist-eval, which scores the chat pipeline
// against a file of eval cases.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	applog "github.com/tourassist/backend/internal/infrastructure/log"
	"github.com/tourassist/backend/internal/wire"
)

var (
	tenantID  string
	casesPath string
	outputDir string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tourassist-eval",
	Short: "Evaluate TourAssist answers against eval cases",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run eval cases and write artifacts",
	Long: `Run every case through the chat pipeline for a tenant, then write
summary.json, metrics.json, case_results.json and diff.md to the output
directory. The summary is printed to stdout.

Examples:
  tourassist-eval run --tenant museum --cases eval/cases.yaml --output eval/out`,
	Args: cobra.NoArgs,
	RunE: runEval,
}

func init() {
	runCmd.Flags().StringVar(&tenantID, "tenant", "", "Tenant identifier (required)")
	runCmd.Flags().StringVar(&casesPath, "cases", "", "Eval cases file, JSON or YAML (required)")
	runCmd.Flags().StringVar(&outputDir, "output", "eval_output", "Artifact directory")
	_ = runCmd.MarkFlagRequired("tenant")
	_ = runCmd.MarkFlagRequired("cases")

	rootCmd.AddCommand(runCmd)
}

func runEval(cmd *cobra.Command, _ []string) error {
	applog.Init(nil)

	app, cleanup, err := wire.InitializeEval()
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer cleanup()

	summary, err := app.Run(cmd.Context(), tenantID, casesPath, outputDir)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
