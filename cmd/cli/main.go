package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/UShah1996/AI-HOPE/adapters/excel"
	"github.com/UShah1996/AI-HOPE/app"
	"github.com/UShah1996/AI-HOPE/domain/plan"
	"github.com/UShah1996/AI-HOPE/internal"
	"github.com/UShah1996/AI-HOPE/internal/config"
	"github.com/UShah1996/AI-HOPE/ui"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ai-hope",
		Short: "AI-HOPE analysis core: validate and execute analysis plans against clinical datasets",
	}

	rootCmd.AddCommand(
		newSchemaCmd(),
		newAnalyzeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newService() (*app.AnalysisService, error) {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return app.NewAnalysisService(cfg, internal.NewDefaultLogger()), nil
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [dataset-dir]",
		Short: "Load a dataset directory and print its inferred schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := newService()
			if err != nil {
				return err
			}
			sch, err := service.Schema(args[0])
			if err != nil {
				return err
			}
			for _, col := range sch.Columns {
				v := sch.Variables[col]
				line := fmt.Sprintf("%-30s %s", col, v.Kind)
				if len(v.Values) > 0 {
					line += fmt.Sprintf("  values: %v", v.Values)
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}

func newAnalyzeCmd() *cobra.Command {
	var planFile string
	var xlsxOut string

	cmd := &cobra.Command{
		Use:   "analyze [dataset-dir]",
		Short: "Run a candidate analysis plan through correction, validation, and execution",
		Long: `Run a candidate analysis plan against a dataset directory.

The plan is a JSON object with a "mode" (survival, case_control,
association_scan) and mode-specific fields. Example:

  ai-hope analyze data/TCGA_COAD --plan plan.json --xlsx result.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(planFile)
			if err != nil {
				return fmt.Errorf("cannot read plan file: %w", err)
			}
			var candidate plan.Plan
			if err := json.Unmarshal(raw, &candidate); err != nil {
				return fmt.Errorf("plan file is not valid JSON: %w", err)
			}

			service, err := newService()
			if err != nil {
				return err
			}

			res, corrections, err := service.Analyze(args[0], candidate)
			for _, c := range corrections {
				fmt.Fprintf(os.Stderr, "auto-corrected %s: %q -> %q\n", c.Field, c.From, c.To)
			}
			if err != nil {
				return err
			}

			fmt.Print(ui.RenderMarkdown(res))

			if xlsxOut != "" {
				if err := excel.SaveResult(xlsxOut, res); err != nil {
					return fmt.Errorf("cannot write workbook: %w", err)
				}
				fmt.Fprintf(os.Stderr, "workbook written to %s\n", xlsxOut)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&planFile, "plan", "", "path to the candidate plan JSON file")
	cmd.Flags().StringVar(&xlsxOut, "xlsx", "", "optional xlsx export path")
	_ = cmd.MarkFlagRequired("plan")

	return cmd
}
