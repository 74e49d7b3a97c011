package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Kevin16883/Bridge-sub000/internal/grading"
	"github.com/Kevin16883/Bridge-sub000/internal/observability"
)

var gradeCmd = &cobra.Command{
	Use:   "grade",
	Short: "Grade pending challenge attempts",
	Long: "Evaluate every challenge attempt still pending in the database, such as those left behind when the " +
		"server stopped mid-request, with a bounded number of completion calls in flight.",
	RunE: runGrade,
}

var (
	gradeConcurrency int
	gradeLimit       int
	gradeFormat      string
)

func init() {
	gradeCmd.Flags().IntVar(&gradeConcurrency, "concurrency", grading.DefaultConcurrency, "Maximum evaluations in flight")
	gradeCmd.Flags().IntVar(&gradeLimit, "limit", 0, "Maximum attempts to grade (0 for all)")
	gradeCmd.Flags().StringVarP(&gradeFormat, "format", "f", formatText, "Output format: text, json or yaml")
	rootCmd.AddCommand(gradeCmd)
}

func runGrade(cmd *cobra.Command, _ []string) error {
	if err := validateFormat(gradeFormat); err != nil {
		return err
	}
	if gradeConcurrency < 1 {
		return fmt.Errorf("--concurrency must be at least 1, got %d", gradeConcurrency)
	}
	if gradeLimit < 0 {
		return fmt.Errorf("--limit must be non-negative, got %d", gradeLimit)
	}

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	database, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	assistant, client, err := newAssistant(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	grader := grading.New(database, assistant, logger)
	summary, gradeErr := grader.GradePending(ctx, gradeConcurrency, gradeLimit)
	if gradeErr != nil && summary == (grading.Summary{}) {
		return fmt.Errorf("grading failed: %w", gradeErr)
	}

	// report what was graded even when some outcomes could not be stored
	if err := writeResult(cmd.OutOrStdout(), gradeFormat, summary, func(p *observability.Printer) {
		p.PrintGradeSummary(summary)
	}); err != nil {
		return err
	}
	if gradeErr != nil {
		return fmt.Errorf("some grading outcomes were not stored: %w", gradeErr)
	}
	return nil
}
