package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Kevin16883/Bridge-sub000/internal/observability"
)

var decomposeCmd = &cobra.Command{
	Use:   "decompose [demand...]",
	Short: "Break a demand into priced micro-tasks",
	Long: "Decompose a free-text demand into a project summary, a total budget and a list of micro-tasks. " +
		"The demand is read from the arguments, or from stdin when none are given or the only argument is \"-\".",
	RunE: runDecompose,
}

var decomposeFormat string

func init() {
	decomposeCmd.Flags().StringVarP(&decomposeFormat, "format", "f", formatText, "Output format: text, json or yaml")
	rootCmd.AddCommand(decomposeCmd)
}

func runDecompose(cmd *cobra.Command, args []string) error {
	if err := validateFormat(decomposeFormat); err != nil {
		return err
	}

	demand, err := readInput(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	assistant, client, err := newAssistant(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	breakdown, err := assistant.Decompose(ctx, demand)
	if err != nil {
		return fmt.Errorf("decomposition failed: %w", err)
	}

	return writeResult(cmd.OutOrStdout(), decomposeFormat, breakdown, func(p *observability.Printer) {
		p.PrintBreakdown(breakdown)
	})
}

