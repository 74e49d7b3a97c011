package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Kevin16883/Bridge-sub000/internal/observability"
	"github.com/Kevin16883/Bridge-sub000/internal/types"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate --challenge FILE [response...]",
	Short: "Grade one response against a challenge rubric",
	Long: "Evaluate a performer's response against a challenge's JSON content and print the score and feedback. " +
		"The response is read from the arguments, or from stdin when none are given or the only argument is \"-\".",
	RunE: runEvaluate,
}

var (
	evaluateChallengeFile string
	evaluateFormat        string
)

func init() {
	evaluateCmd.Flags().StringVarP(&evaluateChallengeFile, "challenge", "c", "", "Path to the challenge content JSON file (required)")
	evaluateCmd.Flags().StringVarP(&evaluateFormat, "format", "f", formatText, "Output format: text, json or yaml")
	_ = evaluateCmd.MarkFlagRequired("challenge")
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	if err := validateFormat(evaluateFormat); err != nil {
		return err
	}

	challenge, err := readChallenge(evaluateChallengeFile)
	if err != nil {
		return err
	}

	response, err := readInput(args, cmd.InOrStdin())
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

	result, err := assistant.Evaluate(ctx, challenge, response)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	return writeResult(cmd.OutOrStdout(), evaluateFormat, result, func(p *observability.Printer) {
		p.PrintEvaluation(result)
	})
}

// readChallenge loads a challenge's content, which must be a JSON document
func readChallenge(path string) (types.ChallengeContent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read challenge file: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("challenge file %s is not valid JSON", path)
	}
	return types.ChallengeContent(data), nil
}
