// Package observability provides formatted terminal output for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/Kevin16883/Bridge-sub000/internal/grading"
	"github.com/Kevin16883/Bridge-sub000/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 8
)

// Score bands for colouring evaluation results
const (
	goodScore = 70
	fairScore = 40
)

// Printer handles formatted output for human-readable CLI mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// printStatus prints a coloured one-line status below a box
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printStatus(symbol, message string, attr color.Attribute) {
	c := color.New(attr)
	c.Fprintf(p.out, "%s ", symbol)
	fmt.Fprintln(p.out, message)
}

// PrintBreakdown outputs a decomposed demand with one entry per micro-task.
func (p *Printer) PrintBreakdown(breakdown *types.TaskBreakdown) {
	if breakdown == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Summary:  %s\n", breakdown.ProjectSummary))
	sb.WriteString(fmt.Sprintf("Budget:   %s\n", breakdown.TotalBudget))
	sb.WriteString(fmt.Sprintf("Tasks:    %d\n", len(breakdown.Tasks)))

	count := min(len(breakdown.Tasks), maxItemsToShow)
	for i := 0; i < count; i++ {
		task := breakdown.Tasks[i]
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, task.Title))
		sb.WriteString(fmt.Sprintf("    %s · %s · %s\n", task.Difficulty, task.EstimatedTime, task.Budget))
		if len(task.Skills) > 0 {
			skills := make([]string, len(task.Skills))
			for j, s := range task.Skills {
				skills[j] = string(s)
			}
			sb.WriteString(fmt.Sprintf("    Skills: %s\n", strings.Join(skills, ", ")))
		}
	}

	if len(breakdown.Tasks) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more tasks", len(breakdown.Tasks)-maxItemsToShow))
	}

	p.printBox("TASK BREAKDOWN", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintEvaluation outputs a score and its feedback, wrapped to the box width.
func (p *Printer) PrintEvaluation(result *types.EvaluationResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Score: %s / %d\n\n", formatScore(result.Score), types.MaxScore))
	sb.WriteString(strings.Join(wrap(result.Feedback, boxWidth-4), "\n"))
	p.printBox("EVALUATION", sb.String())

	switch {
	case !result.ScoreInRange():
		p.printStatus("⚠", fmt.Sprintf("score outside %d-%d", types.MinScore, types.MaxScore), color.FgYellow)
	case result.Score >= goodScore:
		p.printStatus("✓", "pass", color.FgGreen)
	case result.Score >= fairScore:
		p.printStatus("~", "partial", color.FgYellow)
	default:
		p.printStatus("✗", "needs work", color.FgRed)
	}
}

// PrintGradeSummary outputs the result of a batch grading run.
func (p *Printer) PrintGradeSummary(summary grading.Summary) {
	total := summary.Graded + summary.Failed + summary.Unrecorded
	if total == 0 {
		p.printStatus("✓", "no pending attempts", color.FgGreen)
		return
	}

	content := fmt.Sprintf("Graded:  %d\nFailed:  %d\n", summary.Graded, summary.Failed)
	if summary.Unrecorded > 0 {
		content += fmt.Sprintf("Unsaved: %d\n", summary.Unrecorded)
	}
	p.printBox("GRADING RUN", content+fmt.Sprintf("Total:   %d", total))
	if summary.Unrecorded > 0 {
		p.printStatus("✗", fmt.Sprintf("%d outcome(s) could not be saved; attempts left pending", summary.Unrecorded), color.FgRed)
		return
	}
	if summary.Failed > 0 {
		p.printStatus("⚠", fmt.Sprintf("%d attempt(s) could not be graded", summary.Failed), color.FgYellow)
		return
	}
	p.printStatus("✓", "all attempts graded", color.FgGreen)
}

func formatScore(score float64) string {
	if score == float64(int64(score)) {
		return fmt.Sprintf("%d", int64(score))
	}
	return fmt.Sprintf("%.1f", score)
}

// truncate shortens s to at most width runes
func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}

// wrap splits text into lines of at most width runes on word boundaries
func wrap(text string, width int) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			if utf8.RuneCountInString(line)+1+utf8.RuneCountInString(w) > width {
				lines = append(lines, line)
				line = w
				continue
			}
			line += " " + w
		}
		lines = append(lines, line)
	}
	return lines
}
