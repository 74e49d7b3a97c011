package prompts

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Kevin16883/Bridge-sub000/internal/types"
)

// Prompt is a system instruction plus the user content it applies to
type Prompt struct {
	System string
	User   string
}

// BuildBreakdownPrompt builds the prompt that decomposes a demand into micro-tasks.
// The allowed skills and difficulties are rendered from the same constants the
// task_breakdown schema enforces.
func BuildBreakdownPrompt(demand string) Prompt {
	skills := make([]string, 0, len(types.AllSkills()))
	for _, s := range types.AllSkills() {
		skills = append(skills, string(s))
	}
	difficulties := make([]string, 0, len(types.AllDifficulties()))
	for _, d := range types.AllDifficulties() {
		difficulties = append(difficulties, string(d))
	}

	return Prompt{
		System: Format(MustGet(breakdownFile, "breakdown-system"), map[string]string{
			"Skills":       strings.Join(skills, ", "),
			"Difficulties": strings.Join(difficulties, ", "),
		}),
		User: Format(MustGet(breakdownFile, "breakdown-user"), map[string]string{
			"Demand": demand,
		}),
	}
}

// BuildTagPrompt builds the prompt that labels a community question with 3-5 tags.
func BuildTagPrompt(title, content, category string) Prompt {
	if strings.TrimSpace(category) == "" {
		category = "general"
	}
	return Prompt{
		System: MustGet(communityFile, "tags-system"),
		User: Format(MustGet(communityFile, "tags-user"), map[string]string{
			"Title":    title,
			"Content":  content,
			"Category": category,
		}),
	}
}

// BuildAnswerSynthesisPrompt builds the prompt that combines comments into one answer.
// Each comment is attributed to its author. An empty list still yields a complete prompt.
func BuildAnswerSynthesisPrompt(title, content string, comments []types.Comment) Prompt {
	return Prompt{
		System: MustGet(communityFile, "answer-system"),
		User: Format(MustGet(communityFile, "answer-user"), map[string]string{
			"Title":    title,
			"Content":  content,
			"Comments": formatComments(comments),
		}),
	}
}

// BuildEvaluationPrompt builds the prompt that grades a challenge response against its rubric.
// Both the rubric and the response are embedded verbatim.
func BuildEvaluationPrompt(challenge types.ChallengeContent, response string) Prompt {
	return Prompt{
		System: Format(MustGet(evaluationFile, "evaluation-system"), map[string]string{
			"MinScore": strconv.Itoa(types.MinScore),
			"MaxScore": strconv.Itoa(types.MaxScore),
		}),
		User: Format(MustGet(evaluationFile, "evaluation-user"), map[string]string{
			"Challenge": challenge.String(),
			"Response":  response,
		}),
	}
}

func formatComments(comments []types.Comment) string {
	if len(comments) == 0 {
		return "Comments (0): none have been posted yet."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Comments (%d):\n", len(comments)))
	for i, c := range comments {
		author := strings.TrimSpace(c.AuthorName)
		if author == "" {
			author = "Anonymous"
		}
		sb.WriteString(fmt.Sprintf("%d. [%s]: %s\n", i+1, author, strings.TrimSpace(c.Body)))
	}
	return strings.TrimRight(sb.String(), "\n")
}
