package types

import "encoding/json"

// Score bounds the evaluation prompt asks the model to respect
const (
	MinScore = 0
	MaxScore = 100
)

// ChallengeContent is the author-defined rubric stored with a challenge.
// It is opaque to the pipelines and embedded in the evaluation prompt as-is.
type ChallengeContent json.RawMessage

// MarshalJSON emits the stored rubric unchanged (null when empty)
func (c ChallengeContent) MarshalJSON() ([]byte, error) {
	if len(c) == 0 {
		return []byte("null"), nil
	}
	return c, nil
}

// UnmarshalJSON stores a copy of the raw rubric bytes
func (c *ChallengeContent) UnmarshalJSON(data []byte) error {
	*c = append((*c)[:0], data...)
	return nil
}

// String returns the rubric as text for prompt embedding
func (c ChallengeContent) String() string {
	return string(c)
}

// EvaluationResult is the validated grading of a challenge response.
// Score is not clamped; see ScoreInRange.
type EvaluationResult struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// ScoreInRange reports whether the model kept the score within 0-100.
func (r EvaluationResult) ScoreInRange() bool {
	return r.Score >= MinScore && r.Score <= MaxScore
}
