package assist

import "fmt"

// InputTooShortError is returned before any completion call when an input
// fails its length precondition
type InputTooShortError struct {
	Field string
	Min   int
	Got   int
}

func (e *InputTooShortError) Error() string {
	return fmt.Sprintf("%s is too short: got %d characters, need at least %d", e.Field, e.Got, e.Min)
}
