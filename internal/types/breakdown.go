// Package types provides the value objects exchanged between the marketplace API and the AI pipelines.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Skill is one of the fixed skill categories a micro-task can require
type Skill string

// Skill constants define the allowed skill enumeration
const (
	SkillLogic         Skill = "logic"
	SkillCreative      Skill = "creative"
	SkillTechnical     Skill = "technical"
	SkillCommunication Skill = "communication"
)

// AllSkills returns the skill enumeration in its canonical order.
func AllSkills() []Skill {
	return []Skill{SkillLogic, SkillCreative, SkillTechnical, SkillCommunication}
}

// Valid reports whether s belongs to the skill enumeration.
func (s Skill) Valid() bool {
	for _, known := range AllSkills() {
		if s == known {
			return true
		}
	}
	return false
}

// Difficulty is the expected experience level for a micro-task
type Difficulty string

// Difficulty constants define the allowed difficulty levels
const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// AllDifficulties returns the difficulty enumeration in ascending order.
func AllDifficulties() []Difficulty {
	return []Difficulty{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced}
}

// Valid reports whether d belongs to the difficulty enumeration.
func (d Difficulty) Valid() bool {
	for _, known := range AllDifficulties() {
		if d == known {
			return true
		}
	}
	return false
}

// TaskBreakdown is the validated result of decomposing a demand into micro-tasks
type TaskBreakdown struct {
	ProjectSummary string          `json:"projectSummary" yaml:"project_summary"`
	TotalBudget    string          `json:"totalBudget" yaml:"total_budget"`
	Tasks          []MicroTaskSpec `json:"tasks" yaml:"tasks"`
}

// MicroTaskSpec describes one atomic unit of work produced by decomposition.
// EstimatedTime and Budget are free text as returned by the model (e.g. "2 hours", "$150").
type MicroTaskSpec struct {
	Title         string     `json:"title" yaml:"title"`
	Description   string     `json:"description" yaml:"description"`
	Skills        []Skill    `json:"skills" yaml:"skills"`
	EstimatedTime string     `json:"estimatedTime" yaml:"estimated_time"`
	Difficulty    Difficulty `json:"difficulty" yaml:"difficulty"`
	Budget        string     `json:"budget" yaml:"budget"`
}
