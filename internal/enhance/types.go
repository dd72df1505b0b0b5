package enhance

import (
	"github.com/trollornot/troll-analyzer/pkg/models"
)

// Request carries the parsed conversation and the rule-based findings the
// model should weigh in context.
type Request struct {
	Messages     []models.Message
	RuleScore    int
	RuleVerdict  models.Verdict
	Signals      models.SignalBreakdown
	FlaggedUsers []models.FlaggedUser
}

// UserAssessment is the model's read on a single flagged participant.
type UserAssessment struct {
	Author     string `json:"author"`
	Assessment string `json:"assessment"`
}

// Analysis is the model-adjusted result. The rule-based score is never
// mutated; the caller decides whether to display these values instead.
type Analysis struct {
	AdjustedScore       int              `json:"adjustedScore"`
	AdjustedVerdict     models.Verdict   `json:"adjustedVerdict"`
	Reasoning           []string         `json:"reasoning"`
	Recommendation      string           `json:"recommendation"`
	ContextNotes        string           `json:"contextNotes,omitempty"`
	FlaggedUserAnalysis []UserAssessment `json:"flaggedUserAnalysis,omitempty"`
}
