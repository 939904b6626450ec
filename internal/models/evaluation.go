package models

// Verdict is the correctness judgment attached to one answer.
type Verdict string

const (
	VerdictCorrect          Verdict = "correct"
	VerdictIncorrect        Verdict = "incorrect"
	VerdictEvaluationFailed Verdict = "evaluation_failed"
)

// QuestionFeedback is the per-question outcome of an evaluation pass.
type QuestionFeedback struct {
	Index       int     `json:"index"`
	Verdict     Verdict `json:"verdict"`
	Points      int     `json:"points"`
	Explanation string  `json:"explanation"`
}

// Evaluation is the aggregate result of scoring a full answer set.
// RoleFeedback carries internal-only supplementary notes against the
// role profile; it never contributes to Score.
type Evaluation struct {
	Score         int                `json:"score"`
	TotalPossible int                `json:"totalPossible"`
	Feedback      []QuestionFeedback `json:"feedback"`
	RoleFeedback  []string           `json:"roleFeedback,omitempty"`
}

// ScorePercentage returns the score as a percentage of the attainable total.
func (e *Evaluation) ScorePercentage() float64 {
	if e.TotalPossible == 0 {
		return 0
	}
	return float64(e.Score) / float64(e.TotalPossible) * 100
}

// RoleProfile is the structured requirement list looked up by role name.
// Absence of a profile is a valid outcome, not an error.
type RoleProfile struct {
	Role         string   `json:"role" db:"role"`
	Requirements []string `json:"requirements" db:"requirements"`
}
