// interfaces/http/views.go
package http

import (
	"time"

	"screener/internal/models"
)

// SessionView is the candidate-facing projection of a session. Role
// requirement checks stay internal and are never rendered here.
type SessionView struct {
	ID         string           `json:"id"`
	CreatedAt  time.Time        `json:"createdAt"`
	Phase      models.Phase     `json:"phase"`
	Questions  []QuestionView   `json:"questions,omitempty"`
	Answers    []string         `json:"answers,omitempty"`
	Cursor     int              `json:"cursor"`
	Evaluation *EvaluationView  `json:"evaluation,omitempty"`
	Transcript []models.Message `json:"transcript,omitempty"`
	Report     string           `json:"report,omitempty"`
}

type QuestionView struct {
	Text string              `json:"question"`
	Type models.QuestionType `json:"type"`
}

type EvaluationView struct {
	Score           int                       `json:"score"`
	TotalPossible   int                       `json:"totalPossible"`
	ScorePercentage float64                   `json:"scorePercentage"`
	Feedback        []models.QuestionFeedback `json:"feedback"`
}

func sessionView(s *models.Session) SessionView {
	view := SessionView{
		ID:         s.ID,
		CreatedAt:  s.CreatedAt,
		Phase:      s.Phase,
		Answers:    s.Answers,
		Cursor:     s.Cursor,
		Transcript: s.Transcript,
		Report:     s.Report,
	}
	for _, q := range s.Questions {
		view.Questions = append(view.Questions, QuestionView{Text: q.Text, Type: q.Type})
	}
	if s.Evaluation != nil {
		view.Evaluation = evaluationView(s.Evaluation)
	}
	return view
}

func evaluationView(e *models.Evaluation) *EvaluationView {
	return &EvaluationView{
		Score:           e.Score,
		TotalPossible:   e.TotalPossible,
		ScorePercentage: e.ScorePercentage(),
		Feedback:        e.Feedback,
	}
}
