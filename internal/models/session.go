package models

import (
	"context"
	"time"
)

// Phase is the current named state of the interview workflow.
type Phase string

const (
	PhaseIntake     Phase = "intake"
	PhaseAnswering  Phase = "answering"
	PhaseEvaluating Phase = "evaluating"
	PhaseDiscussion Phase = "discussion"
	PhaseCompleted  Phase = "completed"
	PhaseEnded      Phase = "ended"
)

// MessageRole tags one transcript entry.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is one entry in the discussion transcript.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// Session holds the full state of one interview run. Invariants:
// len(Answers) == len(Questions) at all times, and while the phase is
// answering the cursor stays within [0, len(Questions)).
type Session struct {
	ID         string           `json:"id"`
	CreatedAt  time.Time        `json:"createdAt"`
	Phase      Phase            `json:"phase"`
	Profile    CandidateProfile `json:"profile"`
	Role       *RoleProfile     `json:"roleProfile,omitempty"`
	Questions  []Question       `json:"questions"`
	Answers    []string         `json:"answers"`
	Cursor     int              `json:"cursor"`
	Evaluation *Evaluation      `json:"evaluation,omitempty"`
	Transcript []Message        `json:"transcript"`
	Report     string           `json:"report,omitempty"`
}

// IsTerminal reports whether the session accepts no further transitions.
func (s *Session) IsTerminal() bool {
	return s.Phase == PhaseEnded
}

// AtLastQuestion reports whether the cursor sits on the final question.
func (s *Session) AtLastQuestion() bool {
	return len(s.Questions) > 0 && s.Cursor == len(s.Questions)-1
}

// SessionRepository defines session persistence between requests.
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id string) error
}
