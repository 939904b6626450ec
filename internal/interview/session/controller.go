// internal/interview/session/controller.go
package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"screener/internal/common/errors"
	"screener/internal/common/genai"
	"screener/internal/common/logger"
	"screener/internal/common/metrics"
	"screener/internal/models"
	"screener/internal/storage"
)

const discussionFallback = "I could not process that right now. Please try again, or complete the interview to receive your report."

const privacyReply = "For privacy reasons, I cannot display your personal details directly. However, I can confirm that your information is securely stored and will only be used for the hiring process. Let me know if you have any other questions about the interview process or your technical skills!"

// sensitiveKeywords flags discussion messages asking about stored
// personal data. Those get a canned privacy reply instead of a
// generation call.
var sensitiveKeywords = []string{"name", "email", "phone", "contact", "details"}

func asksForPersonalData(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range sensitiveKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// QuestionSource builds the question set for a tech stack.
type QuestionSource interface {
	Build(ctx context.Context, techStack []string) ([]models.Question, error)
}

// Scorer grades a full answer set.
type Scorer interface {
	Evaluate(ctx context.Context, qs []models.Question, answers []string, role *models.RoleProfile) *models.Evaluation
}

// Composer renders the final report text.
type Composer interface {
	Compose(ctx context.Context, profile models.CandidateProfile, qs []models.Question, eval *models.Evaluation) string
}

// RoleSource resolves role requirement profiles; a missing profile is
// (nil, nil).
type RoleSource interface {
	Lookup(ctx context.Context, role string) (*models.RoleProfile, error)
}

// Notifier delivers the finished report; may be nil when disabled.
type Notifier interface {
	SendReport(ctx context.Context, profile models.CandidateProfile, report string) error
}

// Options tune controller behavior beyond its collaborators.
type Options struct {
	// RequireRoleProfile rejects intake for positions without a curated
	// requirement list instead of proceeding without role checks.
	RequireRoleProfile bool
}

// Controller drives one interview session through its phases. Every
// operation loads the session, checks the phase, applies the change and
// saves, so any replica can serve any request.
type Controller struct {
	repo      models.SessionRepository
	questions QuestionSource
	scorer    Scorer
	composer  Composer
	roles     RoleSource
	generator genai.Generator
	archive   storage.Sink
	notifier  Notifier
	options   Options
	logger    logger.Logger
}

func NewController(
	repo models.SessionRepository,
	questions QuestionSource,
	scorer Scorer,
	composer Composer,
	roles RoleSource,
	generator genai.Generator,
	archive storage.Sink,
	notifier Notifier,
	options Options,
	log logger.Logger,
) *Controller {
	return &Controller{
		repo:      repo,
		questions: questions,
		scorer:    scorer,
		composer:  composer,
		roles:     roles,
		generator: generator,
		archive:   archive,
		notifier:  notifier,
		options:   options,
		logger:    log.WithFields(map[string]interface{}{"component": "session"}),
	}
}

// Start opens a fresh session in the intake phase.
func (c *Controller) Start(ctx context.Context) (*models.Session, error) {
	session := &models.Session{
		ID:         uuid.New().String(),
		CreatedAt:  time.Now().UTC(),
		Phase:      models.PhaseIntake,
		Transcript: []models.Message{},
	}
	if err := c.repo.Create(ctx, session); err != nil {
		return nil, err
	}
	metrics.SessionsStarted.Inc()
	c.logger.Info("session started", map[string]interface{}{"sessionId": session.ID})
	return session, nil
}

// Get loads a session without modifying it.
func (c *Controller) Get(ctx context.Context, id string) (*models.Session, error) {
	return c.repo.Get(ctx, id)
}

// SubmitIntake validates the profile, resolves the role profile and
// generates the question set. The session only advances when the full
// question set is ready; any failure leaves it in intake.
func (c *Controller) SubmitIntake(ctx context.Context, id string, profile models.CandidateProfile) (*models.Session, error) {
	session, err := c.load(ctx, id, "submit_intake", models.PhaseIntake)
	if err != nil {
		return nil, err
	}

	if err := profile.Validate(); err != nil {
		return nil, errors.NewValidationFailedError(err.Error())
	}

	var role *models.RoleProfile
	if c.roles != nil {
		role, err = c.roles.Lookup(ctx, profile.DesiredPosition)
		if err != nil {
			return nil, err
		}
	}
	if role == nil && c.options.RequireRoleProfile {
		return nil, errors.NewRoleProfileNotFoundError(profile.DesiredPosition)
	}

	qs, err := c.questions.Build(ctx, profile.TechStack)
	if err != nil {
		return nil, err
	}

	session.Profile = profile
	session.Role = role
	session.Questions = qs
	session.Answers = make([]string, len(qs))
	session.Cursor = 0
	session.Phase = models.PhaseAnswering
	return c.save(ctx, session)
}

// SetAnswer records the answer draft for the question under the cursor.
func (c *Controller) SetAnswer(ctx context.Context, id, answer string) (*models.Session, error) {
	session, err := c.load(ctx, id, "set_answer", models.PhaseAnswering)
	if err != nil {
		return nil, err
	}
	session.Answers[session.Cursor] = answer
	return c.save(ctx, session)
}

// Previous moves the cursor back one question, stopping at the first.
func (c *Controller) Previous(ctx context.Context, id string) (*models.Session, error) {
	session, err := c.load(ctx, id, "previous", models.PhaseAnswering)
	if err != nil {
		return nil, err
	}
	if session.Cursor > 0 {
		session.Cursor--
	}
	return c.save(ctx, session)
}

// Next moves the cursor forward one question, stopping at the last.
func (c *Controller) Next(ctx context.Context, id string) (*models.Session, error) {
	session, err := c.load(ctx, id, "next", models.PhaseAnswering)
	if err != nil {
		return nil, err
	}
	if session.Cursor < len(session.Questions)-1 {
		session.Cursor++
	}
	return c.save(ctx, session)
}

// SubmitAnswers closes the answering phase and runs the one scoring pass
// for this session. It is only reachable from the last question; a
// non-nil current carries the in-flight answer text and is flushed under
// the cursor before scoring, empty string included, so the candidate can
// still blank their last answer. The result is cached on the session;
// only Reset discards it.
func (c *Controller) SubmitAnswers(ctx context.Context, id string, current *string) (*models.Session, error) {
	session, err := c.load(ctx, id, "submit_answers", models.PhaseAnswering)
	if err != nil {
		return nil, err
	}
	if !session.AtLastQuestion() {
		return nil, errors.NewInvalidPhaseTransitionError(string(session.Phase), "submit_answers")
	}
	if current != nil {
		session.Answers[session.Cursor] = *current
	}

	session.Evaluation = c.scorer.Evaluate(ctx, session.Questions, session.Answers, session.Role)
	session.Phase = models.PhaseEvaluating
	c.logger.Info("answers evaluated", map[string]interface{}{
		"sessionId": session.ID,
		"score":     session.Evaluation.Score,
		"total":     session.Evaluation.TotalPossible,
	})
	return c.save(ctx, session)
}

// Discuss handles one follow-up exchange about the evaluation. A
// generation failure degrades to a canned reply; the user turn is kept
// in the transcript either way.
func (c *Controller) Discuss(ctx context.Context, id, message string) (*models.Session, error) {
	session, err := c.load(ctx, id, "discuss", models.PhaseEvaluating, models.PhaseDiscussion)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(message) == "" {
		return nil, errors.NewValidationFailedError("message must not be empty")
	}

	session.Phase = models.PhaseDiscussion
	session.Transcript = append(session.Transcript, models.Message{Role: models.RoleUser, Content: message})

	if asksForPersonalData(message) {
		session.Transcript = append(session.Transcript, models.Message{Role: models.RoleAssistant, Content: privacyReply})
		return c.save(ctx, session)
	}

	reply, err := c.generator.Generate(ctx, c.buildDiscussionPrompt(session, message))
	if err != nil {
		c.logger.Warn("discussion reply generation failed", map[string]interface{}{
			"sessionId": session.ID,
			"error":     err.Error(),
		})
		reply = discussionFallback
	}
	session.Transcript = append(session.Transcript, models.Message{Role: models.RoleAssistant, Content: strings.TrimSpace(reply)})

	return c.save(ctx, session)
}

// Complete finishes the interview: the report is composed, archived and
// mailed exactly once. Archive appends are fire-and-forget; a sink
// failure is logged and never blocks completion, so a client retry can
// not duplicate rows in the sinks that did succeed. Calling Complete on
// a completed session returns the stored report without appending again.
func (c *Controller) Complete(ctx context.Context, id string) (*models.Session, error) {
	session, err := c.load(ctx, id, "complete",
		models.PhaseEvaluating, models.PhaseDiscussion, models.PhaseCompleted)
	if err != nil {
		return nil, err
	}
	if session.Phase == models.PhaseCompleted {
		return session, nil
	}

	session.Report = c.composer.Compose(ctx, session.Profile, session.Questions, session.Evaluation)
	session.Phase = models.PhaseCompleted

	if c.archive != nil {
		if err := c.archive.AppendResponse(ctx, storage.NewResponseRecord(session)); err != nil {
			c.logger.Error("interview archive append failed", map[string]interface{}{
				"sessionId": session.ID,
				"error":     err.Error(),
			})
		}
		if err := c.archive.AppendReport(ctx, storage.NewReportRecord(session)); err != nil {
			c.logger.Error("report archive append failed", map[string]interface{}{
				"sessionId": session.ID,
				"error":     err.Error(),
			})
		}
	}
	if c.notifier != nil {
		if err := c.notifier.SendReport(ctx, session.Profile.Anonymized(), session.Report); err != nil {
			c.logger.Warn("report notification failed", map[string]interface{}{
				"sessionId": session.ID,
				"error":     err.Error(),
			})
		}
	}

	metrics.SessionsCompleted.Inc()
	c.logger.Info("session completed", map[string]interface{}{"sessionId": session.ID})
	return c.save(ctx, session)
}

// Reset returns a post-evaluation session to intake. The profile and
// the discussion transcript survive; questions, answers, the cursor,
// the cached evaluation and the report do not.
func (c *Controller) Reset(ctx context.Context, id string) (*models.Session, error) {
	session, err := c.load(ctx, id, "reset",
		models.PhaseEvaluating, models.PhaseDiscussion, models.PhaseCompleted)
	if err != nil {
		return nil, err
	}

	session.Questions = nil
	session.Answers = nil
	session.Cursor = 0
	session.Evaluation = nil
	session.Report = ""
	session.Phase = models.PhaseIntake
	return c.save(ctx, session)
}

// End terminates a session from any phase. Ended is absorbing.
func (c *Controller) End(ctx context.Context, id string) (*models.Session, error) {
	session, err := c.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.IsTerminal() {
		return session, nil
	}
	session.Phase = models.PhaseEnded
	return c.save(ctx, session)
}

func (c *Controller) buildDiscussionPrompt(session *models.Session, message string) string {
	var parts []string
	parts = append(parts, "You are a technical interviewer discussing assessment results with a candidate.")
	parts = append(parts, "")
	parts = append(parts, fmt.Sprintf("Position: %s", session.Profile.DesiredPosition))
	parts = append(parts, fmt.Sprintf("Experience: %d years", session.Profile.YearsOfExperience))
	parts = append(parts, fmt.Sprintf("Tech Stack: %s", strings.Join(session.Profile.TechStack, ", ")))
	if session.Evaluation != nil {
		parts = append(parts, fmt.Sprintf("Score: %d/%d (%.1f%%)",
			session.Evaluation.Score, session.Evaluation.TotalPossible, session.Evaluation.ScorePercentage()))
	}
	parts = append(parts, "")
	parts = append(parts, fmt.Sprintf("Candidate's Message: %s", message))
	parts = append(parts, "")
	parts = append(parts, "Reply professionally and concretely. Do not reveal internal role requirement checks.")
	return strings.Join(parts, "\n")
}

// load fetches the session and enforces the phase gate for an action.
func (c *Controller) load(ctx context.Context, id, action string, allowed ...models.Phase) (*models.Session, error) {
	session, err := c.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, phase := range allowed {
		if session.Phase == phase {
			return session, nil
		}
	}
	return nil, errors.NewInvalidPhaseTransitionError(string(session.Phase), action)
}

func (c *Controller) save(ctx context.Context, session *models.Session) (*models.Session, error) {
	if err := c.repo.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}
