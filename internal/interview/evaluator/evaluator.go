// internal/interview/evaluator/evaluator.go
package evaluator

import (
	"context"
	"fmt"
	"strings"

	"screener/internal/common/genai"
	"screener/internal/common/logger"
	"screener/internal/common/metrics"
	"screener/internal/models"
)

const (
	explanationNoAnswer   = "No answer provided."
	explanationIrrelevant = "Answer is irrelevant to the question."
	explanationEvalFailed = "Evaluation could not be completed."
)

// Evaluator grades a full answer set against its question set. Backend
// verdicts are untrusted text: a reply that cannot be parsed into a
// verdict token degrades that single question to evaluation_failed and
// never fails the pass as a whole.
type Evaluator struct {
	config    *Config
	generator genai.Generator
	logger    logger.Logger
}

func New(config *Config, generator genai.Generator, log logger.Logger) *Evaluator {
	return &Evaluator{
		config:    config,
		generator: generator,
		logger:    log.WithFields(map[string]interface{}{"component": "evaluator"}),
	}
}

// Evaluate runs one scoring pass. len(answers) must equal len(questions);
// the result carries one feedback entry per question in question order.
// role may be nil; when present each requirement yields a supplementary
// feedback line that never affects the score.
func (e *Evaluator) Evaluate(ctx context.Context, qs []models.Question, answers []string, role *models.RoleProfile) *models.Evaluation {
	eval := &models.Evaluation{
		TotalPossible: models.TotalPossible(qs),
		Feedback:      make([]models.QuestionFeedback, 0, len(qs)),
	}

	for i, q := range qs {
		fb := e.evaluateOne(ctx, i, q, answers[i])
		metrics.EvaluationVerdicts.WithLabelValues(string(fb.Verdict)).Inc()
		eval.Score += fb.Points
		eval.Feedback = append(eval.Feedback, fb)
	}

	if role != nil {
		eval.RoleFeedback = e.evaluateRoleFit(ctx, role, answers)
	}

	e.logger.Info("evaluation pass completed", map[string]interface{}{
		"score":         eval.Score,
		"totalPossible": eval.TotalPossible,
		"questions":     len(qs),
	})
	return eval
}

func (e *Evaluator) evaluateOne(ctx context.Context, index int, q models.Question, answer string) models.QuestionFeedback {
	fb := models.QuestionFeedback{Index: index}

	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		// Rejected before any generation call.
		fb.Verdict = models.VerdictIncorrect
		fb.Explanation = explanationNoAnswer
		return fb
	}

	if e.config.RequireRelevance && !e.isRelevant(ctx, q, trimmed) {
		fb.Verdict = models.VerdictIncorrect
		fb.Explanation = explanationIrrelevant
		return fb
	}

	reply, err := e.generator.Generate(ctx, e.buildVerdictPrompt(q, trimmed))
	if err != nil {
		fb.Verdict = models.VerdictEvaluationFailed
		fb.Explanation = explanationEvalFailed
		return fb
	}

	verdict, explanation, ok := parseVerdict(reply)
	if !ok {
		fb.Verdict = models.VerdictEvaluationFailed
		fb.Explanation = explanationEvalFailed
		return fb
	}

	fb.Verdict = verdict
	fb.Explanation = explanation
	if verdict == models.VerdictCorrect {
		fb.Points = q.Points()
	}
	return fb
}

func (e *Evaluator) buildVerdictPrompt(q models.Question, answer string) string {
	var parts []string

	if q.Type == models.QuestionTypeCode {
		parts = append(parts, "You are a strict technical interviewer evaluating code.")
		parts = append(parts, "")
		parts = append(parts, fmt.Sprintf("Coding Question: %s", q.Text))
		parts = append(parts, fmt.Sprintf("Submitted Code: %s", answer))
		parts = append(parts, "")
		parts = append(parts, "Evaluate for:")
		parts = append(parts, "1. Correctness")
		parts = append(parts, "2. Proper syntax")
		parts = append(parts, "3. Efficiency")
		parts = append(parts, "4. Error handling")
		parts = append(parts, "")
		parts = append(parts, `First line must be exactly "CORRECT" or "INCORRECT"`)
		parts = append(parts, "Then provide specific technical feedback.")
	} else {
		parts = append(parts, "You are a strict technical interviewer. Evaluate this answer with high standards.")
		parts = append(parts, "")
		parts = append(parts, fmt.Sprintf("Question: %s", q.Text))
		parts = append(parts, fmt.Sprintf("Candidate's Answer: %s", answer))
		parts = append(parts, "")
		parts = append(parts, "Evaluate if the answer demonstrates clear understanding and technical accuracy.")
		parts = append(parts, `First line must be exactly "CORRECT" or "INCORRECT"`)
		parts = append(parts, "Then provide a brief explanation of why.")
	}

	return strings.Join(parts, "\n")
}

// parseVerdict reads the first line as the verdict token. When the first
// line is not an exact token the whole reply is searched case-insensitively,
// checking INCORRECT before CORRECT because the former contains the latter.
func parseVerdict(reply string) (models.Verdict, string, bool) {
	lines := strings.Split(strings.TrimSpace(reply), "\n")
	first := strings.ToUpper(strings.TrimSpace(lines[0]))
	explanation := strings.TrimSpace(strings.Join(lines[1:], " "))
	if explanation == "" {
		explanation = "No explanation provided."
	}

	switch first {
	case "CORRECT":
		return models.VerdictCorrect, explanation, true
	case "INCORRECT":
		return models.VerdictIncorrect, explanation, true
	}

	upper := strings.ToUpper(reply)
	if strings.Contains(upper, "INCORRECT") {
		return models.VerdictIncorrect, explanation, true
	}
	if strings.Contains(upper, "CORRECT") {
		return models.VerdictCorrect, explanation, true
	}

	return "", "", false
}

// isRelevant asks the backend whether the answer is on-topic. Any failure
// counts as irrelevant, matching the conservative gating of the stricter
// intake flow.
func (e *Evaluator) isRelevant(ctx context.Context, q models.Question, answer string) bool {
	var parts []string
	parts = append(parts, "You are a relevance checker for a technical interview.")
	parts = append(parts, "")
	parts = append(parts, fmt.Sprintf("Question: %s", q.Text))
	parts = append(parts, fmt.Sprintf("Candidate's Answer: %s", answer))
	parts = append(parts, "")
	parts = append(parts, "Instructions:")
	parts = append(parts, "1. Determine whether the answer attempts to address the question.")
	parts = append(parts, "2. Ignore whether the answer is correct.")
	parts = append(parts, `3. Your response must be exactly "RELEVANT" or "NOT RELEVANT".`)

	reply, err := e.generator.Generate(ctx, strings.Join(parts, "\n"))
	if err != nil {
		return false
	}

	verdict := strings.ToUpper(strings.TrimSpace(reply))
	switch verdict {
	case "RELEVANT":
		return true
	case "NOT RELEVANT":
		return false
	}

	if strings.Contains(verdict, "NOT RELEVANT") {
		return false
	}
	return strings.Contains(verdict, "RELEVANT")
}

// evaluateRoleFit produces one internal-use feedback line per requirement.
// A failed check yields a line, never an error.
func (e *Evaluator) evaluateRoleFit(ctx context.Context, role *models.RoleProfile, answers []string) []string {
	feedback := make([]string, 0, len(role.Requirements))
	combined := strings.TrimSpace(strings.Join(answers, "\n"))

	for _, requirement := range role.Requirements {
		var parts []string
		parts = append(parts, fmt.Sprintf(
			"You are a technical interviewer evaluating a candidate's suitability for the role of %s.", role.Role))
		parts = append(parts, "")
		parts = append(parts, fmt.Sprintf("Requirement: %s", requirement))
		parts = append(parts, fmt.Sprintf("Candidate's Answers: %s", combined))
		parts = append(parts, "")
		parts = append(parts, "Based on the candidate's answers, does the candidate meet this requirement?")
		parts = append(parts, `First line must be exactly "YES" or "NO"`)
		parts = append(parts, "Then provide a brief explanation of why.")

		reply, err := e.generator.Generate(ctx, strings.Join(parts, "\n"))
		if err != nil {
			feedback = append(feedback, fmt.Sprintf("Requirement: %s - Evaluation failed", requirement))
			continue
		}

		lines := strings.Split(strings.TrimSpace(reply), "\n")
		verdict := strings.ToUpper(strings.TrimSpace(lines[0]))
		explanation := strings.TrimSpace(strings.Join(lines[1:], " "))

		if verdict == "YES" {
			feedback = append(feedback, fmt.Sprintf("Requirement: %s - Met - %s", requirement, explanation))
		} else {
			feedback = append(feedback, fmt.Sprintf("Requirement: %s - Not Met - %s", requirement, explanation))
		}
	}

	return feedback
}
