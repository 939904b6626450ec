// internal/interview/report/report.go
package report

import (
	"context"
	"fmt"
	"strings"

	"screener/internal/common/genai"
	"screener/internal/common/logger"
	"screener/internal/models"
)

const hireThreshold = 70.0

// Composer renders the final assessment report. The structured sections
// are fully deterministic; the narrative summary is the only part that
// touches the generation backend and the report survives without it.
type Composer struct {
	generator genai.Generator
	logger    logger.Logger
}

func NewComposer(generator genai.Generator, log logger.Logger) *Composer {
	return &Composer{
		generator: generator,
		logger:    log.WithFields(map[string]interface{}{"component": "report"}),
	}
}

// Recommendation returns the hiring decision for a percentage score.
func Recommendation(scorePct float64) string {
	if scorePct >= hireThreshold {
		return "HIRE"
	}
	return "NO HIRE"
}

// Rating maps a percentage score onto a 0-10 scale.
func Rating(scorePct float64) float64 {
	return scorePct / 10
}

// Compose builds the report text for a finished evaluation. The profile
// is masked before rendering so the report can be shared outside the
// hiring loop.
func (c *Composer) Compose(ctx context.Context, profile models.CandidateProfile, qs []models.Question, eval *models.Evaluation) string {
	scorePct := eval.ScorePercentage()
	masked := profile.Anonymized()

	var b strings.Builder
	b.WriteString("TECHNICAL ASSESSMENT REPORT\n")
	b.WriteString("===========================\n\n")

	b.WriteString("Candidate Profile\n")
	b.WriteString("-----------------\n")
	fmt.Fprintf(&b, "Name: %s\n", masked.FullName)
	fmt.Fprintf(&b, "Position: %s\n", masked.DesiredPosition)
	fmt.Fprintf(&b, "Experience: %d years\n", masked.YearsOfExperience)
	fmt.Fprintf(&b, "Tech Stack: %s\n\n", strings.Join(masked.TechStack, ", "))

	b.WriteString("Assessment Summary\n")
	b.WriteString("------------------\n")
	fmt.Fprintf(&b, "Score: %d/%d (%.1f%%)\n", eval.Score, eval.TotalPossible, scorePct)
	fmt.Fprintf(&b, "Technical Proficiency: %.1f/10\n", Rating(scorePct))
	fmt.Fprintf(&b, "Answer Quality: %.1f/10\n", Rating(scorePct))
	fmt.Fprintf(&b, "Role Fit: %.1f/10\n", Rating(scorePct))
	fmt.Fprintf(&b, "Recommendation: %s\n\n", Recommendation(scorePct))

	b.WriteString("Question Breakdown\n")
	b.WriteString("------------------\n")
	for _, fb := range eval.Feedback {
		q := qs[fb.Index]
		fmt.Fprintf(&b, "Q%d (%s, %d pts): %s\n", fb.Index+1, q.Type, q.Points(), q.Text)
		fmt.Fprintf(&b, "  Verdict: %s (%d/%d)\n", fb.Verdict, fb.Points, q.Points())
		fmt.Fprintf(&b, "  Feedback: %s\n", fb.Explanation)
	}
	b.WriteString("\n")

	if narrative := c.narrative(ctx, masked, scorePct, eval); narrative != "" {
		b.WriteString("Interviewer Notes\n")
		b.WriteString("-----------------\n")
		b.WriteString(narrative)
		b.WriteString("\n")
	}

	return b.String()
}

// narrative asks the backend for a short prose summary. A backend failure
// is logged and the section is dropped.
func (c *Composer) narrative(ctx context.Context, profile models.CandidateProfile, scorePct float64, eval *models.Evaluation) string {
	if c.generator == nil {
		return ""
	}

	var parts []string
	parts = append(parts, "You are a senior technical interviewer writing closing notes for an assessment report.")
	parts = append(parts, "")
	parts = append(parts, fmt.Sprintf("Position: %s", profile.DesiredPosition))
	parts = append(parts, fmt.Sprintf("Experience: %d years", profile.YearsOfExperience))
	parts = append(parts, fmt.Sprintf("Tech Stack: %s", strings.Join(profile.TechStack, ", ")))
	parts = append(parts, fmt.Sprintf("Final Score: %.1f%%", scorePct))
	for _, fb := range eval.Feedback {
		parts = append(parts, fmt.Sprintf("Q%d: %s - %s", fb.Index+1, fb.Verdict, fb.Explanation))
	}
	parts = append(parts, "")
	parts = append(parts, "Write a concise paragraph on strengths, weaknesses, and suggested next steps. Do not restate the score.")

	notes, err := c.generator.Generate(ctx, strings.Join(parts, "\n"))
	if err != nil {
		c.logger.Warn("narrative generation failed, continuing without notes", map[string]interface{}{
			"error": err.Error(),
		})
		return ""
	}
	return strings.TrimSpace(notes)
}
