// internal/storage/records.go
package storage

import (
	"time"

	"screener/internal/models"
)

// ResponseRecord is one archived interview run: the masked profile, the
// question/answer/feedback triples, and the final score.
type ResponseRecord struct {
	Timestamp time.Time
	Profile   models.CandidateProfile
	Questions []models.Question
	Answers   []string
	Feedback  []models.QuestionFeedback
	Score     int
	Total     int
}

// ReportRecord is one archived assessment report.
type ReportRecord struct {
	Timestamp time.Time
	Profile   models.CandidateProfile
	Score     int
	Total     int
	Report    string
}

// NewResponseRecord assembles an archive row from a finished session.
// The profile is masked before it leaves the session.
func NewResponseRecord(session *models.Session) ResponseRecord {
	return ResponseRecord{
		Timestamp: time.Now().UTC(),
		Profile:   session.Profile.Anonymized(),
		Questions: session.Questions,
		Answers:   session.Answers,
		Feedback:  session.Evaluation.Feedback,
		Score:     session.Evaluation.Score,
		Total:     session.Evaluation.TotalPossible,
	}
}

// NewReportRecord assembles a report archive row from a finished session.
func NewReportRecord(session *models.Session) ReportRecord {
	return ReportRecord{
		Timestamp: time.Now().UTC(),
		Profile:   session.Profile.Anonymized(),
		Score:     session.Evaluation.Score,
		Total:     session.Evaluation.TotalPossible,
		Report:    session.Report,
	}
}
