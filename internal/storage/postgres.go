// internal/storage/postgres.go
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"screener/internal/common/errors"
	"screener/internal/common/logger"
)

// PostgresSink archives finished interviews into two tables. The
// question/answer/feedback triples are stored as a JSONB document so the
// schema does not depend on the configured question count.
type PostgresSink struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresSink(db *sql.DB, log logger.Logger) *PostgresSink {
	return &PostgresSink{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "postgres_sink"}),
	}
}

func (s *PostgresSink) Name() string { return "postgres" }

// EnsureSchema creates the archive tables when they do not exist yet.
func (s *PostgresSink) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS interview_results (
			id BIGSERIAL PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL,
			candidate_name TEXT NOT NULL,
			email TEXT NOT NULL,
			phone TEXT,
			position TEXT NOT NULL,
			experience_years INT NOT NULL,
			tech_stack TEXT NOT NULL,
			score INT NOT NULL,
			total_possible INT NOT NULL,
			responses JSONB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS assessment_reports (
			id BIGSERIAL PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL,
			candidate_name TEXT NOT NULL,
			position TEXT NOT NULL,
			experience_years INT NOT NULL,
			tech_stack TEXT NOT NULL,
			score INT NOT NULL,
			total_possible INT NOT NULL,
			report TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure archive schema: %w", err)
		}
	}
	return nil
}

type responseEntry struct {
	Question string `json:"question"`
	Type     string `json:"type"`
	Answer   string `json:"answer"`
	Verdict  string `json:"verdict"`
	Points   int    `json:"points"`
	Feedback string `json:"feedback"`
}

func (s *PostgresSink) AppendResponse(ctx context.Context, record ResponseRecord) error {
	entries := make([]responseEntry, 0, len(record.Questions))
	for i, q := range record.Questions {
		entries = append(entries, responseEntry{
			Question: q.Text,
			Type:     string(q.Type),
			Answer:   record.Answers[i],
			Verdict:  string(record.Feedback[i].Verdict),
			Points:   record.Feedback[i].Points,
			Feedback: record.Feedback[i].Explanation,
		})
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		return errors.NewPersistenceAppendFailedError(err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO interview_results
			(created_at, candidate_name, email, phone, position, experience_years, tech_stack, score, total_possible, responses)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		record.Timestamp,
		record.Profile.FullName,
		record.Profile.Email,
		record.Profile.Phone,
		record.Profile.DesiredPosition,
		record.Profile.YearsOfExperience,
		strings.Join(record.Profile.TechStack, ", "),
		record.Score,
		record.Total,
		payload,
	)
	if err != nil {
		return errors.NewPersistenceAppendFailedError(err)
	}
	return nil
}

func (s *PostgresSink) AppendReport(ctx context.Context, record ReportRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO assessment_reports
			(created_at, candidate_name, position, experience_years, tech_stack, score, total_possible, report)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		record.Timestamp,
		record.Profile.FullName,
		record.Profile.DesiredPosition,
		record.Profile.YearsOfExperience,
		strings.Join(record.Profile.TechStack, ", "),
		record.Score,
		record.Total,
		record.Report,
	)
	if err != nil {
		return errors.NewPersistenceAppendFailedError(err)
	}
	return nil
}

// PurgeOlderThan deletes archive rows past the retention horizon and
// returns the number of rows removed.
func (s *PostgresSink) PurgeOlderThan(ctx context.Context, retention time.Duration) (int64, error) {
	horizon := time.Now().UTC().Add(-retention)
	var purged int64
	for _, table := range []string{"interview_results", "assessment_reports"} {
		res, err := s.db.ExecContext(ctx,
			fmt.Sprintf("DELETE FROM %s WHERE created_at < $1", table), horizon)
		if err != nil {
			return purged, fmt.Errorf("purge %s: %w", table, err)
		}
		n, err := res.RowsAffected()
		if err == nil {
			purged += n
		}
	}
	if purged > 0 {
		s.logger.Info("retention purge removed rows", map[string]interface{}{
			"rows":    purged,
			"horizon": horizon.Format(time.RFC3339),
		})
	}
	return purged, nil
}
