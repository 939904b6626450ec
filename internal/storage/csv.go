// internal/storage/csv.go
package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"screener/internal/common/errors"
	"screener/internal/common/logger"
)

// CSVSink appends finished interviews to two flat files, one row per
// candidate. Headers are written when a file is first created; existing
// files are opened in append mode so the archive accumulates across
// restarts. The header's question columns follow the first row written,
// so all rows in one file must carry the same question count.
type CSVSink struct {
	dir           string
	responsesFile string
	reportsFile   string
	logger        logger.Logger

	mu sync.Mutex
}

func NewCSVSink(dir, responsesFile, reportsFile string, log logger.Logger) (*CSVSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}
	return &CSVSink{
		dir:           dir,
		responsesFile: responsesFile,
		reportsFile:   reportsFile,
		logger:        log.WithFields(map[string]interface{}{"component": "csv_sink"}),
	}, nil
}

func (s *CSVSink) Name() string { return "csv" }

func (s *CSVSink) AppendResponse(_ context.Context, record ResponseRecord) error {
	header := []string{"Timestamp", "Candidate_Name", "Email", "Phone", "Position", "Experience", "Tech_Stack", "Score"}
	for i := range record.Questions {
		header = append(header,
			fmt.Sprintf("Question_%d", i+1),
			fmt.Sprintf("Answer_%d", i+1),
			fmt.Sprintf("Feedback_%d", i+1))
	}

	row := []string{
		record.Timestamp.Format(time.RFC3339),
		record.Profile.FullName,
		record.Profile.Email,
		record.Profile.Phone,
		record.Profile.DesiredPosition,
		fmt.Sprintf("%d", record.Profile.YearsOfExperience),
		strings.Join(record.Profile.TechStack, ", "),
		fmt.Sprintf("%d/%d", record.Score, record.Total),
	}
	for i, q := range record.Questions {
		row = append(row, q.Text, record.Answers[i], record.Feedback[i].Explanation)
	}

	return s.append(s.responsesFile, header, row)
}

func (s *CSVSink) AppendReport(_ context.Context, record ReportRecord) error {
	header := []string{"Timestamp", "Candidate_Name", "Position", "Experience", "Tech_Stack", "Score", "Technical_Report"}
	row := []string{
		record.Timestamp.Format(time.RFC3339),
		record.Profile.FullName,
		record.Profile.DesiredPosition,
		fmt.Sprintf("%d", record.Profile.YearsOfExperience),
		strings.Join(record.Profile.TechStack, ", "),
		fmt.Sprintf("%d/%d", record.Score, record.Total),
		record.Report,
	}
	return s.append(s.reportsFile, header, row)
}

func (s *CSVSink) append(name string, header, row []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, name)
	info, statErr := os.Stat(path)
	writeHeader := statErr != nil || info.Size() == 0

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.NewPersistenceAppendFailedError(err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(header); err != nil {
			return errors.NewPersistenceAppendFailedError(err)
		}
	}
	if err := w.Write(row); err != nil {
		return errors.NewPersistenceAppendFailedError(err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.NewPersistenceAppendFailedError(err)
	}

	s.logger.Debug("archive row appended", map[string]interface{}{"file": name})
	return nil
}
