// internal/storage/sink.go
package storage

import (
	"context"

	"screener/internal/common/logger"
	"screener/internal/common/metrics"
)

// Sink is one archive destination for finished interviews.
type Sink interface {
	Name() string
	AppendResponse(ctx context.Context, record ResponseRecord) error
	AppendReport(ctx context.Context, record ReportRecord) error
}

// MultiSink fans one append out to every configured destination. A failing
// destination is logged and counted but does not block the others; the
// first error is returned after all sinks have been attempted.
type MultiSink struct {
	sinks  []Sink
	logger logger.Logger
}

func NewMultiSink(log logger.Logger, sinks ...Sink) *MultiSink {
	return &MultiSink{
		sinks:  sinks,
		logger: log.WithFields(map[string]interface{}{"component": "storage"}),
	}
}

func (m *MultiSink) Name() string { return "multi" }

func (m *MultiSink) AppendResponse(ctx context.Context, record ResponseRecord) error {
	var firstErr error
	for _, sink := range m.sinks {
		err := sink.AppendResponse(ctx, record)
		m.record(sink, "response", err)
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *MultiSink) AppendReport(ctx context.Context, record ReportRecord) error {
	var firstErr error
	for _, sink := range m.sinks {
		err := sink.AppendReport(ctx, record)
		m.record(sink, "report", err)
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *MultiSink) record(sink Sink, kind string, err error) {
	status := "success"
	if err != nil {
		status = "error"
		m.logger.Error("archive append failed", map[string]interface{}{
			"sink":  sink.Name(),
			"kind":  kind,
			"error": err.Error(),
		})
	}
	metrics.PersistenceAppends.WithLabelValues(sink.Name(), status).Inc()
}
