package sink

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/verte-zerg/realpick/internal/model"
)

// Named pairs a backend with the name used in logs and errors.
type Named struct {
	Name string
	Sink ResultSink
}

// Multi persists every record to all of its backends. Backends that already
// accepted a record are skipped when the same record is persisted again, so a
// retry after a partial failure only reaches the backends that failed.
type Multi struct {
	sinks  []Named
	done   map[string]map[string]bool
	logger *zap.Logger
}

// NewMulti returns a fan-out sink over sinks.
func NewMulti(logger *zap.Logger, sinks ...Named) *Multi {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Multi{
		sinks:  sinks,
		done:   map[string]map[string]bool{},
		logger: logger,
	}
}

// Names returns the backend names in persist order.
func (m *Multi) Names() []string {
	names := make([]string, len(m.sinks))
	for i, ns := range m.sinks {
		names[i] = ns.Name
	}
	return names
}

// Persist implements ResultSink.
func (m *Multi) Persist(ctx context.Context, rec model.SessionRecord) error {
	if len(m.sinks) == 0 {
		return fmt.Errorf("no result backends configured")
	}
	done := m.done[rec.ID]
	if done == nil {
		done = map[string]bool{}
		m.done[rec.ID] = done
	}
	var errs []error
	for _, ns := range m.sinks {
		if done[ns.Name] {
			continue
		}
		if err := ns.Sink.Persist(ctx, rec); err != nil {
			m.logger.Warn("failed to persist session",
				zap.String("backend", ns.Name),
				zap.String("session", rec.ID),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", ns.Name, err))
			continue
		}
		done[ns.Name] = true
		m.logger.Info("session persisted",
			zap.String("backend", ns.Name),
			zap.String("session", rec.ID),
			zap.Int("total_correct", rec.TotalCorrect),
			zap.Int("total_questions", rec.TotalQuestions))
	}
	return errors.Join(errs...)
}

// Close closes every backend that holds resources.
func (m *Multi) Close() error {
	var errs []error
	for _, ns := range m.sinks {
		if c, ok := ns.Sink.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", ns.Name, err))
			}
		}
	}
	return errors.Join(errs...)
}
