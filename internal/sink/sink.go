// Package sink persists completed sessions to one or more backends.
package sink

import (
	"context"

	"github.com/verte-zerg/realpick/internal/model"
)

// ResultSink appends one completed session record. Implementations must not
// partially apply a record they report as failed where the backend allows it.
type ResultSink interface {
	Persist(ctx context.Context, rec model.SessionRecord) error
}

// Func adapts a function to ResultSink.
type Func func(ctx context.Context, rec model.SessionRecord) error

// Persist implements ResultSink.
func (f Func) Persist(ctx context.Context, rec model.SessionRecord) error {
	return f(ctx, rec)
}
