package schedule

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by store lookups for unknown schedule IDs.
var ErrNotFound = errors.New("schedule not found")

// Store persists schedules. Implementations must return copies from reads so
// callers cannot mutate stored state, and must reject updates that violate
// the status transition table.
type Store interface {
	Create(ctx context.Context, s *Schedule) error
	Get(ctx context.Context, id string) (*Schedule, error)
	List(ctx context.Context, owner string) ([]*Schedule, error)
	Update(ctx context.Context, s *Schedule) error
	Delete(ctx context.Context, id string) error

	// Due returns every ACTIVE schedule with NextRunAt <= now.
	Due(ctx context.Context, now time.Time) ([]*Schedule, error)
}
