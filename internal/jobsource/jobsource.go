// Package jobsource fetches raw job postings from external providers.
// The matching core treats every provider as an opaque collaborator behind
// the Source interface.
package jobsource

import (
	"context"

	"github.com/vslobodin/jobscout/internal/profile"
)

// Criteria is an opaque search specification. The engine passes it through
// untouched; each provider decodes the keys it understands.
type Criteria map[string]any

// Source returns an ordered sequence of raw posting records for the given
// criteria. An empty result is valid; implementations must be timeout-bound
// and never hang silently.
type Source interface {
	Name() string
	Search(ctx context.Context, criteria Criteria) ([]*profile.RawPosting, error)
}
