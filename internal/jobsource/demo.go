package jobsource

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/vslobodin/jobscout/internal/profile"
)

//go:embed demo_jobs.json
var demoJobsJSON []byte

// DemoSource serves a fixed, embedded set of postings so the full pipeline
// works without any external API. Results are deterministic: file order,
// filtered by a free-text query.
type DemoSource struct {
	postings []*profile.RawPosting
}

type demoCriteria struct {
	What  string `mapstructure:"what"`
	Limit int    `mapstructure:"limit"`
}

func NewDemo() (*DemoSource, error) {
	var postings []*profile.RawPosting
	if err := json.Unmarshal(demoJobsJSON, &postings); err != nil {
		return nil, fmt.Errorf("parse embedded demo jobs: %w", err)
	}
	return &DemoSource{postings: postings}, nil
}

func (s *DemoSource) Name() string { return "demo" }

// Search filters the embedded postings by the "what" criteria key, matching
// against title, description and required skills. No match on any posting
// returns the full set, mirroring a broad search.
func (s *DemoSource) Search(_ context.Context, criteria Criteria) ([]*profile.RawPosting, error) {
	var params demoCriteria
	if err := mapstructure.Decode(map[string]any(criteria), &params); err != nil {
		return nil, fmt.Errorf("decode search criteria: %w", err)
	}

	query := strings.ToLower(strings.TrimSpace(params.What))

	filtered := make([]*profile.RawPosting, 0, len(s.postings))
	for _, posting := range s.postings {
		if query == "" || demoMatches(posting, query) {
			filtered = append(filtered, posting)
		}
	}

	if len(filtered) == 0 {
		filtered = append(filtered, s.postings...)
	}

	if params.Limit > 0 && len(filtered) > params.Limit {
		filtered = filtered[:params.Limit]
	}

	return filtered, nil
}

func demoMatches(posting *profile.RawPosting, query string) bool {
	if strings.Contains(strings.ToLower(posting.Title), query) {
		return true
	}
	if strings.Contains(strings.ToLower(posting.Description), query) {
		return true
	}
	for _, skill := range posting.RequiredSkills {
		if strings.Contains(strings.ToLower(skill), query) {
			return true
		}
	}
	return false
}
