// Package schedule implements recurring-search configurations: persistence,
// the per-schedule state machine, and the orchestrator that runs due
// schedules with per-schedule failure isolation.
//
// Valid status graph:
//
//	ACTIVE ──(due)──► RUNNING ──► ACTIVE
//	  │ ▲                 │
//	  ▼ │                 ▼
//	PAUSED             FAILED ──(retry)──► ACTIVE
package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/vslobodin/jobscout/internal/jobsource"
)

// Cadence is how often a schedule fires.
type Cadence string

const (
	CadenceDaily  Cadence = "DAILY"
	CadenceWeekly Cadence = "WEEKLY"
)

// ParseCadence converts a raw string to a Cadence.
func ParseCadence(s string) (Cadence, error) {
	c := Cadence(strings.ToUpper(strings.TrimSpace(s)))
	switch c {
	case CadenceDaily, CadenceWeekly:
		return c, nil
	}
	return "", fmt.Errorf("unknown cadence %q", s)
}

// Interval returns the rescheduling interval for the cadence.
func (c Cadence) Interval() time.Duration {
	switch c {
	case CadenceWeekly:
		return 7 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// Status is the persisted schedule state.
type Status string

const (
	StatusActive  Status = "ACTIVE"
	StatusRunning Status = "RUNNING"
	StatusPaused  Status = "PAUSED"
	StatusFailed  Status = "FAILED"
)

// ParseStatus converts a raw string to a Status, rejecting unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusActive, StatusRunning, StatusPaused, StatusFailed:
		return st, nil
	}
	return "", fmt.Errorf("unknown schedule status %q", s)
}

// validTransitions lists every allowed (from → to) pair. RUNNING is entered
// only by the orchestrator; PAUSED and the FAILED→ACTIVE retry are
// user-triggered.
var validTransitions = map[Status][]Status{
	StatusActive:  {StatusRunning, StatusPaused},
	StatusRunning: {StatusActive, StatusFailed},
	StatusPaused:  {StatusActive},
	StatusFailed:  {StatusActive},
}

// IsTransitionAllowed returns true when moving from → to is permitted.
func IsTransitionAllowed(from, to Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Schedule is a persisted recurring-search configuration. Timestamps and
// status are mutated only by the orchestrator or explicit user transitions.
type Schedule struct {
	ID             string
	Owner          string
	Cadence        Cadence
	Criteria       jobsource.Criteria
	ScoreThreshold float64
	LastRunAt      *time.Time
	NextRunAt      time.Time
	Status         Status
	LastError      string
}

// Due reports whether the schedule should fire at the given instant.
func (s *Schedule) Due(now time.Time) bool {
	return s.Status == StatusActive && !s.NextRunAt.After(now)
}

// Validate checks the fields a user can set at creation time.
func (s *Schedule) Validate() error {
	if strings.TrimSpace(s.Owner) == "" {
		return fmt.Errorf("schedule owner is required")
	}
	if _, err := ParseCadence(string(s.Cadence)); err != nil {
		return err
	}
	if s.ScoreThreshold < 0 || s.ScoreThreshold > 1 {
		return fmt.Errorf("score threshold %v out of [0,1]", s.ScoreThreshold)
	}
	return nil
}

// Clone returns a copy so store reads never alias the caller's value.
func (s *Schedule) Clone() *Schedule {
	clone := *s
	if s.LastRunAt != nil {
		at := *s.LastRunAt
		clone.LastRunAt = &at
	}
	if s.Criteria != nil {
		clone.Criteria = make(jobsource.Criteria, len(s.Criteria))
		for k, v := range s.Criteria {
			clone.Criteria[k] = v
		}
	}
	return &clone
}
