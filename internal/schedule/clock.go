package schedule

import "time"

// Clock abstracts time so orchestrator tests can pin the instant a tick
// observes.
type Clock interface {
	Now() time.Time
}

// SystemClock is the Clock used outside of tests.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
