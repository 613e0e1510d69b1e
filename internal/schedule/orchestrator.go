package schedule

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/vslobodin/jobscout/internal/jobsource"
	"github.com/vslobodin/jobscout/internal/logger"
	"github.com/vslobodin/jobscout/internal/matching"
	"github.com/vslobodin/jobscout/internal/profile"
)

// ProfileProvider resolves the stored resume profile for a schedule owner.
type ProfileProvider interface {
	ResumeFor(ctx context.Context, owner string) (*profile.ResumeProfile, error)
}

// Matcher ranks postings against a resume profile.
type Matcher interface {
	Rank(ctx context.Context, resume *profile.ResumeProfile, postings []*profile.JobPosting) matching.Results
}

// Notifier delivers a batch of qualifying matches to the schedule owner.
type Notifier interface {
	Notify(ctx context.Context, owner string, results matching.Results) error
}

// SeenSet remembers which job IDs an owner was already notified about.
type SeenSet interface {
	FilterNew(ctx context.Context, owner string, ids []string) ([]string, error)
	MarkSeen(ctx context.Context, owner string, ids []string) error
}

// Orchestrator runs due schedules. A tick fans out over a bounded worker
// pool; every run is isolated, so one failing schedule never blocks or
// fails its siblings. Ticks never overlap: a tick that fires while the
// previous one is still running is skipped.
type Orchestrator struct {
	store    Store
	source   jobsource.Source
	profiles ProfileProvider
	matcher  Matcher
	notifier Notifier
	seen     SeenSet // optional, nil disables dedup
	clock    Clock
	logger   *zap.Logger
	ticking  atomic.Bool

	// Concurrency bounds how many schedules a tick runs in parallel.
	Concurrency int
	// RunTimeout is the watchdog deadline for a single schedule run.
	RunTimeout time.Duration
}

func NewOrchestrator(store Store, source jobsource.Source, profiles ProfileProvider, matcher Matcher, notifier Notifier, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		store:       store,
		source:      source,
		profiles:    profiles,
		matcher:     matcher,
		notifier:    notifier,
		clock:       SystemClock{},
		logger:      logger,
		Concurrency: 4,
		RunTimeout:  5 * time.Minute,
	}
}

// WithSeenSet enables cross-run dedup of notified job IDs.
func (o *Orchestrator) WithSeenSet(seen SeenSet) *Orchestrator {
	o.seen = seen
	return o
}

// WithClock replaces the wall clock, for tests.
func (o *Orchestrator) WithClock(clock Clock) *Orchestrator {
	o.clock = clock
	return o
}

// Tick runs every schedule that is due at the current instant. A tick that
// arrives while a previous one is still in flight returns immediately, so
// two ticks can never claim the same schedule.
func (o *Orchestrator) Tick(ctx context.Context) error {
	if !o.ticking.CompareAndSwap(false, true) {
		o.logger.Warn("previous tick still running, skipping")
		return nil
	}
	defer o.ticking.Store(false)

	now := o.clock.Now()

	due, err := o.store.Due(ctx, now)
	if err != nil {
		return fmt.Errorf("loading due schedules: %w", err)
	}
	if len(due) == 0 {
		o.logger.Debug("no schedules due", zap.Time("now", now))
		return nil
	}

	o.logger.Info("tick started", zap.Int("due", len(due)), zap.Time("now", now))

	sem := make(chan struct{}, o.Concurrency)
	var wg sync.WaitGroup
	for _, s := range due {
		wg.Add(1)
		sem <- struct{}{}
		go func(s *Schedule) {
			defer wg.Done()
			defer func() { <-sem }()
			o.runOne(ctx, s, now)
		}(s)
	}
	wg.Wait()

	o.logger.Info("tick finished", zap.Int("due", len(due)))
	return nil
}

// runOne executes a single schedule end to end and records the terminal
// status. Errors are absorbed here: they mark the schedule FAILED and are
// logged, nothing propagates to the tick.
func (o *Orchestrator) runOne(ctx context.Context, s *Schedule, now time.Time) {
	log := logger.WithRunFields(o.logger, s.Owner, o.source.Name()).With(zap.String("schedule", s.ID))

	s.Status = StatusRunning
	if err := o.store.Update(ctx, s); err != nil {
		log.Error("marking schedule running", zap.Error(err))
		return
	}

	runErr := o.execute(ctx, s, log)

	// The terminal status is written with a fresh context so a cancelled
	// tick cannot leave the schedule stuck in RUNNING.
	finalCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.LastRunAt = &now
	if runErr != nil {
		s.Status = StatusFailed
		s.LastError = runErr.Error()
		log.Error("schedule run failed", zap.Error(runErr))
	} else {
		s.Status = StatusActive
		s.LastError = ""
		// Anchor to the previous NextRunAt, not to now, so the firing
		// time never drifts with run latency. A schedule overdue by
		// several intervals steps forward on the same grid until the
		// next run is in the future again.
		s.NextRunAt = s.NextRunAt.Add(s.Cadence.Interval())
		for !s.NextRunAt.After(now) {
			s.NextRunAt = s.NextRunAt.Add(s.Cadence.Interval())
		}
		log.Info("schedule run finished", zap.Time("next_run_at", s.NextRunAt))
	}

	if err := o.store.Update(finalCtx, s); err != nil {
		log.Error("recording schedule result", zap.Error(err))
	}
}

// execute runs the search/match/notify pipeline under the watchdog deadline.
func (o *Orchestrator) execute(ctx context.Context, s *Schedule, log *zap.Logger) error {
	runCtx, cancel := context.WithTimeout(ctx, o.RunTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- o.pipeline(runCtx, s, log) }()

	select {
	case err := <-done:
		return err
	case <-runCtx.Done():
		return fmt.Errorf("schedule run exceeded %s: %w", o.RunTimeout, runCtx.Err())
	}
}

func (o *Orchestrator) pipeline(ctx context.Context, s *Schedule, log *zap.Logger) error {
	resume, err := o.profiles.ResumeFor(ctx, s.Owner)
	if err != nil {
		return fmt.Errorf("loading resume profile: %w", err)
	}

	raw, err := o.source.Search(ctx, s.Criteria)
	if err != nil {
		return fmt.Errorf("searching %s: %w", o.source.Name(), err)
	}

	postings := make([]*profile.JobPosting, 0, len(raw))
	for _, r := range raw {
		p, err := profile.NormalizePosting(r)
		if err != nil {
			log.Warn("skipping malformed posting", zap.Error(err))
			continue
		}
		postings = append(postings, p)
	}

	results := o.matcher.Rank(ctx, resume, postings)

	qualified := results.AboveThreshold(s.ScoreThreshold)
	log.Info("threshold step",
		zap.Int("initial", results.Len()),
		zap.Int("dropped", results.Len()-qualified.Len()),
		zap.Int("left", qualified.Len()),
	)

	if o.seen != nil && qualified.Len() > 0 {
		fresh, err := o.dedup(ctx, s.Owner, qualified)
		if err != nil {
			return err
		}
		log.Info("dedup step",
			zap.Int("initial", qualified.Len()),
			zap.Int("dropped", qualified.Len()-fresh.Len()),
			zap.Int("left", fresh.Len()),
		)
		qualified = fresh
	}

	if qualified.Len() == 0 {
		log.Info("no new matches to deliver")
		return nil
	}

	if err := o.notifier.Notify(ctx, s.Owner, qualified); err != nil {
		return fmt.Errorf("delivering %d matches: %w", qualified.Len(), err)
	}

	if o.seen != nil {
		if err := o.seen.MarkSeen(ctx, s.Owner, qualified.JobIDs()); err != nil {
			// Delivery already happened; the run still counts as successful.
			log.Warn("marking jobs seen", zap.Error(err))
		}
	}

	return nil
}

func (o *Orchestrator) dedup(ctx context.Context, owner string, results matching.Results) (matching.Results, error) {
	freshIDs, err := o.seen.FilterNew(ctx, owner, results.JobIDs())
	if err != nil {
		return nil, fmt.Errorf("filtering seen jobs: %w", err)
	}

	keep := make(map[string]bool, len(freshIDs))
	for _, id := range freshIDs {
		keep[id] = true
	}

	fresh := make(matching.Results, 0, len(freshIDs))
	for _, r := range results {
		if keep[r.JobID] {
			fresh = append(fresh, r)
		}
	}
	return fresh, nil
}

// Pause suspends an ACTIVE schedule.
func (o *Orchestrator) Pause(ctx context.Context, id string) error {
	return o.transition(ctx, id, StatusPaused, nil)
}

// Resume reactivates a PAUSED schedule.
func (o *Orchestrator) Resume(ctx context.Context, id string) error {
	return o.transition(ctx, id, StatusActive, nil)
}

// Retry reactivates a FAILED schedule and makes it due immediately.
func (o *Orchestrator) Retry(ctx context.Context, id string) error {
	return o.transition(ctx, id, StatusActive, func(s *Schedule) {
		s.LastError = ""
		s.NextRunAt = o.clock.Now()
	})
}

func (o *Orchestrator) transition(ctx context.Context, id string, to Status, mutate func(*Schedule)) error {
	s, err := o.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if !IsTransitionAllowed(s.Status, to) {
		return fmt.Errorf("schedule %s is %s, cannot move to %s", id, s.Status, to)
	}

	s.Status = to
	if mutate != nil {
		mutate(s)
	}
	return o.store.Update(ctx, s)
}
