package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vslobodin/jobscout/internal/jobsource"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS schedules (
	id              TEXT PRIMARY KEY,
	owner_id        TEXT NOT NULL,
	cadence         TEXT NOT NULL,
	criteria        JSONB NOT NULL DEFAULT '{}',
	score_threshold DOUBLE PRECISION NOT NULL DEFAULT 0,
	last_run_at     TIMESTAMPTZ,
	next_run_at     TIMESTAMPTZ NOT NULL,
	status          TEXT NOT NULL,
	last_error      TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS schedules_due_idx ON schedules (next_run_at) WHERE status = 'ACTIVE';
`

// PostgresStore persists schedules in Postgres via pgxpool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresPool creates and verifies a pgxpool connection pool.
func NewPostgresPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	return pool, nil
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the schedules table when it does not exist yet.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("creating schedules schema: %w", err)
	}
	return nil
}

func (p *PostgresStore) Create(ctx context.Context, s *Schedule) error {
	if err := s.Validate(); err != nil {
		return err
	}

	criteria, err := json.Marshal(s.Criteria)
	if err != nil {
		return fmt.Errorf("encoding criteria: %w", err)
	}

	_, err = p.pool.Exec(ctx, `
		INSERT INTO schedules (id, owner_id, cadence, criteria, score_threshold, last_run_at, next_run_at, status, last_error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID, s.Owner, string(s.Cadence), criteria, s.ScoreThreshold, s.LastRunAt, s.NextRunAt, string(s.Status), s.LastError,
	)
	if err != nil {
		return fmt.Errorf("inserting schedule %s: %w", s.ID, err)
	}
	return nil
}

func (p *PostgresStore) Get(ctx context.Context, id string) (*Schedule, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT id, owner_id, cadence, criteria, score_threshold, last_run_at, next_run_at, status, last_error
		FROM schedules WHERE id = $1`, id)

	s, err := scanSchedule(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading schedule %s: %w", id, err)
	}
	return s, nil
}

func (p *PostgresStore) List(ctx context.Context, owner string) ([]*Schedule, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, owner_id, cadence, criteria, score_threshold, last_run_at, next_run_at, status, last_error
		FROM schedules WHERE ($1 = '' OR owner_id = $1) ORDER BY id`, owner)
	if err != nil {
		return nil, fmt.Errorf("listing schedules: %w", err)
	}
	defer rows.Close()

	return collectSchedules(rows)
}

func (p *PostgresStore) Update(ctx context.Context, s *Schedule) error {
	current, err := p.Get(ctx, s.ID)
	if err != nil {
		return err
	}
	if current.Status != s.Status && !IsTransitionAllowed(current.Status, s.Status) {
		return fmt.Errorf("invalid status transition %s -> %s for schedule %s", current.Status, s.Status, s.ID)
	}

	criteria, err := json.Marshal(s.Criteria)
	if err != nil {
		return fmt.Errorf("encoding criteria: %w", err)
	}

	tag, err := p.pool.Exec(ctx, `
		UPDATE schedules
		SET cadence = $2, criteria = $3, score_threshold = $4, last_run_at = $5, next_run_at = $6, status = $7, last_error = $8
		WHERE id = $1`,
		s.ID, string(s.Cadence), criteria, s.ScoreThreshold, s.LastRunAt, s.NextRunAt, string(s.Status), s.LastError,
	)
	if err != nil {
		return fmt.Errorf("updating schedule %s: %w", s.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting schedule %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresStore) Due(ctx context.Context, now time.Time) ([]*Schedule, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, owner_id, cadence, criteria, score_threshold, last_run_at, next_run_at, status, last_error
		FROM schedules WHERE status = 'ACTIVE' AND next_run_at <= $1 ORDER BY id`, now)
	if err != nil {
		return nil, fmt.Errorf("loading due schedules: %w", err)
	}
	defer rows.Close()

	return collectSchedules(rows)
}

func collectSchedules(rows pgx.Rows) ([]*Schedule, error) {
	var out []*Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanSchedule(row pgx.Row) (*Schedule, error) {
	var (
		s        Schedule
		cadence  string
		status   string
		criteria []byte
	)
	err := row.Scan(&s.ID, &s.Owner, &cadence, &criteria, &s.ScoreThreshold, &s.LastRunAt, &s.NextRunAt, &status, &s.LastError)
	if err != nil {
		return nil, err
	}

	s.Cadence = Cadence(cadence)
	if s.Status, err = ParseStatus(status); err != nil {
		return nil, err
	}
	if len(criteria) > 0 {
		if err := json.Unmarshal(criteria, &s.Criteria); err != nil {
			return nil, fmt.Errorf("decoding criteria for schedule %s: %w", s.ID, err)
		}
	}
	if s.Criteria == nil {
		s.Criteria = jobsource.Criteria{}
	}
	return &s, nil
}
