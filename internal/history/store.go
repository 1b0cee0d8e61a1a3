package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/toolprobe/internal/db"
)

// ErrNotFound is returned when a run ID does not exist.
var ErrNotFound = errors.New("run not found")

// timeLayout sorts lexically in UTC.
const timeLayout = "2006-01-02T15:04:05.000000Z"

// Store provides persistence for smoke runs.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Record inserts a run. If run.ID is empty a UUID is generated and written
// back; a zero StartedAt is set to now.
func (s *Store) Record(ctx context.Context, run *Run) error {
	if !run.Source.Valid() {
		return fmt.Errorf("recording run: unknown source %q", run.Source)
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	tools, err := json.Marshal(run.Tools)
	if err != nil {
		return fmt.Errorf("marshalling tools: %w", err)
	}
	content, err := json.Marshal(run.Content)
	if err != nil {
		return fmt.Errorf("marshalling content: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (
			id, started_at, duration_ms, source, provider, model, response_model,
			prompt, tools, status, error_message, content, finish_reason,
			input_tokens, output_tokens, cost_usd
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(timeLayout),
		run.Duration.Milliseconds(),
		string(run.Source),
		run.Provider,
		run.Model,
		run.ResponseModel,
		run.Prompt,
		string(tools),
		string(run.Status),
		run.Error,
		string(content),
		run.FinishReason,
		run.InputTokens,
		run.OutputTokens,
		run.CostUSD,
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	return nil
}

const selectColumns = `SELECT id, started_at, duration_ms, source, provider, model, response_model,
	prompt, tools, status, error_message, content, finish_reason,
	input_tokens, output_tokens, cost_usd FROM runs`

// Get retrieves a single run.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting run %s: %w", id, err)
	}
	return run, nil
}

// Filter controls which runs are returned by List.
type Filter struct {
	Status   Status
	Provider string
	Since    *time.Time
	Limit    int
	Offset   int
}

// List returns runs matching the filter, newest first.
func (s *Store) List(ctx context.Context, filter Filter) ([]Run, error) {
	var (
		clauses []string
		args    []any
	)

	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Provider != "" {
		clauses = append(clauses, "provider = ?")
		args = append(args, filter.Provider)
	}
	if filter.Since != nil {
		clauses = append(clauses, "started_at >= ?")
		args = append(args, filter.Since.UTC().Format(timeLayout))
	}

	query := selectColumns
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY started_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		if filter.Limit <= 0 {
			query += " LIMIT -1"
		}
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Latest returns the most recent run.
func (s *Store) Latest(ctx context.Context) (*Run, error) {
	runs, err := s.List(ctx, Filter{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrNotFound
	}
	return &runs[0], nil
}

// Summarize aggregates outcome counts and spend over all runs.
func (s *Store) Summarize(ctx context.Context) (*Summary, error) {
	var sum Summary
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'ok' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'empty' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'error' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(cost_usd), 0)
		FROM runs`).Scan(&sum.Total, &sum.OK, &sum.Empty, &sum.Errors, &sum.TotalCostUSD)
	if err != nil {
		return nil, fmt.Errorf("summarizing runs: %w", err)
	}
	return &sum, nil
}

// DeleteBefore removes all runs older than the given time.
// Returns the number of deleted rows.
func (s *Store) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM runs WHERE started_at < ?",
		before.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting old runs: %w", err)
	}
	return res.RowsAffected()
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		r                      Run
		startedAt              string
		durationMS             int64
		source, status         string
		toolsJSON, contentJSON string
	)

	err := sc.Scan(
		&r.ID, &startedAt, &durationMS, &source, &r.Provider, &r.Model, &r.ResponseModel,
		&r.Prompt, &toolsJSON, &status, &r.Error, &contentJSON, &r.FinishReason,
		&r.InputTokens, &r.OutputTokens, &r.CostUSD,
	)
	if err != nil {
		return nil, err
	}

	r.StartedAt, err = time.Parse(timeLayout, startedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing started_at %q: %w", startedAt, err)
	}
	r.Duration = time.Duration(durationMS) * time.Millisecond
	r.Source = Source(source)
	r.Status = Status(status)

	if err := json.Unmarshal([]byte(toolsJSON), &r.Tools); err != nil {
		return nil, fmt.Errorf("unmarshalling tools: %w", err)
	}
	if err := json.Unmarshal([]byte(contentJSON), &r.Content); err != nil {
		return nil, fmt.Errorf("unmarshalling content: %w", err)
	}
	return &r, nil
}
