package db

import (
	"context"
	"fmt"
	"time"
)

type IngestRun struct {
	RunID       string     `json:"run_id"`
	SourceID    string     `json:"source_id"`
	Status      string     `json:"status"`
	ItemsFound  int        `json:"items_found"`
	ItemsSaved  int        `json:"items_saved"`
	Errors      int        `json:"errors"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (s *Store) StartIngestRun(ctx context.Context, sourceID string) (string, error) {
	var runID string
	err := s.pool.QueryRow(ctx,
		"INSERT INTO ingest_runs (source_id, status) VALUES ($1, 'running') RETURNING run_id::text",
		sourceID).Scan(&runID)
	if err != nil {
		return "", fmt.Errorf("create ingest run: %w", err)
	}
	return runID, nil
}

func (s *Store) FinishIngestRun(ctx context.Context, runID, status string, found, saved, errs int) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE ingest_runs SET
			status = $1,
			items_found = $2,
			items_saved = $3,
			errors = $4,
			completed_at = NOW()
		WHERE run_id = $5`,
		status, found, saved, errs, runID)
	if err != nil {
		return fmt.Errorf("finish ingest run: %w", err)
	}
	return nil
}

func (s *Store) RecentIngestRuns(ctx context.Context, limit int) ([]IngestRun, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.pool.Query(ctx, `
		SELECT run_id::text, source_id, status, items_found, items_saved, errors, started_at, completed_at
		FROM ingest_runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query ingest runs: %w", err)
	}
	defer rows.Close()

	var runs []IngestRun
	for rows.Next() {
		var r IngestRun
		if err := rows.Scan(&r.RunID, &r.SourceID, &r.Status, &r.ItemsFound, &r.ItemsSaved, &r.Errors, &r.StartedAt, &r.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan ingest run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
