// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive catalogs completed ordination runs in a SQLite database.
// The archive is a CLI convenience for comparing runs over time; the
// ordination core never reads from it.
// See docs/ARCHITECTURE § Run Archive.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/ordination-engine/pkg/types"
)

const dbFile = "ordination.db"

// Store manages the run archive SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// NewStore opens or creates the archive database at
// cfg.ArchiveDir/ordination.db, creating the schema if needed.
func NewStore(cfg types.ArchiveConfig) (*Store, error) {
	dir := cfg.ArchiveDir
	if dir == "" {
		dir = "archive"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening archive database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 50
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating archive schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created TEXT NOT NULL,
			input TEXT NOT NULL,
			method TEXT NOT NULL,
			transform TEXT NOT NULL,
			distance TEXT,
			axes INTEGER NOT NULL,
			stress REAL,
			converged INTEGER,
			restarts INTEGER,
			proportions TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS scores (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			kind TEXT NOT NULL,
			entity TEXT NOT NULL,
			axis INTEGER NOT NULL,
			value REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_run ON scores(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_kind ON scores(run_id, kind)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RunSummary is one archived run's metadata.
type RunSummary struct {
	ID        int64           `json:"id" yaml:"id"`
	Created   time.Time       `json:"created" yaml:"created"`
	Input     string          `json:"input" yaml:"input"`
	Method    types.Method    `json:"method" yaml:"method"`
	Transform types.Transform `json:"transform" yaml:"transform"`
	Distance  types.Distance  `json:"distance,omitempty" yaml:"distance,omitempty"`
	Axes      int             `json:"axes" yaml:"axes"`
	Stress    float64         `json:"stress" yaml:"stress"`
	Converged bool            `json:"converged" yaml:"converged"`
}

// SaveRun inserts a completed run and all its scores, returning the new
// run's archive id.
func (s *Store) SaveRun(ctx context.Context, input string, res *types.Result) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	proportionsJSON, _ := json.Marshal(res.Proportions)
	created := time.Now().UTC().Format(time.RFC3339)

	result, err := tx.ExecContext(ctx,
		`INSERT INTO runs (created, input, method, transform, distance, axes, stress, converged, restarts, proportions)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		created, input, string(res.Method), string(res.Transform), string(res.Distance),
		res.Axes, res.Diagnostics.Stress, res.Diagnostics.Converged, res.Diagnostics.Restarts,
		string(proportionsJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO scores (run_id, kind, entity, axis, value) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing score insert: %w", err)
	}
	defer stmt.Close()

	insert := func(kind types.ScoreKind, ids []string, coords [][]float64) error {
		for i, id := range ids {
			for axis, value := range coords[i] {
				if _, err := stmt.ExecContext(ctx, runID, string(kind), id, axis+1, value); err != nil {
					return fmt.Errorf("inserting %s score for %q: %w", kind, id, err)
				}
			}
		}
		return nil
	}
	if err := insert(types.ScoreSites, res.Sites, res.SiteScores); err != nil {
		return 0, err
	}
	if err := insert(types.ScoreSpecies, res.Species, res.SpeciesScores); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// ListRuns returns archived run summaries, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = s.maxResults
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created, input, method, transform, distance, axes, stress, converged
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			r        RunSummary
			created  string
			distance sql.NullString
		)
		if err := rows.Scan(&r.ID, &created, &r.Input, &r.Method, &r.Transform,
			&distance, &r.Axes, &r.Stress, &r.Converged); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Created, _ = time.Parse(time.RFC3339, created)
		r.Distance = types.Distance(distance.String)
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRun reconstructs an archived run's Result and summary.
func (s *Store) GetRun(ctx context.Context, id int64) (*types.Result, *RunSummary, error) {
	var (
		summary     RunSummary
		created     string
		distance    sql.NullString
		restarts    int
		proportions string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created, input, method, transform, distance, axes, stress, converged, restarts, proportions
		 FROM runs WHERE id = ?`, id).
		Scan(&summary.ID, &created, &summary.Input, &summary.Method, &summary.Transform,
			&distance, &summary.Axes, &summary.Stress, &summary.Converged, &restarts, &proportions)
	if err == sql.ErrNoRows {
		return nil, nil, fmt.Errorf("run %d not found", id)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("querying run %d: %w", id, err)
	}
	summary.Created, _ = time.Parse(time.RFC3339, created)
	summary.Distance = types.Distance(distance.String)

	res := &types.Result{
		Method:    summary.Method,
		Transform: summary.Transform,
		Distance:  summary.Distance,
		Axes:      summary.Axes,
		Diagnostics: types.Diagnostics{
			Stress:    summary.Stress,
			Converged: summary.Converged,
			Restarts:  restarts,
		},
	}
	if proportions != "" {
		if err := json.Unmarshal([]byte(proportions), &res.Proportions); err != nil {
			return nil, nil, fmt.Errorf("parsing proportions for run %d: %w", id, err)
		}
	}

	load := func(kind types.ScoreKind) ([]string, [][]float64, error) {
		rows, err := s.db.QueryContext(ctx,
			`SELECT entity, axis, value FROM scores
			 WHERE run_id = ? AND kind = ? ORDER BY rowid`, id, string(kind))
		if err != nil {
			return nil, nil, fmt.Errorf("querying %s scores: %w", kind, err)
		}
		defer rows.Close()

		var (
			ids    []string
			coords [][]float64
			index  = map[string]int{}
		)
		for rows.Next() {
			var (
				entity string
				axis   int
				value  float64
			)
			if err := rows.Scan(&entity, &axis, &value); err != nil {
				return nil, nil, fmt.Errorf("scanning score: %w", err)
			}
			at, ok := index[entity]
			if !ok {
				at = len(ids)
				index[entity] = at
				ids = append(ids, entity)
				coords = append(coords, make([]float64, summary.Axes))
			}
			if axis >= 1 && axis <= summary.Axes {
				coords[at][axis-1] = value
			}
		}
		return ids, coords, rows.Err()
	}

	if res.Sites, res.SiteScores, err = load(types.ScoreSites); err != nil {
		return nil, nil, err
	}
	if res.Species, res.SpeciesScores, err = load(types.ScoreSpecies); err != nil {
		return nil, nil, err
	}

	return res, &summary, nil
}

// DeleteRun removes an archived run and its scores.
func (s *Store) DeleteRun(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting run %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete of run %d: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("run %d not found", id)
	}
	// ON DELETE CASCADE only fires when the foreign_keys pragma is on;
	// databases created without it still need the explicit delete.
	if _, err := s.db.ExecContext(ctx, `DELETE FROM scores WHERE run_id = ?`, id); err != nil {
		return fmt.Errorf("deleting scores for run %d: %w", id, err)
	}
	return nil
}
