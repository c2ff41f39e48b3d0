package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/11vate/balance-sim-go/internal/sim"
)

// SQLiteDB implements the DB interface using SQLite.
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens (or creates) the database at path.
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL keeps readers unblocked while a run is being saved.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Migrate creates the schema.
func (s *SQLiteDB) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			scenario TEXT NOT NULL DEFAULT '',
			iterations INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			seed INTEGER,
			metrics_json TEXT NOT NULL DEFAULT '{}',
			data_json TEXT NOT NULL DEFAULT '{}',
			recommendations_json TEXT NOT NULL DEFAULT '[]',
			insight_count INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS insights (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			category TEXT NOT NULL,
			severity TEXT NOT NULL,
			subject TEXT NOT NULL,
			description TEXT NOT NULL,
			evidence TEXT NOT NULL,
			confidence REAL NOT NULL,
			FOREIGN KEY (run_id) REFERENCES runs(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_insights_run_id ON insights(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_insights_severity ON insights(run_id, severity)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_type ON runs(type, created_at DESC)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// FromResult converts a batch result into its persisted form.
func FromResult(res *sim.Result, scenario string) (*Run, []InsightRow, error) {
	metrics, err := json.Marshal(res.Metrics)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal metrics: %w", err)
	}
	data, err := json.Marshal(res.Data)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal data: %w", err)
	}
	recs, err := json.Marshal(res.Recommendations)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal recommendations: %w", err)
	}

	run := &Run{
		ID:           res.ID,
		Type:         string(res.Type),
		Scenario:     scenario,
		Iterations:   res.Iterations,
		DurationMs:   res.Duration.Milliseconds(),
		Seed:         res.Seed,
		MetricsJSON:  string(metrics),
		DataJSON:     string(data),
		RecsJSON:     string(recs),
		InsightCount: len(res.Insights),
		CreatedAt:    res.CreatedAt,
	}
	rows := make([]InsightRow, len(res.Insights))
	for i, ins := range res.Insights {
		rows[i] = InsightRow{
			RunID:       res.ID,
			Category:    string(ins.Category),
			Severity:    string(ins.Severity),
			Subject:     ins.Subject,
			Description: ins.Description,
			Evidence:    ins.Evidence,
			Confidence:  ins.Confidence,
		}
	}
	return run, rows, nil
}

// SaveRun writes a run and its insights in one transaction.
func (s *SQLiteDB) SaveRun(run *Run, insights []InsightRow) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO runs (
		id, type, scenario, iterations, duration_ms, seed,
		metrics_json, data_json, recommendations_json, insight_count, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Type, run.Scenario, run.Iterations, run.DurationMs, seedValue(run.Seed),
		run.MetricsJSON, run.DataJSON, run.RecsJSON, run.InsightCount, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if len(insights) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO insights
			(run_id, category, severity, subject, description, evidence, confidence)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, ins := range insights {
			if _, err := stmt.Exec(run.ID, ins.Category, ins.Severity, ins.Subject,
				ins.Description, ins.Evidence, ins.Confidence); err != nil {
				return fmt.Errorf("insert insight: %w", err)
			}
		}
	}

	return tx.Commit()
}

func seedValue(seed *uint64) any {
	if seed == nil {
		return nil
	}
	return int64(*seed)
}

// GetRun retrieves a run by id.
func (s *SQLiteDB) GetRun(id string) (*Run, error) {
	var run Run
	var seed sql.NullInt64
	err := s.db.QueryRow(`SELECT
		id, type, scenario, iterations, duration_ms, seed,
		metrics_json, data_json, recommendations_json, insight_count, created_at
		FROM runs WHERE id = ?`, id).Scan(
		&run.ID, &run.Type, &run.Scenario, &run.Iterations, &run.DurationMs, &seed,
		&run.MetricsJSON, &run.DataJSON, &run.RecsJSON, &run.InsightCount, &run.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if seed.Valid {
		v := uint64(seed.Int64)
		run.Seed = &v
	}
	return &run, nil
}

// GetInsights lists a run's insights in insertion order.
func (s *SQLiteDB) GetInsights(runID string) ([]InsightRow, error) {
	rows, err := s.db.Query(`SELECT id, run_id, category, severity, subject,
		description, evidence, confidence
		FROM insights WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var insights []InsightRow
	for rows.Next() {
		var ins InsightRow
		if err := rows.Scan(&ins.ID, &ins.RunID, &ins.Category, &ins.Severity,
			&ins.Subject, &ins.Description, &ins.Evidence, &ins.Confidence); err != nil {
			return nil, err
		}
		insights = append(insights, ins)
	}
	return insights, rows.Err()
}

// ListRuns returns a page of runs, newest first, optionally filtered by type.
func (s *SQLiteDB) ListRuns(q RunsQuery) (*RunsList, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 || q.PerPage > 100 {
		q.PerPage = 20
	}

	where, args := "", []any{}
	if q.Type != "" {
		where = " WHERE type = ?"
		args = append(args, q.Type)
	}

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM runs"+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	args = append(args, q.PerPage, (q.Page-1)*q.PerPage)
	rows, err := s.db.Query(`SELECT
		id, type, scenario, iterations, duration_ms, seed,
		metrics_json, data_json, recommendations_json, insight_count, created_at
		FROM runs`+where+` ORDER BY created_at DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := &RunsList{
		Runs:       []Run{},
		TotalCount: total,
		Page:       q.Page,
		PerPage:    q.PerPage,
		TotalPages: (total + q.PerPage - 1) / q.PerPage,
	}
	for rows.Next() {
		var run Run
		var seed sql.NullInt64
		if err := rows.Scan(&run.ID, &run.Type, &run.Scenario, &run.Iterations,
			&run.DurationMs, &seed, &run.MetricsJSON, &run.DataJSON, &run.RecsJSON,
			&run.InsightCount, &run.CreatedAt); err != nil {
			return nil, err
		}
		if seed.Valid {
			v := uint64(seed.Int64)
			run.Seed = &v
		}
		list.Runs = append(list.Runs, run)
	}
	return list, rows.Err()
}
