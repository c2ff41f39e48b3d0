// Package store persists finished batch runs so results can be compared
// across tuning sessions.
package store

import (
	"errors"
	"time"
)

// ErrRunNotFound is returned when a run id does not exist.
var ErrRunNotFound = errors.New("run not found")

// DB is the persistence interface for simulation runs.
type DB interface {
	Close() error
	Migrate() error
	SaveRun(run *Run, insights []InsightRow) error
	GetRun(id string) (*Run, error)
	GetInsights(runID string) ([]InsightRow, error)
	ListRuns(q RunsQuery) (*RunsList, error)
}

// Run is one persisted batch result. Metrics, recommendations and the data
// bundle are stored as JSON; insights get their own table so they can be
// filtered by severity.
type Run struct {
	ID           string    `json:"id" db:"id"`
	Type         string    `json:"type" db:"type"`
	Scenario     string    `json:"scenario" db:"scenario"`
	Iterations   int       `json:"iterations" db:"iterations"`
	DurationMs   int64     `json:"duration_ms" db:"duration_ms"`
	Seed         *uint64   `json:"seed,omitempty" db:"seed"`
	MetricsJSON  string    `json:"metrics_json" db:"metrics_json"`
	DataJSON     string    `json:"data_json" db:"data_json"`
	RecsJSON     string    `json:"recommendations_json" db:"recommendations_json"`
	InsightCount int       `json:"insight_count" db:"insight_count"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// InsightRow is one persisted insight.
type InsightRow struct {
	ID          int64   `json:"id" db:"id"`
	RunID       string  `json:"run_id" db:"run_id"`
	Category    string  `json:"category" db:"category"`
	Severity    string  `json:"severity" db:"severity"`
	Subject     string  `json:"subject" db:"subject"`
	Description string  `json:"description" db:"description"`
	Evidence    string  `json:"evidence" db:"evidence"`
	Confidence  float64 `json:"confidence" db:"confidence"`
}

// RunsQuery filters and paginates run listings.
type RunsQuery struct {
	Type    string `json:"type,omitempty"`
	Page    int    `json:"page"`
	PerPage int    `json:"perPage"`
}

// RunsList is a page of runs.
type RunsList struct {
	Runs       []Run `json:"runs"`
	TotalCount int   `json:"totalCount"`
	Page       int   `json:"page"`
	PerPage    int   `json:"perPage"`
	TotalPages int   `json:"totalPages"`
}
