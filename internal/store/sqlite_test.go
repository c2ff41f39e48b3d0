package store

import (
	"errors"
	"testing"
	"time"

	"github.com/11vate/balance-sim-go/internal/insight"
	"github.com/11vate/balance-sim-go/internal/sim"
)

func newTestDB(t *testing.T) *SQLiteDB {
	t.Helper()
	db, err := NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func sampleRun(id, runType string) *Run {
	return &Run{
		ID:          id,
		Type:        runType,
		Scenario:    "duel",
		Iterations:  1000,
		DurationMs:  125,
		MetricsJSON: `{"win_rate":0.85}`,
		DataJSON:    `{}`,
		RecsJSON:    `[]`,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestSaveAndGetRun(t *testing.T) {
	db := newTestDB(t)

	seed := uint64(42)
	run := sampleRun("run1", "combat")
	run.Seed = &seed
	insights := []InsightRow{
		{RunID: "run1", Category: "balance", Severity: "critical", Subject: "win_rate",
			Description: "skewed", Evidence: "win rate 0.850", Confidence: 0.85},
	}
	run.InsightCount = len(insights)

	if err := db.SaveRun(run, insights); err != nil {
		t.Fatalf("SaveRun returned error: %v", err)
	}

	got, err := db.GetRun("run1")
	if err != nil {
		t.Fatalf("GetRun returned error: %v", err)
	}
	if got.Type != "combat" || got.Scenario != "duel" || got.Iterations != 1000 {
		t.Errorf("run round-trip mismatch: %+v", got)
	}
	if got.Seed == nil || *got.Seed != 42 {
		t.Errorf("seed = %v, want 42", got.Seed)
	}
	if got.InsightCount != 1 {
		t.Errorf("insight count = %d, want 1", got.InsightCount)
	}

	rows, err := db.GetInsights("run1")
	if err != nil {
		t.Fatalf("GetInsights returned error: %v", err)
	}
	if len(rows) != 1 || rows[0].Severity != "critical" || rows[0].Subject != "win_rate" {
		t.Errorf("insights round-trip mismatch: %+v", rows)
	}
}

func TestGetRunNotFound(t *testing.T) {
	db := newTestDB(t)
	if _, err := db.GetRun("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("error = %v, want ErrRunNotFound", err)
	}
}

func TestListRunsFilterAndPaginate(t *testing.T) {
	db := newTestDB(t)

	for i, runType := range []string{"combat", "combat", "economy"} {
		run := sampleRun(string(rune('a'+i)), runType)
		run.CreatedAt = time.Now().UTC().Add(time.Duration(i) * time.Second)
		if err := db.SaveRun(run, nil); err != nil {
			t.Fatalf("SaveRun returned error: %v", err)
		}
	}

	all, err := db.ListRuns(RunsQuery{})
	if err != nil {
		t.Fatalf("ListRuns returned error: %v", err)
	}
	if all.TotalCount != 3 {
		t.Errorf("total = %d, want 3", all.TotalCount)
	}

	combatOnly, err := db.ListRuns(RunsQuery{Type: "combat"})
	if err != nil {
		t.Fatalf("ListRuns returned error: %v", err)
	}
	if combatOnly.TotalCount != 2 {
		t.Errorf("combat total = %d, want 2", combatOnly.TotalCount)
	}

	page, err := db.ListRuns(RunsQuery{Page: 2, PerPage: 2})
	if err != nil {
		t.Fatalf("ListRuns returned error: %v", err)
	}
	if len(page.Runs) != 1 || page.TotalPages != 2 {
		t.Errorf("page 2 has %d runs, total pages %d; want 1 and 2", len(page.Runs), page.TotalPages)
	}
}

func TestFromResult(t *testing.T) {
	seed := uint64(7)
	res := &sim.Result{
		ID:         "res1",
		Type:       sim.TypeCombat,
		Iterations: 500,
		Duration:   250 * time.Millisecond,
		Seed:       &seed,
		Metrics:    map[string]float64{"win_rate": 0.9},
		Insights: []insight.Insight{
			{Category: insight.CategoryBalance, Severity: insight.SeverityCritical,
				Subject: "win_rate", Description: "d", Evidence: "e", Confidence: 0.9},
		},
		Recommendations: []insight.Recommendation{
			{Category: "parameter-adjustment", Target: "win_rate", Action: "a", Impact: "i", Priority: 1},
		},
		CreatedAt: time.Now().UTC(),
	}

	run, rows, err := FromResult(res, "duel")
	if err != nil {
		t.Fatalf("FromResult returned error: %v", err)
	}
	if run.DurationMs != 250 {
		t.Errorf("duration = %d ms, want 250", run.DurationMs)
	}
	if run.InsightCount != 1 || len(rows) != 1 {
		t.Errorf("insights not converted: count=%d rows=%d", run.InsightCount, len(rows))
	}
	if rows[0].RunID != "res1" {
		t.Errorf("insight run id = %q, want res1", rows[0].RunID)
	}

	db := newTestDB(t)
	if err := db.SaveRun(run, rows); err != nil {
		t.Fatalf("SaveRun of converted result returned error: %v", err)
	}
}
