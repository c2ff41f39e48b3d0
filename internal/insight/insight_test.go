package insight

import (
	"reflect"
	"testing"
)

func findBySubject(insights []Insight, subject string) *Insight {
	for i := range insights {
		if insights[i].Subject == subject {
			return &insights[i]
		}
	}
	return nil
}

func TestWinRateThresholds(t *testing.T) {
	testCases := []struct {
		rate     float64
		flagged  bool
		severity Severity
	}{
		{0.50, false, ""},
		{0.40, false, ""},
		{0.60, false, ""},
		{0.39, true, SeverityHigh},
		{0.61, true, SeverityHigh},
		{0.35, true, SeverityHigh},
		{0.65, true, SeverityHigh},
		{0.29, true, SeverityCritical},
		{0.71, true, SeverityCritical},
		{0.0, true, SeverityCritical},
		{1.0, true, SeverityCritical},
	}

	for _, tc := range testCases {
		insights := GenerateInsights(map[string]float64{MetricWinRate: tc.rate})
		got := findBySubject(insights, MetricWinRate)
		if !tc.flagged {
			if got != nil {
				t.Errorf("rate %v: unexpectedly flagged: %+v", tc.rate, got)
			}
			continue
		}
		if got == nil {
			t.Errorf("rate %v: expected an insight", tc.rate)
			continue
		}
		if got.Severity != tc.severity {
			t.Errorf("rate %v: severity = %s, want %s", tc.rate, got.Severity, tc.severity)
		}
		if got.Category != CategoryBalance {
			t.Errorf("rate %v: category = %s, want balance", tc.rate, got.Category)
		}
		if got.Confidence < 0 || got.Confidence > 1 {
			t.Errorf("rate %v: confidence %v outside [0, 1]", tc.rate, got.Confidence)
		}
		if got.Evidence == "" {
			t.Errorf("rate %v: insight carries no evidence", tc.rate)
		}
	}
}

func TestInflationThresholdStrict(t *testing.T) {
	testCases := []struct {
		name    string
		net     float64
		inflow  float64
		flagged bool
	}{
		{"well above", 500, 500, true},
		{"just above", 251, 500, true},
		{"exactly half does not fire", 250, 500, false},
		{"below half", 100, 500, false},
		{"no inflow", 10, 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			insights := GenerateInsights(map[string]float64{
				NetPrefix + "gold":    tc.net,
				InflowPrefix + "gold": tc.inflow,
			})
			got := findBySubject(insights, "gold")
			if tc.flagged && got == nil {
				t.Errorf("net=%v inflow=%v: expected inflation insight", tc.net, tc.inflow)
			}
			if !tc.flagged && got != nil {
				t.Errorf("net=%v inflow=%v: unexpected insight %+v", tc.net, tc.inflow, got)
			}
			if got != nil && got.Severity != SeverityHigh {
				t.Errorf("inflation severity = %s, want high", got.Severity)
			}
		})
	}
}

func TestBalanceScoreThresholds(t *testing.T) {
	testCases := []struct {
		score    float64
		flagged  bool
		severity Severity
	}{
		{0.9, false, ""},
		{0.7, false, ""},
		{0.69, true, SeverityHigh},
		{0.5, true, SeverityHigh},
		{0.49, true, SeverityCritical},
		{0.1, true, SeverityCritical},
	}

	for _, tc := range testCases {
		insights := GenerateInsights(map[string]float64{MetricBalanceScore: tc.score})
		got := findBySubject(insights, MetricBalanceScore)
		if tc.flagged != (got != nil) {
			t.Errorf("score %v: flagged = %v, want %v", tc.score, got != nil, tc.flagged)
			continue
		}
		if got != nil && got.Severity != tc.severity {
			t.Errorf("score %v: severity = %s, want %s", tc.score, got.Severity, tc.severity)
		}
	}
}

func TestGenerateInsightsIdempotent(t *testing.T) {
	metrics := map[string]float64{
		MetricWinRate:         0.72,
		MetricBalanceScore:    0.45,
		NetPrefix + "gold":    400,
		InflowPrefix + "gold": 500,
	}
	first := GenerateInsights(metrics)
	second := GenerateInsights(metrics)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("insight generation is not idempotent:\n%+v\n%+v", first, second)
	}
	if len(first) != 3 {
		t.Errorf("expected 3 insights, got %d: %+v", len(first), first)
	}
}

func TestRecommendationsFromTable(t *testing.T) {
	metrics := map[string]float64{MetricWinRate: 0.85}
	insights := GenerateInsights(metrics)
	recs := GenerateRecommendations(insights, metrics)

	if len(recs) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(recs))
	}
	rec := recs[0]
	if rec.Category != "parameter-adjustment" {
		t.Errorf("category = %q, want parameter-adjustment", rec.Category)
	}
	if rec.Target != MetricWinRate {
		t.Errorf("target = %q, want %q", rec.Target, MetricWinRate)
	}
	if rec.Priority != 1 {
		t.Errorf("priority = %d, want 1 for a critical insight", rec.Priority)
	}
	if rec.Action == "" || rec.Impact == "" {
		t.Error("recommendation is missing action or impact text")
	}
}

func TestRecommendationsSortedByPriority(t *testing.T) {
	insights := []Insight{
		{Category: CategoryBalance, Severity: SeverityHigh, Subject: "gold"},
		{Category: CategoryBalance, Severity: SeverityCritical, Subject: MetricWinRate},
		{Category: CategoryDesign, Severity: SeverityHigh, Subject: "pacing"},
	}
	recs := GenerateRecommendations(insights, nil)
	for i := 1; i < len(recs); i++ {
		if recs[i-1].Priority > recs[i].Priority {
			t.Errorf("recommendations not sorted by priority: %+v", recs)
		}
	}
}

func TestUnmappedInsightProducesNothing(t *testing.T) {
	insights := []Insight{{Category: CategoryPerformance, Severity: SeverityLow, Subject: "x"}}
	if recs := GenerateRecommendations(insights, nil); len(recs) != 0 {
		t.Errorf("expected no recommendations, got %+v", recs)
	}
}
