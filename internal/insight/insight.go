// Package insight converts aggregate batch metrics into flagged issues and
// tuning suggestions. Everything here is a pure function of the metrics map,
// so generating twice over the same metrics yields the same output.
package insight

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Category classifies what kind of problem an insight describes.
type Category string

const (
	CategoryBalance     Category = "balance"
	CategoryExploit     Category = "exploit"
	CategoryPerformance Category = "performance"
	CategoryDesign      Category = "design"
)

// Severity ranks how urgent an insight is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Insight is one flagged statistical anomaly.
type Insight struct {
	Category    Category `json:"category"`
	Severity    Severity `json:"severity"`
	Subject     string   `json:"subject"`
	Description string   `json:"description"`
	Evidence    string   `json:"evidence"`
	Confidence  float64  `json:"confidence"`
}

// Recommendation is an advisory action derived from insights. It is never
// applied automatically.
type Recommendation struct {
	Category string `json:"category"`
	Target   string `json:"target"`
	Action   string `json:"action"`
	Impact   string `json:"impact"`
	Priority int    `json:"priority"`
}

// Metric keys the generators understand. Batch runners populate these;
// economy flows use the prefixed per-resource keys.
const (
	MetricWinRate      = "win_rate"
	MetricBalanceScore = "balance_score"
	NetPrefix          = "net."
	InflowPrefix       = "inflow."
	OutflowPrefix      = "outflow."
)

// Win-rate and balance-score thresholds. These are contract values covered
// by tests; change them and downstream tuning advice changes meaning.
const (
	winRateLow       = 0.4
	winRateHigh      = 0.6
	winRateCritLow   = 0.3
	winRateCritHigh  = 0.7
	inflationFactor  = 0.5
	balanceScoreFlag = 0.7
	balanceScoreCrit = 0.5
)

// rule inspects the metrics map and emits zero or more insights.
type rule struct {
	name  string
	apply func(metrics map[string]float64) []Insight
}

var rules = []rule{
	{name: "win_rate", apply: winRateRule},
	{name: "inflation", apply: inflationRule},
	{name: "balance_score", apply: balanceScoreRule},
}

// GenerateInsights runs every rule against the metrics map. Output order is
// stable: rule order, then subject order within a rule.
func GenerateInsights(metrics map[string]float64) []Insight {
	var insights []Insight
	for _, r := range rules {
		insights = append(insights, r.apply(metrics)...)
	}
	return insights
}

func winRateRule(metrics map[string]float64) []Insight {
	rate, ok := metrics[MetricWinRate]
	if !ok || (rate >= winRateLow && rate <= winRateHigh) {
		return nil
	}
	severity := SeverityHigh
	if rate < winRateCritLow || rate > winRateCritHigh {
		severity = SeverityCritical
	}
	favored := "side A"
	if rate < 0.5 {
		favored = "side B"
	}
	return []Insight{{
		Category:    CategoryBalance,
		Severity:    severity,
		Subject:     MetricWinRate,
		Description: fmt.Sprintf("win rate is skewed toward %s", favored),
		Evidence:    fmt.Sprintf("win rate %.3f outside acceptable range [%.2f, %.2f]", rate, winRateLow, winRateHigh),
		Confidence:  clamp01(0.5 + math.Abs(rate-0.5)),
	}}
}

func inflationRule(metrics map[string]float64) []Insight {
	var insights []Insight
	for _, name := range resourceNames(metrics) {
		net := metrics[NetPrefix+name]
		inflow := metrics[InflowPrefix+name]
		// Strict comparison: a net change of exactly half the modeled
		// inflow does not fire.
		if inflow <= 0 || net <= inflationFactor*inflow {
			continue
		}
		insights = append(insights, Insight{
			Category:    CategoryBalance,
			Severity:    SeverityHigh,
			Subject:     name,
			Description: fmt.Sprintf("resource %q accumulates faster than its sinks drain it", name),
			Evidence:    fmt.Sprintf("net change %.2f exceeds %.0f%% of modeled inflow %.2f", net, inflationFactor*100, inflow),
			Confidence:  clamp01(net / inflow),
		})
	}
	return insights
}

func balanceScoreRule(metrics map[string]float64) []Insight {
	score, ok := metrics[MetricBalanceScore]
	if !ok || score >= balanceScoreFlag {
		return nil
	}
	severity := SeverityHigh
	if score < balanceScoreCrit {
		severity = SeverityCritical
	}
	return []Insight{{
		Category:    CategoryBalance,
		Severity:    severity,
		Subject:     MetricBalanceScore,
		Description: "overall balance score is below target",
		Evidence:    fmt.Sprintf("balance score %.3f below threshold %.2f", score, balanceScoreFlag),
		Confidence:  clamp01(1 - score),
	}}
}

// resourceNames returns the sorted resource names that carry a net metric.
func resourceNames(metrics map[string]float64) []string {
	var names []string
	for key := range metrics {
		if strings.HasPrefix(key, NetPrefix) {
			names = append(names, strings.TrimPrefix(key, NetPrefix))
		}
	}
	sort.Strings(names)
	return names
}

// actionTemplate is one row of the recommendation table.
type actionTemplate struct {
	category string
	action   string
	impact   string
	priority int
}

// recommendationTable maps insight category and severity to a fixed action
// template. Extending advice for a new insight kind means adding a row here,
// not a branch somewhere else.
var recommendationTable = map[Category]map[Severity]actionTemplate{
	CategoryBalance: {
		SeverityCritical: {
			category: "parameter-adjustment",
			action:   "adjust %s: rework the dominant side's stats toward 50%% parity",
			impact:   "restores competitive matchups and keeps both options viable",
			priority: 1,
		},
		SeverityHigh: {
			category: "parameter-adjustment",
			action:   "tune %s with small stat or rate changes and re-run the batch",
			impact:   "narrows the observed imbalance without redesigning mechanics",
			priority: 2,
		},
		SeverityMedium: {
			category: "mechanic-change",
			action:   "review the mechanics feeding %s for compounding effects",
			impact:   "prevents slow drift before it becomes player-visible",
			priority: 3,
		},
	},
	CategoryExploit: {
		SeverityCritical: {
			category: "mechanic-change",
			action:   "close the loop behind %s before wider exposure",
			impact:   "removes a degenerate strategy that bypasses intended costs",
			priority: 1,
		},
		SeverityHigh: {
			category: "mechanic-change",
			action:   "add a diminishing return or cap on %s",
			impact:   "keeps the strategy usable but no longer dominant",
			priority: 2,
		},
	},
	CategoryPerformance: {
		SeverityHigh: {
			category: "optimization",
			action:   "profile the path behind %s",
			impact:   "reduces batch wall-clock time",
			priority: 3,
		},
	},
	CategoryDesign: {
		SeverityHigh: {
			category: "mechanic-change",
			action:   "revisit the design assumption behind %s",
			impact:   "aligns observed play with the intended experience",
			priority: 3,
		},
	},
}

// GenerateRecommendations derives advisory actions from insights via the
// recommendation table. Insights with no matching row produce nothing.
func GenerateRecommendations(insights []Insight, metrics map[string]float64) []Recommendation {
	var recs []Recommendation
	for _, ins := range insights {
		bySeverity, ok := recommendationTable[ins.Category]
		if !ok {
			continue
		}
		tmpl, ok := bySeverity[ins.Severity]
		if !ok {
			continue
		}
		recs = append(recs, Recommendation{
			Category: tmpl.category,
			Target:   ins.Subject,
			Action:   fmt.Sprintf(tmpl.action, ins.Subject),
			Impact:   tmpl.impact,
			Priority: tmpl.priority,
		})
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Priority < recs[j].Priority })
	return recs
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
