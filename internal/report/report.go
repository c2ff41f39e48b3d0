// Package report renders a batch result to JSON, CSV or markdown.
package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/11vate/balance-sim-go/internal/sim"
)

// Format names an output rendering.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

// Render produces the result in the requested format.
func Render(res *sim.Result, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return JSON(res)
	case FormatCSV:
		return CSV(res)
	case FormatMarkdown:
		return Markdown(res), nil
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}

// JSON renders the full result, indented.
func JSON(res *sim.Result) ([]byte, error) {
	return json.MarshalIndent(res, "", "  ")
}

// CSV renders the metrics table: one metric per row, sorted by name.
func CSV(res *sim.Result) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"metric", "value"}); err != nil {
		return nil, err
	}
	for _, name := range sortedKeys(res.Metrics) {
		if err := w.Write([]string{name, strconv.FormatFloat(res.Metrics[name], 'g', -1, 64)}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// Markdown renders a human-readable summary with metrics, insights and
// recommendations.
func Markdown(res *sim.Result) []byte {
	var b bytes.Buffer

	fmt.Fprintf(&b, "# %s batch %s\n\n", res.Type, res.ID)
	fmt.Fprintf(&b, "%d iterations in %s\n\n", res.Iterations, res.Duration)
	if res.Seed != nil {
		fmt.Fprintf(&b, "seed: %d\n\n", *res.Seed)
	}

	b.WriteString("## Metrics\n\n| metric | value |\n|---|---|\n")
	for _, name := range sortedKeys(res.Metrics) {
		fmt.Fprintf(&b, "| %s | %.4f |\n", name, res.Metrics[name])
	}

	if len(res.Data.Distributions) > 0 {
		b.WriteString("\n## Distributions\n\n| sample | mean | stddev | median | min | max |\n|---|---|---|---|---|---|\n")
		names := make([]string, 0, len(res.Data.Distributions))
		for name := range res.Data.Distributions {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			d := res.Data.Distributions[name]
			fmt.Fprintf(&b, "| %s | %.4f | %.4f | %.4f | %.4f | %.4f |\n",
				name, d.Mean, d.StdDev, d.Median, d.Min, d.Max)
		}
	}

	if len(res.Insights) > 0 {
		b.WriteString("\n## Insights\n\n")
		for _, ins := range res.Insights {
			fmt.Fprintf(&b, "- **%s/%s** %s (%s; confidence %.2f)\n",
				ins.Category, ins.Severity, ins.Description, ins.Evidence, ins.Confidence)
		}
	}

	if len(res.Recommendations) > 0 {
		b.WriteString("\n## Recommendations\n\n")
		for _, rec := range res.Recommendations {
			fmt.Fprintf(&b, "%d. [%s] %s (%s)\n", rec.Priority, rec.Category, rec.Action, rec.Impact)
		}
	}

	return b.Bytes()
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
