package output

import (
	"fmt"
	"strconv"

	"github.com/panbanda/codepulse/pkg/models"
)

// AnalysisReport renders one analysis: a metrics table with sub-scores and
// the suggestion list. JSON and TOON output serialize the analysis itself.
func AnalysisReport(title string, a models.ComprehensiveAnalysis) *Report {
	metrics := &Table{
		Headers: []string{"Metric", "Value", "Score"},
		Rows: [][]string{
			{"Cyclomatic complexity", strconv.Itoa(a.CyclomaticComplexity), formatScore(a.Scores.Complexity)},
			{"Max nesting depth", strconv.Itoa(a.NestedDepth), formatScore(a.Scores.Nesting)},
			{"Function length", strconv.Itoa(a.FunctionLength), formatScore(a.Scores.Length)},
			{"Unused variables", strconv.Itoa(len(a.UnusedVariables)), formatScore(a.Scores.Cleanliness)},
		},
		Footer:   []string{"Overall", "", strconv.Itoa(a.OverallScore)},
		Colorize: scoreColumn(2),
	}

	sections := []Renderable{metrics}
	if a.Degraded() {
		sections = append(sections, &Section{Title: "Parse error", Items: []string{a.ParseError}})
	}
	sections = append(sections, &Section{
		Title: "Suggestions",
		Items: a.Suggestions,
		Empty: "No issues found.",
	})

	if title == "" {
		title = fmt.Sprintf("%s analysis", a.Language.DisplayName())
	}
	return &Report{Title: title, Sections: sections, Data: a}
}

// BatchView renders a multi-file run: one row per file followed by the
// summary statistics.
func BatchView(r *models.BatchReport) *Report {
	rows := make([][]string, 0, len(r.Files))
	for _, f := range r.Files {
		a := f.Analysis
		score := strconv.Itoa(a.OverallScore)
		if a.Degraded() {
			score += " (parse error)"
		}
		rows = append(rows, []string{
			f.Path,
			a.Language.DisplayName(),
			strconv.Itoa(a.CyclomaticComplexity),
			strconv.Itoa(a.NestedDepth),
			strconv.Itoa(a.FunctionLength),
			strconv.Itoa(len(a.UnusedVariables)),
			score,
		})
	}

	files := &Table{
		Title:    "Files",
		Headers:  []string{"Path", "Language", "Complexity", "Nesting", "Length", "Unused", "Score"},
		Rows:     rows,
		Colorize: scoreColumn(6),
	}

	s := r.Summary
	summary := &Table{
		Title:   "Summary",
		Headers: []string{"Statistic", "Value"},
		Rows: [][]string{
			{"Files", strconv.Itoa(s.Files)},
			{"Parse failures", strconv.Itoa(s.ParseFailures)},
			{"Mean score", fmt.Sprintf("%.1f", s.MeanScore)},
			{"Min score", strconv.Itoa(s.MinScore)},
			{"P50 complexity", fmt.Sprintf("%.1f", s.P50Complexity)},
			{"P90 complexity", fmt.Sprintf("%.1f", s.P90Complexity)},
			{"Max nesting", strconv.Itoa(s.MaxNesting)},
			{"Unused variables", strconv.Itoa(s.TotalUnused)},
			{"Function lines", strconv.Itoa(s.TotalFunctionLength)},
			{"Complexity/length correlation", fmt.Sprintf("%.2f", s.ComplexityLengthCorrelation)},
		},
	}

	return &Report{
		Title:    "Code quality report",
		Sections: []Renderable{files, summary},
		Data:     r,
	}
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// scoreColumn colors the cells of column col by the score they start with.
func scoreColumn(col int) func(int, string) string {
	return func(i int, cell string) string {
		if i != col {
			return cell
		}
		var v float64
		if _, err := fmt.Sscanf(cell, "%g", &v); err != nil {
			return cell
		}
		return ScoreColor(v, cell)
	}
}
