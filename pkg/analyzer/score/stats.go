package score

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/panbanda/codepulse/pkg/models"
)

// Summarize aggregates a batch of analyses. Degraded results count toward
// Files, ParseFailures and the score statistics but not the metric ones.
func Summarize(analyses []models.ComprehensiveAnalysis) models.Summary {
	s := models.Summary{Files: len(analyses)}
	if len(analyses) == 0 {
		return s
	}

	scores := make([]float64, 0, len(analyses))
	var complexities, lengths []float64
	s.MinScore = math.MaxInt

	for _, a := range analyses {
		scores = append(scores, float64(a.OverallScore))
		if a.OverallScore < s.MinScore {
			s.MinScore = a.OverallScore
		}
		if a.Degraded() {
			s.ParseFailures++
			continue
		}
		complexities = append(complexities, float64(a.CyclomaticComplexity))
		lengths = append(lengths, float64(a.FunctionLength))
		if a.NestedDepth > s.MaxNesting {
			s.MaxNesting = a.NestedDepth
		}
		s.TotalUnused += len(a.UnusedVariables)
		s.TotalFunctionLength += a.FunctionLength
	}

	s.MeanScore = stat.Mean(scores, nil)

	if len(complexities) > 0 {
		// Quantile needs sorted input; sort a copy so lengths stay paired.
		sorted := append([]float64(nil), complexities...)
		sort.Float64s(sorted)
		s.P50Complexity = stat.Quantile(0.5, stat.Empirical, sorted, nil)
		s.P90Complexity = stat.Quantile(0.9, stat.Empirical, sorted, nil)
	}

	if len(complexities) >= 2 {
		if r := stat.Correlation(complexities, lengths, nil); !math.IsNaN(r) {
			s.ComplexityLengthCorrelation = r
		}
	}

	return s
}
