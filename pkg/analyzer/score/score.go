// Package score turns raw analysis metrics into 0-100 health scores.
package score

import (
	"math"

	"github.com/panbanda/codepulse/pkg/models"
)

// Components computes the four clamped sub-scores of a result.
func Components(r models.AnalysisResult) models.ComponentScores {
	return models.ComponentScores{
		Complexity:  NormalizeComplexity(r.CyclomaticComplexity),
		Nesting:     NormalizeNesting(r.NestedDepth),
		Length:      NormalizeLength(r.FunctionLength),
		Cleanliness: NormalizeCleanliness(len(r.UnusedVariables)),
	}
}

// Overall averages the sub-scores and rounds half away from zero.
func Overall(c models.ComponentScores) int {
	mean := (c.Complexity + c.Nesting + c.Length + c.Cleanliness) / 4
	return int(math.Round(mean))
}

// Compute returns the sub-scores and overall score of a result. A degraded
// result carries zeroed metrics, so it scores 100 on every component; callers
// that need to tell it apart check ParseError, not the score.
func Compute(r models.AnalysisResult) (models.ComponentScores, int) {
	c := Components(r)
	return c, Overall(c)
}
