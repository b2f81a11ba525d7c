package score

// =============================================================================
// SCORE NORMALIZATION
// =============================================================================
//
// Each raw metric is mapped to a 0-100 sub-score where higher is better.
// Every mapping is linear and clamped to [0, 100] before the sub-scores are
// averaged; averaging unclamped values would let one very good metric hide
// a very bad one.
// =============================================================================

// NormalizeComplexity maps cyclomatic complexity to a sub-score. The
// baseline path scores 100 and each further branch costs 10 points.
//
// Benchmarks:
// - complexity 1: 100
// - complexity 6: 50
// - complexity 11+: 0
func NormalizeComplexity(complexity int) float64 {
	return clamp(100-float64(complexity-1)*10, 0, 100)
}

// NormalizeNesting maps maximum nesting depth to a sub-score, 15 points per
// level. Seven levels or more score 0.
func NormalizeNesting(depth int) float64 {
	return clamp(100-float64(depth)*15, 0, 100)
}

// NormalizeLength maps total function length to a sub-score: 50 points per
// hundred lines, so 200 lines or more score 0.
func NormalizeLength(lines int) float64 {
	return clamp(100-(float64(lines)/100)*50, 0, 100)
}

// NormalizeCleanliness maps the number of unused variables to a sub-score,
// 20 points each.
func NormalizeCleanliness(unused int) float64 {
	return clamp(100-float64(unused)*20, 0, 100)
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
