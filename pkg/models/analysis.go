package models

import (
	"time"

	"github.com/panbanda/codepulse/pkg/parser"
)

// AnalysisResult holds the metrics extracted from one source snippet.
type AnalysisResult struct {
	CyclomaticComplexity int      `json:"cyclomaticComplexity"`
	FunctionLength       int      `json:"functionLength"`
	NestedDepth          int      `json:"nestedDepth"`
	UnusedVariables      []string `json:"unusedVariables"`
	Suggestions          []string `json:"suggestions"`

	// ParseError carries the parser message when the source could not be
	// parsed and the metrics are the degraded zero values.
	ParseError string `json:"parseError,omitempty"`
}

// Degraded reports whether the result stands in for unparseable source.
func (r AnalysisResult) Degraded() bool {
	return r.ParseError != ""
}

// ComponentScores holds the four clamped sub-scores (0-100 each) the
// overall score is averaged from.
type ComponentScores struct {
	Complexity  float64 `json:"complexity"`
	Nesting     float64 `json:"nesting"`
	Length      float64 `json:"length"`
	Cleanliness float64 `json:"cleanliness"`
}

// ComprehensiveAnalysis is an AnalysisResult stamped with its language,
// the time it was produced and the aggregated score.
type ComprehensiveAnalysis struct {
	AnalysisResult
	Language     parser.Language `json:"language"`
	Timestamp    time.Time       `json:"timestamp"`
	OverallScore int             `json:"overallScore"`
	Scores       ComponentScores `json:"scores"`
}

// FileAnalysis is the analysis of one file from a batch run.
type FileAnalysis struct {
	Path     string                `json:"path"`
	Analysis ComprehensiveAnalysis `json:"analysis"`
}

// Summary aggregates a batch of analyses.
type Summary struct {
	Files               int     `json:"files"`
	ParseFailures       int     `json:"parseFailures"`
	MeanScore           float64 `json:"meanScore"`
	MinScore            int     `json:"minScore"`
	P50Complexity       float64 `json:"p50Complexity"`
	P90Complexity       float64 `json:"p90Complexity"`
	MaxNesting          int     `json:"maxNesting"`
	TotalUnused         int     `json:"totalUnused"`
	TotalFunctionLength int     `json:"totalFunctionLength"`

	// ComplexityLengthCorrelation is the Pearson correlation between
	// complexity and function length across parsed files; 0 when undefined.
	ComplexityLengthCorrelation float64 `json:"complexityLengthCorrelation"`
}

// BatchReport is the result of analyzing several files.
type BatchReport struct {
	Files   []FileAnalysis `json:"files"`
	Summary Summary        `json:"summary"`
}
