// Package complexity extracts cyclomatic complexity, nesting depth,
// function length and unused variables from a single source snippet.
package complexity

import (
	"context"
	"log/slog"
	"strings"

	"github.com/panbanda/codepulse/pkg/ast"
	"github.com/panbanda/codepulse/pkg/ast/treesitter"
	"github.com/panbanda/codepulse/pkg/models"
	"github.com/panbanda/codepulse/pkg/parser"
)

// Analyzer measures source code of one language.
type Analyzer struct {
	profile    Profile
	provider   ast.Provider
	thresholds Thresholds
	logger     *slog.Logger
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithComplexityThreshold overrides the complexity suggestion threshold.
func WithComplexityThreshold(n int) Option {
	return func(a *Analyzer) {
		a.thresholds.Complexity = n
	}
}

// WithNestingThreshold overrides the language's nesting suggestion threshold.
func WithNestingThreshold(n int) Option {
	return func(a *Analyzer) {
		a.thresholds.Nesting = n
	}
}

// WithProvider replaces the tree-sitter provider.
func WithProvider(p ast.Provider) Option {
	return func(a *Analyzer) {
		a.provider = p
	}
}

// WithLogger sets the logger used to report parse failures.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = l
	}
}

// New creates an analyzer for lang. Unsupported languages get the
// profile of parser.DefaultLanguage.
func New(lang parser.Language, opts ...Option) *Analyzer {
	profile, ok := ProfileFor(lang)
	if !ok {
		profile, _ = ProfileFor(parser.DefaultLanguage)
	}
	a := &Analyzer{
		profile:  profile,
		provider: treesitter.New(profile.Language),
		thresholds: Thresholds{
			Complexity: DefaultComplexityThreshold,
			Nesting:    profile.NestingThreshold,
		},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Language returns the language the analyzer measures.
func (a *Analyzer) Language() parser.Language {
	return a.profile.Language
}

// Thresholds returns the suggestion thresholds in effect.
func (a *Analyzer) Thresholds() Thresholds {
	return a.thresholds
}

// Measure parses code and walks it with the language's rule table.
// The only error is the provider's *parser.ParseError (or a context error).
func (a *Analyzer) Measure(ctx context.Context, code string) (*Accumulator, error) {
	root, err := a.provider.Parse(ctx, []byte(code))
	if err != nil {
		return nil, err
	}
	acc := NewAccumulator()
	Walk(root, a.profile.Rules, acc)
	if acc.FunctionLines == 0 {
		acc.FunctionLines = strings.Count(code, "\n") + 1
	}
	return acc, nil
}

// AnalyzeFor analyzes code. Parse failures produce a degraded result with
// zeroed metrics and a single diagnostic suggestion.
func (a *Analyzer) AnalyzeFor(code string) models.AnalysisResult {
	return a.AnalyzeContext(context.Background(), code)
}

// AnalyzeContext is AnalyzeFor with a context for the parser.
func (a *Analyzer) AnalyzeContext(ctx context.Context, code string) models.AnalysisResult {
	acc, err := a.Measure(ctx, code)
	if err != nil {
		a.logger.Debug("parse failed", "language", a.profile.Language, "error", err)
		return a.degraded(err)
	}

	unused := acc.Unused()
	return models.AnalysisResult{
		CyclomaticComplexity: acc.Complexity,
		FunctionLength:       acc.FunctionLines,
		NestedDepth:          acc.MaxDepth,
		UnusedVariables:      unused,
		Suggestions:          Suggest(a.profile.Messages, a.thresholds, acc.Complexity, acc.MaxDepth, unused),
	}
}

func (a *Analyzer) degraded(err error) models.AnalysisResult {
	return models.AnalysisResult{
		UnusedVariables: []string{},
		Suggestions:     []string{a.profile.Messages.ParseFailure},
		ParseError:      err.Error(),
	}
}
