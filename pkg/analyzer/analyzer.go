// Package analyzer resolves a language tag to a language analyzer, runs it
// and stamps the result with its score and completion time.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/panbanda/codepulse/pkg/analyzer/complexity"
	"github.com/panbanda/codepulse/pkg/analyzer/score"
	"github.com/panbanda/codepulse/pkg/config"
	"github.com/panbanda/codepulse/pkg/models"
	"github.com/panbanda/codepulse/pkg/parser"
)

// ResultCache memoizes analysis results. Results are pure functions of the
// key, so any store that returns what was put under a key will do.
type ResultCache interface {
	Get(key string) (models.AnalysisResult, bool)
	Put(key string, result models.AnalysisResult) error
}

// Engine dispatches analyses to per-language analyzers. It is safe for
// concurrent use.
type Engine struct {
	cfg       *config.Config
	logger    *slog.Logger
	cache     ResultCache
	now       func() time.Time
	fallback  parser.Language
	analyzers map[parser.Language]*complexity.Analyzer
}

// Option is a functional option for configuring Engine.
type Option func(*Engine)

// WithConfig sets thresholds, the default language and batch limits.
func WithConfig(cfg *config.Config) Option {
	return func(e *Engine) {
		if cfg != nil {
			e.cfg = cfg
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithCache sets a result cache consulted before parsing.
func WithCache(c ResultCache) Option {
	return func(e *Engine) {
		e.cache = c
	}
}

// WithClock replaces the clock used for result timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		cfg:    config.DefaultConfig(),
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.fallback = e.cfg.Language()
	e.analyzers = make(map[parser.Language]*complexity.Analyzer)
	for _, lang := range parser.Languages() {
		e.analyzers[lang] = complexity.New(lang,
			complexity.WithComplexityThreshold(e.cfg.Analysis.ComplexityThreshold),
			complexity.WithNestingThreshold(e.cfg.NestingThreshold(lang)),
			complexity.WithLogger(e.logger),
		)
	}
	return e
}

// Resolve maps a free-form language tag to a supported language. Unknown
// or empty tags resolve to the configured default.
func (e *Engine) Resolve(tag string) parser.Language {
	if lang, ok := parser.ParseLanguage(tag); ok {
		return lang
	}
	return e.fallback
}

// Analyze analyzes code written in language. It never fails: unparseable
// code yields a degraded result.
func (e *Engine) Analyze(code, language string) models.ComprehensiveAnalysis {
	return e.AnalyzeContext(context.Background(), code, language)
}

// AnalyzeContext is Analyze with a context for the parser.
func (e *Engine) AnalyzeContext(ctx context.Context, code, language string) models.ComprehensiveAnalysis {
	return e.analyzeAs(ctx, code, e.Resolve(language))
}

func (e *Engine) analyzeAs(ctx context.Context, code string, lang parser.Language) models.ComprehensiveAnalysis {
	a := e.analyzers[lang]
	result := e.measure(ctx, a, code)
	scores, overall := score.Compute(result)

	return models.ComprehensiveAnalysis{
		AnalysisResult: result,
		Language:       lang,
		Timestamp:      e.now().UTC(),
		OverallScore:   overall,
		Scores:         scores,
	}
}

func (e *Engine) measure(ctx context.Context, a *complexity.Analyzer, code string) models.AnalysisResult {
	if e.cache == nil {
		return a.AnalyzeContext(ctx, code)
	}

	key := cacheKey(a, code)
	if r, ok := e.cache.Get(key); ok {
		return r
	}

	r := a.AnalyzeContext(ctx, code)
	// Cancellation also degrades a result, so only clean ones are kept.
	if !r.Degraded() {
		if err := e.cache.Put(key, r); err != nil {
			e.logger.Debug("cache write failed", "language", a.Language(), "error", err)
		}
	}
	return r
}

// cacheKey covers everything a result depends on: the language, the
// thresholds that shape the suggestions and the code itself.
func cacheKey(a *complexity.Analyzer, code string) string {
	th := a.Thresholds()
	var b strings.Builder
	fmt.Fprintf(&b, "%s\x00%d\x00%d\x00", a.Language(), th.Complexity, th.Nesting)
	b.WriteString(code)
	return b.String()
}

var defaultEngine = sync.OnceValue(func() *Engine { return New() })

// Analyze analyzes code with a default engine.
func Analyze(code, language string) models.ComprehensiveAnalysis {
	return defaultEngine().Analyze(code, language)
}
