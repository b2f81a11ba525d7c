package analyzer

import (
	"context"

	"github.com/panbanda/codepulse/internal/fileproc"
	"github.com/panbanda/codepulse/pkg/analyzer/score"
	"github.com/panbanda/codepulse/pkg/models"
	"github.com/panbanda/codepulse/pkg/parser"
)

// AnalyzeFiles analyzes files concurrently. An empty language detects each
// file's language from its extension; anything else forces that language.
// Files that cannot be read are reported in the returned errors and left
// out of the report. Progress goes to the context's fileproc.Tracker.
func (e *Engine) AnalyzeFiles(ctx context.Context, files []string, language string) (*models.BatchReport, *fileproc.ProcessingErrors) {
	opts := fileproc.Options{
		Workers:     e.cfg.Analysis.Workers,
		MaxFileSize: e.cfg.Analysis.MaxFileSize,
	}

	results, errs := fileproc.MapFiles(ctx, files, opts, func(ctx context.Context, path string, content []byte) (models.FileAnalysis, error) {
		lang := e.fileLanguage(path, language)
		analysis := e.analyzeAs(ctx, string(content), lang)
		if analysis.Degraded() {
			e.logger.Info("file did not parse", "path", path, "language", lang, "error", analysis.ParseError)
		}
		return models.FileAnalysis{Path: path, Analysis: analysis}, nil
	})

	report := &models.BatchReport{Files: results}
	if report.Files == nil {
		report.Files = []models.FileAnalysis{}
	}
	analyses := make([]models.ComprehensiveAnalysis, len(results))
	for i, r := range results {
		analyses[i] = r.Analysis
	}
	report.Summary = score.Summarize(analyses)

	if errs != nil {
		for _, pe := range errs.Errors {
			e.logger.Warn("file skipped", "path", pe.Path, "error", pe.Err)
		}
	}
	return report, errs
}

func (e *Engine) fileLanguage(path, override string) parser.Language {
	if override != "" {
		return e.Resolve(override)
	}
	if lang := parser.DetectLanguage(path); lang != parser.LangUnknown {
		return lang
	}
	return e.fallback
}
