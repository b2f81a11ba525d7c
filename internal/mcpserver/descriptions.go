package mcpserver

// Tool descriptions with interpretation guidance for LLMs.

func describeAnalyzeCode() string {
	return `Measures the quality of one JavaScript or Python snippet: cyclomatic complexity, maximum nesting depth, function length and unused variables, combined into a 0-100 score with suggestions.

USE WHEN:
- Reviewing a function or snippet before committing it
- Checking whether a refactoring made code simpler
- Explaining why a piece of code is hard to follow

INTERPRETING RESULTS:
- cyclomaticComplexity starts at 1; above 10 the snippet has too many paths
- nestedDepth above 4 (JavaScript) or 5 (Python) calls for guard clauses or extraction
- functionLength is the total line span of all functions in the snippet
- overallScore is the mean of four 0-100 sub-scores; 80+ is good, below 50 needs work
- parseError set means the snippet did not parse and the metrics are zero

METRICS RETURNED:
- cyclomaticComplexity, nestedDepth, functionLength, unusedVariables, suggestions
- language, timestamp, overallScore and the four sub-scores`
}

func describeAnalyzeFiles() string {
	return `Analyzes JavaScript and Python files on disk and summarizes them. Directories are walked recursively, honoring .gitignore and the configured excludes.

USE WHEN:
- Finding the worst files in a project to refactor first
- Comparing quality across modules
- Checking a change set file by file

INTERPRETING RESULTS:
- Each file carries the same metrics as analyze_code
- meanScore and minScore show overall health and the weakest file
- p50Complexity and p90Complexity show typical and worst-case complexity
- complexityLengthCorrelation near 1 means long files are also the complex ones

METRICS RETURNED:
- files: path plus per-file analysis
- summary: files, parseFailures, meanScore, minScore, P50/P90 complexity, maxNesting, totalUnused, totalFunctionLength, complexityLengthCorrelation`
}
