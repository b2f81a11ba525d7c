package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/codepulse/pkg/config"
	"github.com/panbanda/codepulse/pkg/models"
)

const nestedJS = "function process(items) {\n  while (items.length) {\n    if (items[0]) {\n      items.shift();\n    }\n  }\n}"

// run executes the CLI with stdout captured.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	var out, errOut bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &errOut
	app.Reader = strings.NewReader(stdin)
	err := app.Run(append([]string{"codepulse"}, args...))
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestGetPaths(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{"no args defaults to current dir", []string{}, []string{"."}},
		{"single path", []string{"/foo/bar"}, []string{"/foo/bar"}},
		{"multiple paths", []string{"/foo", "/bar"}, []string{"/foo", "/bar"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			app := &cli.App{
				Action: func(c *cli.Context) error {
					got = getPaths(c)
					return nil
				},
			}
			require.NoError(t, app.Run(append([]string{"test"}, tt.args...)))
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, isTerminal(&bytes.Buffer{}))

	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, isTerminal(f))
}

func TestAnalyzeCode(t *testing.T) {
	out, err := run(t, "", "--no-cache", "-f", "json", "analyze", "-l", "javascript", "--code", nestedJS)
	require.NoError(t, err)

	var got models.ComprehensiveAnalysis
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 3, got.CyclomaticComplexity)
	assert.Equal(t, 3, got.NestedDepth)
	assert.Equal(t, 83, got.OverallScore)
}

func TestAnalyzeStdin(t *testing.T) {
	out, err := run(t, "const unused = 1;\n", "--no-cache", "-f", "json", "analyze", "-")
	require.NoError(t, err)

	var got models.ComprehensiveAnalysis
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []string{"unused"}, got.UnusedVariables)
}

func TestAnalyzeTextOutput(t *testing.T) {
	out, err := run(t, "", "--no-cache", "analyze", "--code", nestedJS)
	require.NoError(t, err)
	assert.Contains(t, out, "JavaScript analysis")
	assert.Contains(t, out, "No issues found.")
}

func TestAnalyzeDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.js"), "const unused = 1;\n")
	writeFile(t, filepath.Join(dir, "pkg", "b.py"), "def f(x):\n    if x:\n        return x\n")
	writeFile(t, filepath.Join(dir, "node_modules", "dep.js"), "var x = 1;\n")
	writeFile(t, filepath.Join(dir, "README.md"), "# readme\n")

	out, err := run(t, "", "--no-cache", "-f", "json", "analyze", dir)
	require.NoError(t, err)

	var report models.BatchReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Files, 2)
	assert.Equal(t, 2, report.Summary.Files)
	assert.Equal(t, 1, report.Summary.TotalUnused)
}

func TestAnalyzeNoFiles(t *testing.T) {
	_, err := run(t, "", "--no-cache", "analyze", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no source files found")
}

func TestAnalyzeFailUnder(t *testing.T) {
	_, err := run(t, "", "--no-cache", "-f", "json", "analyze", "--fail-under", "90", "--code", nestedJS)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "below the required 90")

	_, err = run(t, "", "--no-cache", "-f", "json", "analyze", "--fail-under", "80", "--code", nestedJS)
	assert.NoError(t, err)
}

func TestAnalyzeUnknownFormat(t *testing.T) {
	_, err := run(t, "", "--no-cache", "-f", "xml", "analyze", "--code", "x = 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown format "xml"`)
}

func TestAnalyzeOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")
	out, err := run(t, "", "--no-cache", "-f", "markdown", "-o", path, "analyze", "--code", nestedJS)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# JavaScript analysis")
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".codepulse", "codepulse.toml")

	_, err := run(t, "", "init", "-o", path)
	require.NoError(t, err)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	defaults := config.DefaultConfig()
	assert.Equal(t, defaults.Analysis.ComplexityThreshold, cfg.Analysis.ComplexityThreshold)
	assert.Equal(t, defaults.Analysis.Python.NestingThreshold, cfg.Analysis.Python.NestingThreshold)
	assert.Equal(t, defaults.Exclude.Dirs, cfg.Exclude.Dirs)
	assert.NoError(t, cfg.Validate())

	_, err = run(t, "", "init", "-o", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = run(t, "", "init", "-o", path, "--force")
	assert.NoError(t, err)
}

func TestConfigShow(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "codepulse.toml"), "[analysis]\ncomplexity_threshold = 7\n")

	out, err := run(t, "", "-c", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "complexity_threshold = 7")
	assert.Contains(t, out, "nesting_threshold = 4")
}

func TestConfigValidate(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, filepath.Join(dir, "good.toml"), "[log]\nlevel = \"debug\"\n")
	bad := writeFile(t, filepath.Join(dir, "bad.toml"), "[log]\nlevel = \"loud\"\n")

	out, err := run(t, "", "-c", good, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid.")

	_, err = run(t, "", "-c", bad, "config", "validate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.level")
}

func TestMissingConfigFile(t *testing.T) {
	_, err := run(t, "", "-c", filepath.Join(t.TempDir(), "nope.toml"), "config", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestMCPManifest(t *testing.T) {
	out, err := run(t, "", "mcp", "--manifest")
	require.NoError(t, err)

	var manifest map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &manifest))
	assert.Contains(t, out, "codepulse")
}

func TestCacheCommands(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")
	cfgPath := writeFile(t, filepath.Join(dir, "codepulse.toml"), "[cache]\ndir = \""+filepath.ToSlash(cacheDir)+"\"\n")

	_, err := run(t, "", "-c", cfgPath, "-f", "json", "analyze", "--code", nestedJS)
	require.NoError(t, err)

	out, err := run(t, "", "-c", cfgPath, "cache", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Entries:    1")

	out, err = run(t, "", "-c", cfgPath, "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cache cleared.")

	out, err = run(t, "", "-c", cfgPath, "cache", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Entries:    0")
}
