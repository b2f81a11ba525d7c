package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/panbanda/codepulse/pkg/config"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to create file %s: %v", name, err)
		}
	}
}

func relSet(t *testing.T, root string, files []string) map[string]bool {
	t.Helper()
	found := make(map[string]bool, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(root, f)
		if err != nil {
			t.Fatalf("Rel(%q): %v", f, err)
		}
		found[filepath.ToSlash(rel)] = true
	}
	return found
}

func TestNew(t *testing.T) {
	s := New(nil)
	if s.config == nil {
		t.Error("scanner.config should not be nil when passing nil")
	}

	cfg := config.DefaultConfig()
	if New(cfg).config != cfg {
		t.Error("scanner.config should be the provided config")
	}
}

func TestScanDir(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"main.js":          "main();\n",
		"lib.mjs":          "export {};\n",
		"util/helper.py":   "x = 1\n",
		"util/stub.pyi":    "def f() -> int: ...\n",
		"README.md":        "# readme\n",
		"internal/core.go": "package core\n",
	})

	result, err := New(nil).ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}

	found := relSet(t, tmpDir, result)
	for _, want := range []string{"main.js", "lib.mjs", "util/helper.py", "util/stub.pyi"} {
		if !found[want] {
			t.Errorf("ScanDir() missed %s", want)
		}
	}
	if len(result) != 4 {
		t.Errorf("ScanDir() found %d files, want 4: %v", len(result), result)
	}
}

func TestScanDirExcludesDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"node_modules/lib/index.js": "x;\n",
		"__pycache__/mod.py":        "x = 1\n",
		".venv/site.py":             "x = 1\n",
		"app.js":                    "x;\n",
	})

	result, err := New(nil).ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	if len(result) != 1 || filepath.Base(result[0]) != "app.js" {
		t.Errorf("ScanDir() = %v, want only app.js", result)
	}
}

func TestScanDirExcludesPatterns(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"app.js":                 "x;\n",
		"app.min.js":             "x;\n",
		"dist2/vendor.bundle.js": "x;\n",
		"tests/test_app.py":      "x = 1\n",
	})

	cfg := config.DefaultConfig()
	cfg.Exclude.Patterns = append(cfg.Exclude.Patterns, "tests/")

	result, err := New(cfg).ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	found := relSet(t, tmpDir, result)
	if len(found) != 1 || !found["app.js"] {
		t.Errorf("ScanDir() = %v, want only app.js", result)
	}
}

func TestScanDirWithGitignore(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		".gitignore":       "generated/\n*.gen.py\n",
		"main.py":          "x = 1\n",
		"schema.gen.py":    "x = 1\n",
		"generated/api.js": "x;\n",
		"src/app.js":       "x;\n",
	})
	if err := os.Mkdir(filepath.Join(tmpDir, ".git"), 0755); err != nil {
		t.Fatal(err)
	}

	result, err := New(nil).ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	found := relSet(t, tmpDir, result)
	if !found["main.py"] || !found["src/app.js"] {
		t.Errorf("ScanDir() = %v, want main.py and src/app.js", result)
	}
	if found["schema.gen.py"] || found["generated/api.js"] {
		t.Errorf("ScanDir() = %v, gitignored files should be skipped", result)
	}
}

func TestScanDirGitignoreFromSubdirectory(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		".gitignore":        "src/legacy/\n",
		"src/app.js":        "x;\n",
		"src/legacy/old.js": "x;\n",
	})
	if err := os.Mkdir(filepath.Join(tmpDir, ".git"), 0755); err != nil {
		t.Fatal(err)
	}

	src := filepath.Join(tmpDir, "src")
	result, err := New(nil).ScanDir(src)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	found := relSet(t, src, result)
	if len(found) != 1 || !found["app.js"] {
		t.Errorf("ScanDir() = %v, want only app.js", result)
	}
}

func TestScanDirDisabledGitignore(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		".gitignore":  "skipme/\n",
		"skipme/a.js": "x;\n",
		"b.js":        "x;\n",
	})
	if err := os.Mkdir(filepath.Join(tmpDir, ".git"), 0755); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.Exclude.Gitignore = false

	result, err := New(cfg).ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	if len(result) != 2 {
		t.Errorf("ScanDir() = %v, want 2 files with gitignore disabled", result)
	}
}

func TestScanDirMissingRoot(t *testing.T) {
	if _, err := New(nil).ScanDir(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("ScanDir() should fail for a missing root")
	}
}

func TestScanPaths(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"pkg/a.js":   "x;\n",
		"pkg/b.py":   "x = 1\n",
		"script.txt": "x = 1\n",
		"app.min.js": "x;\n",
	})

	a := filepath.Join(tmpDir, "pkg", "a.js")
	result, err := New(nil).ScanPaths([]string{
		a,
		filepath.Join(tmpDir, "pkg"),
		filepath.Join(tmpDir, "script.txt"),
		filepath.Join(tmpDir, "app.min.js"),
	})
	if err != nil {
		t.Fatalf("ScanPaths() error: %v", err)
	}

	want := []string{a, filepath.Join(tmpDir, "pkg", "b.py"), filepath.Join(tmpDir, "script.txt")}
	if len(result) != len(want) {
		t.Fatalf("ScanPaths() = %v, want %v", result, want)
	}
	for i := range want {
		if result[i] != want[i] {
			t.Errorf("ScanPaths()[%d] = %q, want %q", i, result[i], want[i])
		}
	}
}

func TestScanPathsMissing(t *testing.T) {
	if _, err := New(nil).ScanPaths([]string{filepath.Join(t.TempDir(), "nope.js")}); err == nil {
		t.Error("ScanPaths() should fail for a missing path")
	}
}

func TestIsWithinRoot(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"same path", tmpDir, true},
		{"child path", filepath.Join(tmpDir, "subdir", "file.js"), true},
		{"path outside root", "/some/other/path", false},
		{"parent path", filepath.Dir(tmpDir), false},
		{"similar prefix but different dir", tmpDir + "2/file.js", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isWithinRoot(tt.path, tmpDir); got != tt.want {
				t.Errorf("isWithinRoot(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestFindGitRoot(t *testing.T) {
	tmpDir := t.TempDir()
	if got := findGitRoot(tmpDir); got != "" {
		t.Errorf("findGitRoot() on non-git dir = %q, want empty", got)
	}

	if err := os.Mkdir(filepath.Join(tmpDir, ".git"), 0755); err != nil {
		t.Fatalf("Failed to create .git dir: %v", err)
	}
	subDir := filepath.Join(tmpDir, "src", "pkg")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatalf("Failed to create subdir: %v", err)
	}

	if got := findGitRoot(subDir); got != tmpDir {
		t.Errorf("findGitRoot() from subdir = %q, want %q", got, tmpDir)
	}
}

func TestScanDirSkipsSymlinkOutsideRoot(t *testing.T) {
	tmpDir := t.TempDir()
	outside := t.TempDir()
	writeTree(t, outside, map[string]string{"outside.js": "x;\n"})
	writeTree(t, tmpDir, map[string]string{"inside.js": "x;\n"})

	if err := os.Symlink(filepath.Join(outside, "outside.js"), filepath.Join(tmpDir, "link.js")); err != nil {
		t.Skip("Symlinks not supported on this system")
	}

	result, err := New(nil).ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	found := relSet(t, tmpDir, result)
	if found["link.js"] {
		t.Error("ScanDir() should not follow symlinks outside the root directory")
	}
	if !found["inside.js"] {
		t.Error("ScanDir() should find inside.js")
	}
}
