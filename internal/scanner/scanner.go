// Package scanner expands command-line paths into the source files a batch
// run analyzes.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/panbanda/codepulse/pkg/config"
	"github.com/panbanda/codepulse/pkg/parser"
)

// Scanner finds source files in a directory.
type Scanner struct {
	config *config.Config
}

// New creates a new file scanner.
func New(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Scanner{config: cfg}
}

// excluder holds the matchers for one scan root. Paths passed to it are
// relative to that root.
type excluder struct {
	patterns gitignore.Matcher // config exclude patterns
	ignore   gitignore.Matcher // every .gitignore in the repository
	prefix   string            // scan root relative to the repository root
}

// findGitRoot finds the root of the git repository by looking for .git directory.
// Returns empty string if not in a git repository.
func findGitRoot(start string) string {
	dir := start
	for {
		gitDir := filepath.Join(dir, ".git")
		if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func (s *Scanner) newExcluder(root string) *excluder {
	ex := &excluder{}

	if len(s.config.Exclude.Patterns) > 0 {
		patterns := make([]gitignore.Pattern, 0, len(s.config.Exclude.Patterns))
		for _, p := range s.config.Exclude.Patterns {
			patterns = append(patterns, gitignore.ParsePattern(p, nil))
		}
		ex.patterns = gitignore.NewMatcher(patterns)
	}

	if s.config.Exclude.Gitignore {
		// ReadPatterns walks every .gitignore below the repository root.
		if gitRoot := findGitRoot(root); gitRoot != "" {
			if patterns, err := gitignore.ReadPatterns(osfs.New(gitRoot), nil); err == nil && len(patterns) > 0 {
				ex.ignore = gitignore.NewMatcher(patterns)
				ex.prefix, _ = filepath.Rel(gitRoot, root)
			}
		}
	}
	return ex
}

func (ex *excluder) excluded(rel string, isDir bool) bool {
	if ex.patterns != nil && ex.patterns.Match(splitPath(rel), isDir) {
		return true
	}
	if ex.ignore != nil && ex.ignore.Match(splitPath(filepath.Join(ex.prefix, rel)), isDir) {
		return true
	}
	return false
}

func splitPath(rel string) []string {
	return strings.Split(rel, string(filepath.Separator))
}

// ScanPaths expands files and directories into source files. Directories
// are walked for supported extensions; files named explicitly are kept
// whatever their extension, unless an exclude pattern matches them.
// Duplicates are dropped and first-seen order is kept.
func (s *Scanner) ScanPaths(paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(f string) {
		if !seen[f] {
			seen[f] = true
			files = append(files, f)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			found, err := s.ScanDir(p)
			if err != nil {
				return nil, err
			}
			for _, f := range found {
				add(f)
			}
			continue
		}
		if !s.config.ShouldExclude(p) {
			add(filepath.Clean(p))
		}
	}
	return files, nil
}

// ScanDir recursively scans a directory for supported source files.
// Symlinks that resolve outside the root are skipped.
func (s *Scanner) ScanDir(root string) ([]string, error) {
	files := make([]string, 0, 64)

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, err
	}

	ex := s.newExcluder(absRoot)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil || !isWithinRoot(resolved, absRoot) {
				return nil
			}
		}

		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}

		if d.IsDir() {
			if slices.Contains(s.config.Exclude.Dirs, d.Name()) || ex.excluded(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if ex.excluded(rel, false) {
			return nil
		}
		if parser.DetectLanguage(path) != parser.LangUnknown {
			files = append(files, path)
		}
		return nil
	})
	return files, walkErr
}

// isWithinRoot checks if a path is contained within the root directory.
func isWithinRoot(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)

	// The separator keeps "/root2" from matching "/root".
	return absPath == root || strings.HasPrefix(absPath, root+string(filepath.Separator))
}
