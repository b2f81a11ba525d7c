package progress

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/panbanda/codepulse/internal/fileproc"
)

func TestBarTracksMapFiles(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for _, name := range []string{"a.js", "b.js", "c.py"} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("x = 1\n"), 0644); err != nil {
			t.Fatal(err)
		}
		files = append(files, path)
	}
	files = append(files, filepath.Join(dir, "missing.py"))

	var buf bytes.Buffer
	bar := New(&buf, "analyzing", len(files))
	tracker := bar.Tracker()
	ctx := fileproc.WithTracker(context.Background(), tracker)

	_, errs := fileproc.MapFiles(ctx, files, fileproc.Options{Workers: 2},
		func(_ context.Context, path string, content []byte) (int, error) {
			return len(content), nil
		})
	if errs == nil || len(errs.Errors) != 1 {
		t.Fatalf("errors = %v, want one failure", errs)
	}

	if tracker.Current() != len(files) {
		t.Errorf("Current() = %d, want %d", tracker.Current(), len(files))
	}
	if tracker.Failed() != 1 {
		t.Errorf("Failed() = %d, want 1", tracker.Failed())
	}

	bar.Finish(tracker.Failed())
	if !strings.Contains(buf.String(), "analyzing: 1 files skipped") {
		t.Errorf("output missing skip note: %q", buf.String())
	}
}

func TestFinishWithoutFailures(t *testing.T) {
	var buf bytes.Buffer
	bar := New(&buf, "analyzing", 1)
	bar.Callback()(1, 1, "/tmp/x.js")
	bar.Finish(0)
	if strings.Contains(buf.String(), "skipped") {
		t.Errorf("unexpected skip note: %q", buf.String())
	}
}
