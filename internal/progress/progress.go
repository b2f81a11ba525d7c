// Package progress draws batch progress on a terminal.
package progress

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/schollz/progressbar/v3"

	"github.com/panbanda/codepulse/internal/fileproc"
)

// Bar wraps a progress bar for file analysis.
type Bar struct {
	bar   *progressbar.ProgressBar
	out   io.Writer
	label string
}

// New creates a progress bar on w with the given label and total count.
func New(w io.Writer, label string, total int) *Bar {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(label),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &Bar{bar: bar, out: w, label: label}
}

// Callback returns a fileproc.ProgressFunc that moves the bar to the
// number of finished files and shows the last file's name.
func (b *Bar) Callback() fileproc.ProgressFunc {
	return func(current, total int, path string) {
		b.bar.Describe(fmt.Sprintf("%s %s", b.label, filepath.Base(path)))
		_ = b.bar.Set(current)
	}
}

// Tracker returns a fileproc.Tracker driving this bar.
func (b *Bar) Tracker() *fileproc.Tracker {
	return fileproc.NewTracker(b.Callback())
}

// Finish clears the bar. When some files failed, a one-line note is left
// behind.
func (b *Bar) Finish(failed int) {
	_ = b.bar.Finish()
	_ = b.bar.Clear()
	if failed > 0 {
		fmt.Fprintf(b.out, "  %s: %d files skipped\n", b.label, failed)
	}
}
