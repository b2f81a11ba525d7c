// Package fileproc provides concurrent file processing utilities.
package fileproc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/pool"
)

// ErrFileTooLarge is reported for files above Options.MaxFileSize.
var ErrFileTooLarge = errors.New("file exceeds size limit")

// ProcessingError represents an error that occurred while processing a file.
type ProcessingError struct {
	Path string
	Err  error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e ProcessingError) Unwrap() error {
	return e.Err
}

// ProcessingErrors collects multiple file processing errors.
type ProcessingErrors struct {
	Errors []ProcessingError
	mu     sync.Mutex
}

// Add appends an error to the collection (thread-safe).
func (e *ProcessingErrors) Add(path string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, ProcessingError{Path: path, Err: err})
	e.mu.Unlock()
}

// HasErrors returns true if any errors were collected.
func (e *ProcessingErrors) HasErrors() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

// Error implements the error interface.
func (e *ProcessingErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d files failed to process (first: %v)", len(e.Errors), e.Errors[0])
}

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for worker count.
// Parsing is CGO-bound and reading is I/O-bound, so 2x keeps both busy.
const DefaultWorkerMultiplier = 2

// Options tunes MapFiles.
type Options struct {
	Workers     int   // <= 0 means NumCPU * DefaultWorkerMultiplier
	MaxFileSize int64 // bytes; 0 means no limit
}

// MapFiles reads every file and calls fn with its content on a bounded
// pool. Results of successful files are returned in input order; failures
// are collected in the returned ProcessingErrors, which is nil when every
// file succeeded. Progress is reported to the context's Tracker, if any.
func MapFiles[T any](
	ctx context.Context,
	files []string,
	opts Options,
	fn func(ctx context.Context, path string, content []byte) (T, error),
) ([]T, *ProcessingErrors) {
	if len(files) == 0 {
		return nil, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU() * DefaultWorkerMultiplier
	}

	tracker := TrackerFromContext(ctx)
	if tracker != nil {
		tracker.Add(len(files))
	}

	slots := make([]T, len(files))
	done := make([]bool, len(files))
	errs := &ProcessingErrors{}

	p := pool.New().WithMaxGoroutines(workers).WithContext(ctx)
	for i, path := range files {
		p.Go(func(ctx context.Context) error {
			result, err := processFile(ctx, path, opts.MaxFileSize, fn)
			if err != nil {
				errs.Add(path, err)
				if tracker != nil {
					tracker.Fail(path)
				}
				return nil
			}
			slots[i] = result
			done[i] = true
			if tracker != nil {
				tracker.Tick(path)
			}
			return nil
		})
	}
	_ = p.Wait()

	results := make([]T, 0, len(files))
	for i, ok := range done {
		if ok {
			results = append(results, slots[i])
		}
	}

	if !errs.HasErrors() {
		return results, nil
	}
	return results, errs
}

func processFile[T any](
	ctx context.Context,
	path string,
	maxSize int64,
	fn func(context.Context, string, []byte) (T, error),
) (T, error) {
	var zero T

	if err := ctx.Err(); err != nil {
		return zero, err
	}

	if maxSize > 0 {
		info, err := os.Stat(path)
		if err != nil {
			return zero, err
		}
		if info.Size() > maxSize {
			return zero, fmt.Errorf("%w (%d > %d bytes)", ErrFileTooLarge, info.Size(), maxSize)
		}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return zero, err
	}
	return fn(ctx, path, content)
}
