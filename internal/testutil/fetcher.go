// Package testutil contains the shared fixtures for exercising the
// resolution core: an instrumented in-memory fetcher and the scenario table
// used to check both solvers against known candidate sequences.
package testutil

import (
	"context"
	"errors"
	"io/fs"
	"sync"
)

// MapFetcher serves file contents from a map and instruments every access:
// total fetch counts per path, the number of concurrently in-flight
// fetches, and the high-water mark of that number. An optional Gate channel
// stalls asynchronous fetches until released, so tests can hold a fetch
// in-flight deliberately.
type MapFetcher struct {
	// Files maps full resolved paths to file contents.
	Files map[string]string
	// Gate, when non-nil, blocks Fetch until the channel is closed.
	Gate chan struct{}

	mu          sync.Mutex
	fetches     map[string]int
	inFlight    int
	maxInFlight int
}

// NewMapFetcher creates a MapFetcher serving the given paths. Values are
// the file contents; an empty string is a present, empty file.
func NewMapFetcher(files map[string]string) *MapFetcher {
	return &MapFetcher{Files: files}
}

// NewMapFetcherFromList creates a MapFetcher where every listed path exists
// with empty contents.
func NewMapFetcherFromList(paths []string) *MapFetcher {
	files := make(map[string]string, len(paths))
	for _, p := range paths {
		files[p] = ""
	}
	return &MapFetcher{Files: files}
}

func (f *MapFetcher) FetchSync(path string) ([]byte, error) {
	f.begin(path)
	defer f.end()
	return f.read(path)
}

func (f *MapFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	f.begin(path)
	defer f.end()
	if f.Gate != nil {
		select {
		case <-f.Gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.read(path)
}

func (f *MapFetcher) read(path string) ([]byte, error) {
	content, ok := f.Files[path]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return []byte(content), nil
}

func (f *MapFetcher) begin(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetches == nil {
		f.fetches = make(map[string]int)
	}
	f.fetches[path]++
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
}

func (f *MapFetcher) end() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight--
}

// Fetches returns how many times the path was fetched, across both modes.
func (f *MapFetcher) Fetches(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches[path]
}

// TotalFetches returns the number of underlying fetches issued.
func (f *MapFetcher) TotalFetches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.fetches {
		total += n
	}
	return total
}

// MaxInFlight returns the high-water mark of concurrently in-flight
// fetches.
func (f *MapFetcher) MaxInFlight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxInFlight
}

// ErrFetcher fails every fetch with the given error, for exercising the
// I/O-error-folds-to-missing behavior.
type ErrFetcher struct {
	Err error
}

func (f *ErrFetcher) FetchSync(path string) ([]byte, error) {
	return nil, f.errOrDefault()
}

func (f *ErrFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	return nil, f.errOrDefault()
}

func (f *ErrFetcher) errOrDefault() error {
	if f.Err != nil {
		return f.Err
	}
	return errors.New("fetch failed")
}
