// Package source provides fetching and caching of localization resources.
// A FileSource is a named provider that can supply some subset of
// (locale, resource id) combinations; the host supplies a Fetcher for raw
// bytes and a Parser for turning bytes into resources, and the FileSource
// memoizes every per-path outcome so a resource is fetched at most once,
// apart from the overload case described on FileSource.FetchSync.
package source

import (
	"context"
	"log/slog"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/semaphore"
	"golang.org/x/text/language"

	"github.com/bufbuild/fallback/reporter"
)

// FileSource resolves resource ids to absolute paths for a set of supported
// locales and caches the outcome of every fetch. A resolved path is in one
// of three states: never fetched or loading (unknown), fetched and absent
// (missing), or fetched and parsed (loaded). Terminal states are stable; a
// path is never re-fetched once its state is known.
//
// All methods are safe for concurrent use.
type FileSource struct {
	name     string
	locales  []language.Tag
	prePath  string
	index    []string
	fetcher  Fetcher
	parser   Parser
	logger   *slog.Logger
	handler  *reporter.Handler
	sem      *semaphore.Weighted
	resCache cache
}

// Option configures a FileSource.
type Option func(*FileSource)

// WithIndex declares the complete set of resource ids the source can serve.
// Entries are doublestar glob patterns; plain ids are the common case. With
// an index installed, a query for any id matching no entry is answered
// missing without touching the fetcher. Langpacks that ship a file manifest
// use this to eliminate probe I/O entirely.
func WithIndex(ids ...string) Option {
	return func(s *FileSource) {
		s.index = ids
	}
}

// WithLogger sets the logger used for fetch traces and overload warnings.
// The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *FileSource) {
		s.logger = logger
	}
}

// WithReporter sets the reporter that receives parse errors from this
// source.
func WithReporter(rep reporter.Reporter) Option {
	return func(s *FileSource) {
		s.handler = reporter.NewHandler(rep)
	}
}

// WithParallelism bounds the number of concurrent underlying asynchronous
// fetches this source will issue. If unspecified or non-positive,
// runtime.GOMAXPROCS(0) is used. Synchronous fetches are not counted
// against the bound.
func WithParallelism(n int) Option {
	return func(s *FileSource) {
		if n > 0 {
			s.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// New creates a FileSource. The path template must contain the literal
// token {locale}, which is substituted with the locale's string form;
// everything else is taken verbatim. A nil parser defaults to RawParser.
func New(name string, locales []language.Tag, pathTemplate string, fetcher Fetcher, parser Parser, opts ...Option) *FileSource {
	if parser == nil {
		parser = RawParser{}
	}
	s := &FileSource{
		name:    name,
		locales: locales,
		prePath: pathTemplate,
		fetcher: fetcher,
		parser:  parser,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.handler == nil {
		s.handler = reporter.NewHandler(nil)
	}
	if s.sem == nil {
		s.sem = semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0)))
	}
	return s
}

// Name returns the source's unique name. Two sources are the same source
// iff their names are equal.
func (s *FileSource) Name() string {
	return s.name
}

// Locales returns the locales this source supports.
func (s *FileSource) Locales() []language.Tag {
	return s.locales
}

func (s *FileSource) String() string {
	return s.name
}

// SetReporter replaces the reporter receiving this source's parse errors.
func (s *FileSource) SetReporter(rep reporter.Reporter) {
	s.handler.SetReporter(rep)
}

// Supports reports whether the source lists the locale.
func (s *FileSource) Supports(locale language.Tag) bool {
	for _, l := range s.locales {
		if l == locale {
			return true
		}
	}
	return false
}

// ResolvePath substitutes the locale into the path template and appends the
// resource id. A "/" separator is inserted iff the substituted template is
// non-empty and does not already end with one; the same rule keys the
// cache.
func (s *FileSource) ResolvePath(locale language.Tag, resID string) string {
	base := strings.ReplaceAll(s.prePath, "{locale}", locale.String())
	switch {
	case base == "":
		return resID
	case strings.HasSuffix(base, "/"):
		return base + resID
	default:
		return base + "/" + resID
	}
}

// indexAllows reports whether the resource id is covered by the source's
// index. Sources without an index allow everything.
func (s *FileSource) indexAllows(resID string) bool {
	if s.index == nil {
		return true
	}
	for _, pattern := range s.index {
		if pattern == resID {
			return true
		}
		if ok, err := doublestar.Match(pattern, resID); err == nil && ok {
			return true
		}
	}
	return false
}

// HasFile reports what the source knows about the combination without
// blocking or triggering I/O. Unsupported locales and ids outside the index
// are Absent; otherwise the answer reflects the cache: Present for a loaded
// entry, Absent for a missing one, Unknown while a fetch is in flight or
// before any fetch happened.
func (s *FileSource) HasFile(locale language.Tag, resID string) Presence {
	if !s.Supports(locale) || !s.indexAllows(resID) {
		return Absent
	}
	return s.resCache.presence(s.ResolvePath(locale, resID))
}

// FetchSync synchronously fetches the resource for the combination of
// locale and resource id, memoizing the outcome. It returns nil if the
// source cannot supply the file; I/O errors count as missing. If an
// asynchronous fetch for the same path is still in flight, the fetch is an
// overload: a warning is logged and an independent synchronous fetch is
// performed without altering the pending entry.
func (s *FileSource) FetchSync(locale language.Tag, resID string) Resource {
	if !s.Supports(locale) {
		return nil
	}
	full := s.ResolvePath(locale, resID)
	if !s.indexAllows(resID) {
		s.resCache.recordMissing(full)
		return nil
	}
	e, installed := s.resCache.lookup(full, false)
	if installed {
		res := s.load(full)
		s.resCache.resolve(e, res)
		return res
	}
	st, res, viaAsync := s.resCache.observe(e)
	switch st {
	case statusLoaded:
		return res
	case statusMissing:
		return nil
	}
	if viaAsync {
		s.logger.Warn("synchronous fetch overlapping an in-flight asynchronous fetch", "source", s.name, "path", full)
		return s.load(full)
	}
	// Another synchronous fetch for the same path owns the entry; its
	// outcome is the outcome.
	<-e.done
	if res, ok := e.result(); ok {
		return res
	}
	return nil
}

// Fetch fetches the resource for the combination of locale and resource id,
// sharing a single underlying fetch among all concurrent callers for the
// same path. It blocks until the shared fetch resolves or ctx is done. A
// nil resource with a nil error means the source cannot supply the file.
//
// The underlying fetch is detached from ctx: cancelling one caller does not
// cancel the shared load, and the cache entry always reaches a terminal
// state.
func (s *FileSource) Fetch(ctx context.Context, locale language.Tag, resID string) (Resource, error) {
	if !s.Supports(locale) {
		return nil, nil
	}
	full := s.ResolvePath(locale, resID)
	if !s.indexAllows(resID) {
		s.resCache.recordMissing(full)
		return nil, nil
	}
	e, installed := s.resCache.lookup(full, true)
	if installed {
		go func() {
			s.resCache.resolve(e, s.loadDetached(full))
		}()
	}
	select {
	case <-e.done:
		res, _ := e.result()
		return res, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// KnownPaths returns every resolved path with a cached outcome, in
// lexicographic order.
func (s *FileSource) KnownPaths() []string {
	return s.resCache.paths()
}

// load performs one synchronous underlying fetch and parse. It never
// touches the cache.
func (s *FileSource) load(full string) Resource {
	data, err := s.fetcher.FetchSync(full)
	if err != nil {
		s.logger.Debug("fetch missing", "source", s.name, "path", full, "err", err)
		return nil
	}
	return s.parse(full, data)
}

// loadDetached performs one underlying async fetch and parse on behalf of
// the shared cache entry, bounded by the source's parallelism limit.
func (s *FileSource) loadDetached(full string) Resource {
	ctx := context.Background()
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil
	}
	defer s.sem.Release(1)
	data, err := s.fetcher.Fetch(ctx, full)
	if err != nil {
		s.logger.Debug("fetch missing", "source", s.name, "path", full, "err", err)
		return nil
	}
	return s.parse(full, data)
}

func (s *FileSource) parse(full string, data []byte) Resource {
	res, errs := s.parser.Parse(full, data)
	if len(errs) > 0 {
		wrapped := make([]error, len(errs))
		for i, err := range errs {
			wrapped[i] = &reporter.ParseError{Path: full, Err: err}
		}
		s.handler.Report(wrapped...)
	}
	return res
}

// result reads a terminal entry's outcome. Only valid after done is closed.
func (e *entry) result() (Resource, bool) {
	if e.status == statusLoaded {
		return e.res, true
	}
	return nil, false
}
