package fallback

import (
	"context"
	"iter"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"github.com/bufbuild/fallback/reporter"
	"github.com/bufbuild/fallback/solver"
)

// GenerateBundlesSync returns an iterator of bundles over the locale chain,
// one bundle per valid assignment, in priority order. A nil locales slice
// uses the registry's LocalesProvider. Each locale's solve holds a registry
// snapshot; breaking out of the loop releases it.
func (r *Registry) GenerateBundlesSync(locales []language.Tag, resIDs []string) iter.Seq[Bundle] {
	locales = r.locales(locales)
	return func(yield func(Bundle) bool) {
		for _, locale := range locales {
			if !r.yieldForLangSync(locale, resIDs, yield) {
				return
			}
		}
	}
}

// GenerateBundlesForLangSync is GenerateBundlesSync over a single locale.
func (r *Registry) GenerateBundlesForLangSync(locale language.Tag, resIDs []string) iter.Seq[Bundle] {
	return func(yield func(Bundle) bool) {
		r.yieldForLangSync(locale, resIDs, yield)
	}
}

func (r *Registry) yieldForLangSync(locale language.Tag, resIDs []string, yield func(Bundle) bool) bool {
	snap := r.Lock()
	defer snap.Release()
	s := solver.NewSerial(len(resIDs), snap.Len())
	tester := &syncTester{snap: snap, locale: locale, resIDs: resIDs}
	emitted := false
	for {
		order := s.Next(tester)
		if order == nil {
			break
		}
		b, ok := r.bundleFromOrder(snap, locale, order, resIDs)
		if !ok {
			continue
		}
		emitted = true
		if !yield(b) {
			return false
		}
	}
	if !emitted {
		r.reportMissing(locale, resIDs, s.MissingResources())
	}
	return true
}

// syncTester answers solver cell queries by synchronously fetching the cell
// through the snapshot. Every answer lands in the source cache, so the
// later bundle assembly is a pure cache hit.
type syncTester struct {
	snap   *Snapshot
	locale language.Tag
	resIDs []string
}

var _ solver.SyncTester = (*syncTester)(nil)

func (t *syncTester) TestSync(resIdx, sourceIdx int) bool {
	return t.snap.Source(sourceIdx).FetchSync(t.locale, t.resIDs[resIdx]) != nil
}

// asyncTester answers a batched solver query by fanning the per-cell
// fetches out concurrently and collecting the answers in cell order.
type asyncTester struct {
	snap   *Snapshot
	locale language.Tag
	resIDs []string
}

var _ solver.AsyncTester = (*asyncTester)(nil)

func (t *asyncTester) TestCells(ctx context.Context, cells []solver.Cell) ([]bool, error) {
	results := make([]bool, len(cells))
	g, ctx := errgroup.WithContext(ctx)
	for i, cell := range cells {
		g.Go(func() error {
			res, err := t.snap.Source(cell.Source).Fetch(ctx, t.locale, t.resIDs[cell.Res])
			if err != nil {
				return err
			}
			results[i] = res != nil
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// bundleFromOrder reifies a candidate into a bundle. Every selected cell is
// already cached by the solve, so the fetches here never touch the fetcher.
func (r *Registry) bundleFromOrder(snap *Snapshot, locale language.Tag, order []int, resIDs []string) (Bundle, bool) {
	b := r.factoryFn()(locale)
	if adapt := r.adaptFn(); adapt != nil {
		adapt(b)
	}
	for resIdx, sourceIdx := range order {
		res := snap.Source(sourceIdx).FetchSync(locale, resIDs[resIdx])
		if res == nil {
			return nil, false
		}
		if errs := b.AddResource(res); len(errs) > 0 {
			wrapped := make([]error, len(errs))
			for i, err := range errs {
				wrapped[i] = &reporter.BundleError{Path: resIDs[resIdx], Err: err}
			}
			r.handler.Report(wrapped...)
		}
	}
	return b, true
}

func (r *Registry) reportMissing(locale language.Tag, resIDs []string, rows []int) {
	if len(rows) == 0 {
		return
	}
	errs := make([]error, len(rows))
	for i, row := range rows {
		errs[i] = &reporter.MissingResourceError{Locale: locale, ResID: resIDs[row]}
	}
	r.handler.Report(errs...)
}

// BundleStream is the asynchronous counterpart of GenerateBundlesSync. It
// yields the same bundles in the same order, but each candidate's
// unresolved fetches are issued concurrently in one batch.
//
//	stream := reg.GenerateBundles(locales, resIDs)
//	defer stream.Close()
//	for stream.Scan(ctx) {
//	    use(stream.Bundle())
//	}
//	if err := stream.Err(); err != nil { ... }
type BundleStream struct {
	reg     *Registry
	locales []language.Tag
	resIDs  []string

	next    int
	locale  language.Tag
	snap    *Snapshot
	solv    *solver.Parallel
	emitted bool

	bundle Bundle
	err    error
	done   bool
}

// GenerateBundles returns a stream of bundles over the locale chain. A nil
// locales slice uses the registry's LocalesProvider.
func (r *Registry) GenerateBundles(locales []language.Tag, resIDs []string) *BundleStream {
	return &BundleStream{
		reg:     r,
		locales: r.locales(locales),
		resIDs:  resIDs,
	}
}

// GenerateBundlesForLang is GenerateBundles over a single locale.
func (r *Registry) GenerateBundlesForLang(locale language.Tag, resIDs []string) *BundleStream {
	return r.GenerateBundles([]language.Tag{locale}, resIDs)
}

// Scan advances the stream to the next bundle. It returns false when the
// locale chain is exhausted, ctx is done, or Close was called; check Err
// afterwards.
func (s *BundleStream) Scan(ctx context.Context) bool {
	s.bundle = nil
	if s.done || s.err != nil {
		return false
	}
	for {
		if s.solv == nil {
			if s.next >= len(s.locales) {
				s.finish()
				return false
			}
			s.locale = s.locales[s.next]
			s.next++
			s.snap = s.reg.Lock()
			s.solv = solver.NewParallel(len(s.resIDs), s.snap.Len())
			s.emitted = false
		}
		tester := &asyncTester{snap: s.snap, locale: s.locale, resIDs: s.resIDs}
		order, err := s.solv.Next(ctx, tester)
		if err != nil {
			s.err = err
			s.finish()
			return false
		}
		if order == nil {
			if !s.emitted {
				s.reg.reportMissing(s.locale, s.resIDs, s.solv.MissingResources())
			}
			s.endLocale()
			continue
		}
		b, ok := s.reg.bundleFromOrder(s.snap, s.locale, order, s.resIDs)
		if !ok {
			continue
		}
		s.emitted = true
		s.bundle = b
		return true
	}
}

// Bundle returns the bundle produced by the last successful Scan.
func (s *BundleStream) Bundle() Bundle {
	return s.bundle
}

// Err returns the first error encountered by Scan. The only possible error
// is the context's; resolution failures never abort a stream.
func (s *BundleStream) Err() error {
	return s.err
}

// Close releases the stream's snapshot and stops further emissions. It is
// safe to call multiple times and after exhaustion.
func (s *BundleStream) Close() {
	s.finish()
}

// Prefetch primes the cache for the first locale by issuing the async
// fetches for the highest-priority viable source of each resource. It is an
// optimization only; the stream behaves identically without it.
func (s *BundleStream) Prefetch(ctx context.Context) {
	if len(s.locales) == 0 || s.done {
		return
	}
	locale := s.locales[0]
	snap := s.reg.Lock()
	defer snap.Release()
	var g errgroup.Group
	for _, resID := range s.resIDs {
		candidates := snap.FilterSourcesFor(locale, resID)
		if len(candidates) == 0 {
			continue
		}
		src := candidates[0]
		g.Go(func() error {
			_, err := src.Fetch(ctx, locale, resID)
			return err
		})
	}
	_ = g.Wait()
}

func (s *BundleStream) endLocale() {
	if s.snap != nil {
		s.snap.Release()
		s.snap = nil
	}
	s.solv = nil
}

func (s *BundleStream) finish() {
	s.endLocale()
	s.done = true
}
