package fallback

import (
	"sync"

	"golang.org/x/text/language"

	"github.com/bufbuild/fallback/reporter"
	"github.com/bufbuild/fallback/source"
)

// Registry owns an ordered sequence of sources and drives bundle generation
// over them. Registration order defines priority: the most recently
// registered source wins ties, so a langpack registered after the packaged
// content overrides it.
//
// The registry is mutated through explicit register/update/remove
// operations; mutation fails with reporter.ErrRegistryLocked while any
// snapshot is outstanding. Generation holds a snapshot per locale solve, so
// sources keep stable indices for the duration of a solve.
type Registry struct {
	provider LocalesProvider
	handler  *reporter.Handler
	factory  BundleFactory

	mu      sync.Mutex
	sources []*source.FileSource
	adapt   func(Bundle)
	locks   int
}

// NewRegistry creates a Registry. The provider supplies the default locale
// chain and may be nil if callers always pass locales explicitly.
func NewRegistry(provider LocalesProvider) *Registry {
	return &Registry{
		provider: provider,
		handler:  reporter.NewHandler(nil),
		factory: func(locale language.Tag) Bundle {
			return NewBasicBundle(locale)
		},
	}
}

// SetReporter installs the reporter receiving missing-resource and bundle
// composition errors from this registry's solves. It is also installed on
// every currently registered source for parse errors.
func (r *Registry) SetReporter(rep reporter.Reporter) {
	r.handler.SetReporter(rep)
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sources {
		s.SetReporter(rep)
	}
}

// SetBundleFactory replaces the factory used to create fresh bundles. The
// default produces *BasicBundle values.
func (r *Registry) SetBundleFactory(f BundleFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factory = f
}

// SetAdaptBundle installs a hook invoked on every freshly created bundle
// before resources are added, for injecting format functions and options.
func (r *Registry) SetAdaptBundle(fn func(Bundle)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapt = fn
}

// RegisterSources appends sources. It fails with a DuplicatedSourceError if
// any name collides with an existing source, and with ErrRegistryLocked if
// a snapshot is outstanding. On failure nothing is registered.
func (r *Registry) RegisterSources(srcs ...*source.FileSource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.locks > 0 {
		return reporter.ErrRegistryLocked
	}
	seen := make(map[string]bool, len(r.sources)+len(srcs))
	for _, s := range r.sources {
		seen[s.Name()] = true
	}
	for _, s := range srcs {
		if seen[s.Name()] {
			return &reporter.DuplicatedSourceError{Name: s.Name()}
		}
		seen[s.Name()] = true
	}
	next := make([]*source.FileSource, 0, len(r.sources)+len(srcs))
	next = append(next, r.sources...)
	next = append(next, srcs...)
	r.sources = next
	return nil
}

// UpdateSources replaces sources in place by name, preserving priority
// order. It fails with a MissingSourceError if a supplied source is not
// registered, and with ErrRegistryLocked if a snapshot is outstanding. On
// failure nothing is replaced.
func (r *Registry) UpdateSources(srcs ...*source.FileSource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.locks > 0 {
		return reporter.ErrRegistryLocked
	}
	pos := make(map[string]int, len(r.sources))
	for i, s := range r.sources {
		pos[s.Name()] = i
	}
	next := make([]*source.FileSource, len(r.sources))
	copy(next, r.sources)
	for _, s := range srcs {
		i, ok := pos[s.Name()]
		if !ok {
			return &reporter.MissingSourceError{Name: s.Name()}
		}
		next[i] = s
	}
	r.sources = next
	return nil
}

// RemoveSources drops sources by name; unknown names are ignored. It fails
// with ErrRegistryLocked if a snapshot is outstanding.
func (r *Registry) RemoveSources(names ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.locks > 0 {
		return reporter.ErrRegistryLocked
	}
	drop := make(map[string]bool, len(names))
	for _, name := range names {
		drop[name] = true
	}
	next := r.sources[:0:0]
	for _, s := range r.sources {
		if !drop[s.Name()] {
			next = append(next, s)
		}
	}
	r.sources = next
	return nil
}

// ClearSources drops every source. It fails with ErrRegistryLocked if a
// snapshot is outstanding.
func (r *Registry) ClearSources() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.locks > 0 {
		return reporter.ErrRegistryLocked
	}
	r.sources = nil
	return nil
}

// HasSource reports whether a source with the given name is registered.
func (r *Registry) HasSource(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sources {
		if s.Name() == name {
			return true
		}
	}
	return false
}

// AvailableLocales returns the union of the registered sources' locales, in
// first-seen order across registration order.
func (r *Registry) AvailableLocales() []language.Tag {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []language.Tag
	seen := make(map[language.Tag]bool)
	for _, s := range r.sources {
		for _, l := range s.Locales() {
			if !seen[l] {
				seen[l] = true
				out = append(out, l)
			}
		}
	}
	return out
}

// Lock returns a read-only view of the current sources, valid until
// released. Mutation operations fail while any snapshot is outstanding;
// multiple snapshots may be held at once.
func (r *Registry) Lock() *Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locks++
	return &Snapshot{reg: r, sources: r.sources}
}

func (r *Registry) unlock() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locks--
}

func (r *Registry) adaptFn() func(Bundle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.adapt
}

func (r *Registry) factoryFn() BundleFactory {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.factory
}

func (r *Registry) locales(explicit []language.Tag) []language.Tag {
	if explicit != nil || r.provider == nil {
		return explicit
	}
	return r.provider.Locales()
}

// Snapshot is a locked view of the registry's sources for one solve.
// Indices are in solver order: index 0 is the highest-priority (most
// recently registered) source.
type Snapshot struct {
	reg     *Registry
	sources []*source.FileSource

	once sync.Once
}

// Len returns the number of sources in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.sources)
}

// Source returns the source at the given solver index: 0 is the most
// recently registered source, Len()-1 the first registered.
func (s *Snapshot) Source(i int) *source.FileSource {
	return s.sources[len(s.sources)-1-i]
}

// FindByName returns the named source, or nil.
func (s *Snapshot) FindByName(name string) *source.FileSource {
	for _, src := range s.sources {
		if src.Name() == name {
			return src
		}
	}
	return nil
}

// FilterSourcesFor returns, in solver order, every source that is not known
// to be unable to supply the resource for the locale: the locale is
// supported and the path is not already recorded missing. It performs no
// I/O.
func (s *Snapshot) FilterSourcesFor(locale language.Tag, resID string) []*source.FileSource {
	var out []*source.FileSource
	for i := range s.sources {
		src := s.Source(i)
		if src.HasFile(locale, resID) != source.Absent {
			out = append(out, src)
		}
	}
	return out
}

// Release ends the snapshot, allowing registry mutation again once every
// outstanding snapshot is released. Release is idempotent.
func (s *Snapshot) Release() {
	s.once.Do(s.reg.unlock)
}
