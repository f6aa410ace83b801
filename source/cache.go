package source

import (
	"sync"

	"github.com/tidwall/btree"
)

// Presence is the answer to a HasFile query.
type Presence int

const (
	// Unknown means an asynchronous fetch is still in flight, or the path
	// has never been fetched.
	Unknown Presence = iota
	// Present means the fetch completed and the resource is cached.
	Present
	// Absent means the fetch completed and there was no file, or the source
	// cannot serve the combination at all.
	Absent
)

func (p Presence) String() string {
	switch p {
	case Present:
		return "present"
	case Absent:
		return "absent"
	default:
		return "unknown"
	}
}

type status int8

const (
	statusLoading status = iota
	statusMissing
	statusLoaded
)

// entry is one memoized fetch outcome. An entry starts as statusLoading and
// transitions exactly once to statusMissing or statusLoaded; terminals are
// never rewritten. The done channel is the shared promise: it is closed
// after the terminal state is stored, so a waiter that wakes always observes
// a terminal entry.
type entry struct {
	status status
	res    Resource

	// viaAsync records whether the in-flight load was started by an
	// asynchronous fetch. A synchronous fetch that finds such an entry is an
	// overload and performs an independent fetch instead of waiting.
	viaAsync bool

	done chan struct{}
}

var closedChan = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// cache maps resolved absolute paths to fetch outcomes. The btree keeps the
// paths ordered so diagnostics can walk them deterministically.
type cache struct {
	mu      sync.Mutex
	entries btree.Map[string, *entry]
}

// lookup returns the entry for path, or installs and returns a fresh
// loading entry. installed reports whether this call created the entry and
// therefore owns resolving it.
func (c *cache) lookup(path string, viaAsync bool) (e *entry, installed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries.Get(path); ok {
		return e, false
	}
	e = &entry{status: statusLoading, viaAsync: viaAsync, done: make(chan struct{})}
	c.entries.Set(path, e)
	return e, true
}

// resolve stores the terminal state for an installed loading entry and then
// signals its waiters. The terminal is visible in the cache before any
// waiter wakes.
func (c *cache) resolve(e *entry, res Resource) {
	c.mu.Lock()
	if res != nil {
		e.res = res
		e.status = statusLoaded
	} else {
		e.status = statusMissing
	}
	c.mu.Unlock()
	close(e.done)
}

// observe reads an entry's current state under the cache lock. An entry can
// only move loading -> terminal, so a decision made on an observation that
// is immediately stale can at worst duplicate work, never corrupt state.
func (c *cache) observe(e *entry) (st status, res Resource, viaAsync bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return e.status, e.res, e.viaAsync
}

// recordMissing memoizes a path as missing without any fetch, used when the
// source's index rules the resource out.
func (c *cache) recordMissing(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries.Get(path); !ok {
		c.entries.Set(path, &entry{status: statusMissing, done: closedChan})
	}
}

func (c *cache) presence(path string) Presence {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries.Get(path)
	if !ok {
		return Unknown
	}
	switch e.status {
	case statusLoaded:
		return Present
	case statusMissing:
		return Absent
	default:
		return Unknown
	}
}

// paths returns every cached path in lexicographic order.
func (c *cache) paths() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, c.entries.Len())
	c.entries.Scan(func(path string, _ *entry) bool {
		out = append(out, path)
		return true
	})
	return out
}
