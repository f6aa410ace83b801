// Package reporter contains the types used for reporting errors that occur
// while resolving localization resources. Nothing in the resolution path
// aborts on error; parse problems, missing resources, and bundle composition
// failures are delivered side-channel to whatever Reporter the host
// installed, and the search continues.
package reporter

import "sync"

// Reporter receives errors encountered during a resolution. Implementations
// must not panic; the registry calls ReportErrors from the goroutine that
// encountered the errors, possibly concurrently.
type Reporter interface {
	ReportErrors(errs []error)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(errs []error)

var _ Reporter = ReporterFunc(nil)

func (f ReporterFunc) ReportErrors(errs []error) {
	f(errs)
}

// Handler delivers errors to a Reporter. A nil *Handler or a Handler with no
// reporter discards everything, so call sites never need a nil check.
type Handler struct {
	mu       sync.Mutex
	reporter Reporter
}

// NewHandler creates a new Handler that forwards to the given reporter,
// which may be nil.
func NewHandler(rep Reporter) *Handler {
	return &Handler{reporter: rep}
}

// SetReporter replaces the handler's reporter.
func (h *Handler) SetReporter(rep Reporter) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reporter = rep
}

// Report delivers the given errors to the configured reporter. Calls with no
// errors are dropped.
func (h *Handler) Report(errs ...error) {
	if h == nil || len(errs) == 0 {
		return
	}
	h.mu.Lock()
	rep := h.reporter
	h.mu.Unlock()
	if rep == nil {
		return
	}
	rep.ReportErrors(errs)
}
