package reporter

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"
)

// ErrRegistryLocked is returned by registry mutation operations while a
// snapshot is outstanding. It, DuplicatedSourceError and MissingSourceError
// are returned directly to the caller of a mutation operation; everything
// else flows through a Reporter.
var ErrRegistryLocked = errors.New("registry is locked by an outstanding snapshot")

// DuplicatedSourceError is returned when registering a source whose name
// collides with one already registered.
type DuplicatedSourceError struct {
	Name string
}

func (e *DuplicatedSourceError) Error() string {
	return fmt.Sprintf("duplicated source: %q", e.Name)
}

// MissingSourceError is returned when updating a source that has not been
// registered.
type MissingSourceError struct {
	Name string
}

func (e *MissingSourceError) Error() string {
	return fmt.Sprintf("missing source: %q", e.Name)
}

// MissingResourceError reports that no source could supply the resource for
// the given locale. It is delivered to the Reporter, never returned.
type MissingResourceError struct {
	Locale language.Tag
	ResID  string
}

func (e *MissingResourceError) Error() string {
	return fmt.Sprintf("missing resource %q for locale %s", e.ResID, e.Locale)
}

// ParseError reports that a fetched file did not parse cleanly. The
// partially parsed resource is still used; fallback is not triggered by
// parse errors, only by file-missing.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// BundleError reports a failure to add a resource to a bundle, such as a
// duplicate message id across resources. The bundle is still yielded with
// whatever merged successfully.
type BundleError struct {
	Path string
	Err  error
}

func (e *BundleError) Error() string {
	return fmt.Sprintf("error adding %s to bundle: %v", e.Path, e.Err)
}

func (e *BundleError) Unwrap() error {
	return e.Err
}
