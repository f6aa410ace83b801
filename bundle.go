package fallback

import (
	"golang.org/x/text/language"

	"github.com/bufbuild/fallback/source"
)

// Resource is a parsed localization resource, shared between the source
// caches and every bundle that selects it.
type Resource = source.Resource

// Bundle holds the resources chosen by one valid assignment. The registry
// creates bundles through the configured BundleFactory, runs the adapt hook,
// then adds the selected resources in resource order. Errors returned from
// AddResource (such as duplicate message ids across resources) are forwarded
// to the reporter; the bundle is still yielded with whatever merged
// successfully.
type Bundle interface {
	AddResource(res Resource) []error
}

// BundleFactory creates an empty bundle for a locale.
type BundleFactory func(locale language.Tag) Bundle

// LocalesProvider supplies the default locale fallback chain used when a
// caller does not pass one.
type LocalesProvider interface {
	Locales() []language.Tag
}

// LocalesProviderFunc adapts a function to the LocalesProvider interface.
type LocalesProviderFunc func() []language.Tag

var _ LocalesProvider = LocalesProviderFunc(nil)

func (f LocalesProviderFunc) Locales() []language.Tag {
	return f()
}

// BasicBundle is the default bundle implementation: it records the locale
// and the selected resources in order and never rejects a resource. Hosts
// with a real message-formatting bundle install their own BundleFactory.
type BasicBundle struct {
	Locale    language.Tag
	Resources []Resource
}

var _ Bundle = (*BasicBundle)(nil)

// NewBasicBundle creates an empty BasicBundle for the locale.
func NewBasicBundle(locale language.Tag) *BasicBundle {
	return &BasicBundle{Locale: locale}
}

func (b *BasicBundle) AddResource(res Resource) []error {
	b.Resources = append(b.Resources, res)
	return nil
}
