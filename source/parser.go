package source

// Resource is a parsed localization resource. The resolution core never
// inspects it: the configured Parser produces it, the FileSource cache
// retains it, and every bundle that selects it receives the same shared
// value.
type Resource any

// Parser converts fetched file bytes into a Resource. A parser that
// encounters syntax problems should still return the partially parsed
// resource along with the errors; the FileSource retains the resource and
// forwards the errors to its reporter. Returning a nil resource marks the
// file as missing.
type Parser interface {
	Parse(path string, data []byte) (Resource, []error)
}

// ParserFunc adapts a function to the Parser interface.
type ParserFunc func(path string, data []byte) (Resource, []error)

var _ Parser = ParserFunc(nil)

func (f ParserFunc) Parse(path string, data []byte) (Resource, []error) {
	return f(path, data)
}

// RawResource is the resource type produced by RawParser: the fetched bytes
// with no interpretation applied.
type RawResource struct {
	Path string
	Data []byte
}

// RawParser retains file bytes verbatim. It is the default parser for hosts
// that format messages elsewhere and only need the fallback resolution.
type RawParser struct{}

var _ Parser = RawParser{}

func (RawParser) Parse(path string, data []byte) (Resource, []error) {
	return &RawResource{Path: path, Data: data}, nil
}
