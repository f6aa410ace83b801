package source

import (
	"context"
	"io/fs"
)

// Fetcher retrieves raw file bytes for a resolved path. This is how a
// FileSource loads the files it serves; it is the only required capability a
// host must supply. The FileSource never interprets a fetch error beyond
// treating it as file-not-found for fallback purposes.
type Fetcher interface {
	// FetchSync retrieves the bytes at path, blocking the caller.
	FetchSync(path string) ([]byte, error)
	// Fetch retrieves the bytes at path. It may be called concurrently for
	// distinct paths; the FileSource guarantees at most one in-flight Fetch
	// per path.
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// FSFetcher is a Fetcher reading from an fs.FS, typically os.DirFS rooted at
// the directory holding the localization trees.
type FSFetcher struct {
	FS fs.FS
}

var _ Fetcher = (*FSFetcher)(nil)

func (f *FSFetcher) FetchSync(path string) ([]byte, error) {
	return fs.ReadFile(f.FS, path)
}

func (f *FSFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fs.ReadFile(f.FS, path)
}
