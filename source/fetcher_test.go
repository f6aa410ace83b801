package source_test

import (
	"context"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/bufbuild/fallback/source"
)

func TestFSFetcher(t *testing.T) {
	fsys := fstest.MapFS{
		"toolkit/en-US/menu.ftl": &fstest.MapFile{Data: []byte("menu = Menu")},
	}
	fetcher := &source.FSFetcher{FS: fsys}

	data, err := fetcher.FetchSync("toolkit/en-US/menu.ftl")
	require.NoError(t, err)
	assert.Equal(t, "menu = Menu", string(data))

	_, err = fetcher.FetchSync("toolkit/en-US/missing.ftl")
	require.ErrorIs(t, err, fs.ErrNotExist)

	data, err = fetcher.Fetch(context.Background(), "toolkit/en-US/menu.ftl")
	require.NoError(t, err)
	assert.Equal(t, "menu = Menu", string(data))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = fetcher.Fetch(ctx, "toolkit/en-US/menu.ftl")
	require.ErrorIs(t, err, context.Canceled)
}

func TestFileSourceOverFS(t *testing.T) {
	fsys := fstest.MapFS{
		"browser/en-US/menu.ftl": &fstest.MapFile{Data: []byte("menu = Menu")},
	}
	src := source.New("browser", []language.Tag{language.MustParse("en-US")},
		"browser/{locale}", &source.FSFetcher{FS: fsys}, nil)

	res := src.FetchSync(language.MustParse("en-US"), "menu.ftl")
	require.NotNil(t, res)
	assert.Equal(t, "menu = Menu", string(res.(*source.RawResource).Data))
}
