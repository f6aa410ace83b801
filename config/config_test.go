package config_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/bufbuild/fallback"
	"github.com/bufbuild/fallback/config"
	"github.com/bufbuild/fallback/internal/testutil"
)

const manifest = `
sources:
  - name: toolkit
    locales: [en-US, pl]
    path: toolkit/{locale}
  - name: langpack-pl
    locales: [pl]
    path: langpack/{locale}
    index:
      - "menu.ftl"
      - "branding/*.ftl"
    parallelism: 2
`

func TestParse(t *testing.T) {
	m, err := config.Parse([]byte(manifest))
	require.NoError(t, err)
	require.Len(t, m.Sources, 2)
	assert.Equal(t, "toolkit", m.Sources[0].Name)
	assert.Equal(t, []string{"en-US", "pl"}, m.Sources[0].Locales)
	assert.Equal(t, "toolkit/{locale}", m.Sources[0].Path)
	assert.Nil(t, m.Sources[0].Index)
	assert.Equal(t, []string{"menu.ftl", "branding/*.ftl"}, m.Sources[1].Index)
	assert.Equal(t, 2, m.Sources[1].Parallelism)
}

func TestLoad(t *testing.T) {
	m, err := config.Load(strings.NewReader(manifest))
	require.NoError(t, err)
	assert.Len(t, m.Sources, 2)
}

func TestParseRejectsBadManifests(t *testing.T) {
	cases := map[string]string{
		"not yaml":        `sources: [`,
		"missing name":    "sources:\n  - locales: [en-US]\n    path: a/{locale}",
		"duplicated name": "sources:\n  - name: a\n    locales: [en-US]\n    path: a\n  - name: a\n    locales: [en-US]\n    path: b",
		"no locales":      "sources:\n  - name: a\n    path: a/{locale}",
		"bad locale":      "sources:\n  - name: a\n    locales: [\"not a locale!\"]\n    path: a",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Parse([]byte(doc))
			require.Error(t, err)
		})
	}
}

func TestMaterializeAndGenerate(t *testing.T) {
	pl := language.MustParse("pl")
	fetcher := testutil.NewMapFetcher(map[string]string{
		"toolkit/pl/menu.ftl":  "menu = Menu",
		"langpack/pl/menu.ftl": "menu = Menu PL",
	})

	m, err := config.Parse([]byte(manifest))
	require.NoError(t, err)
	srcs, err := m.Materialize(fetcher, nil)
	require.NoError(t, err)
	require.Len(t, srcs, 2)
	assert.Equal(t, "toolkit", srcs[0].Name())
	assert.True(t, srcs[0].Supports(pl))

	reg := fallback.NewRegistry(nil)
	require.NoError(t, reg.RegisterSources(srcs...))

	count := 0
	for range reg.GenerateBundlesForLangSync(pl, []string{"menu.ftl"}) {
		count++
	}
	assert.Equal(t, 2, count, "both sources carry menu.ftl for pl")
}

func TestMaterializeWiresIndex(t *testing.T) {
	fetcher := testutil.NewMapFetcher(nil)
	m, err := config.Parse([]byte(manifest))
	require.NoError(t, err)
	srcs, err := m.Materialize(fetcher, nil)
	require.NoError(t, err)

	pl := language.MustParse("pl")
	langpack := srcs[1]
	require.Nil(t, langpack.FetchSync(pl, "not-in-index.ftl"))
	assert.Zero(t, fetcher.TotalFetches(), "ids outside the manifest index must not be probed")
}
