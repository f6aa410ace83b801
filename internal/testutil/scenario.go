package testutil

import (
	"golang.org/x/text/language"

	"github.com/bufbuild/fallback"
	"github.com/bufbuild/fallback/source"
)

// SourceDef describes one scenario source: its name, supported locales,
// and path template.
type SourceDef struct {
	Name    string
	Locales []string
	Path    string
}

// Scenario is a fixed resolution problem with a known expected candidate
// sequence. Sources are listed in solver order (index 0 is the
// highest-priority source); Registry registers them in reverse so that registration
// order produces that priority.
type Scenario struct {
	Name    string
	Files   []string
	Sources []SourceDef
	ResIDs  []string
	// Solutions is the expected candidate sequence, or nil when a scenario
	// is only used for load generation.
	Solutions [][]int
}

// EnUS is the locale every scenario resolves against.
var EnUS = language.MustParse("en-US")

// Fetcher returns a fresh instrumented fetcher serving the scenario's
// files.
func (sc *Scenario) Fetcher() *MapFetcher {
	return NewMapFetcherFromList(sc.Files)
}

// FileSources materializes the scenario's sources, in solver order, all
// backed by the given fetcher.
func (sc *Scenario) FileSources(fetcher source.Fetcher) []*source.FileSource {
	out := make([]*source.FileSource, len(sc.Sources))
	for i, def := range sc.Sources {
		locales := make([]language.Tag, len(def.Locales))
		for j, l := range def.Locales {
			locales[j] = language.MustParse(l)
		}
		out[i] = source.New(def.Name, locales, def.Path, fetcher, nil)
	}
	return out
}

// Registry builds a registry whose snapshot priority order matches the
// scenario's solver order.
func (sc *Scenario) Registry(fetcher source.Fetcher) *fallback.Registry {
	srcs := sc.FileSources(fetcher)
	reg := fallback.NewRegistry(nil)
	for i := len(srcs) - 1; i >= 0; i-- {
		if err := reg.RegisterSources(srcs[i]); err != nil {
			panic(err)
		}
	}
	return reg
}

// Matrix returns the scenario's presence matrix in solver order:
// matrix[resIdx][sourceIdx] is true iff the source has the resource's file.
func (sc *Scenario) Matrix() [][]bool {
	files := make(map[string]bool, len(sc.Files))
	for _, f := range sc.Files {
		files[f] = true
	}
	matrix := make([][]bool, len(sc.ResIDs))
	for r, resID := range sc.ResIDs {
		matrix[r] = make([]bool, len(sc.Sources))
		for s, def := range sc.Sources {
			matrix[r][s] = files[def.Path+"/"+resID]
		}
	}
	return matrix
}

// Scenarios returns the scenario table. The first six encode the canonical
// solver behaviors: tie-breaking, full enumeration, partial sources, dead
// searches, and late-discovered misses; "preferences" is a realistic
// browser-sized problem with exactly one valid assignment.
func Scenarios() []*Scenario {
	return []*Scenario{
		{
			Name: "one-res-two-sources",
			Files: []string{
				"browser/browser/main.ftl",
				"toolkit/browser/main.ftl",
			},
			Sources: []SourceDef{
				{"browser", []string{"en-US"}, "browser"},
				{"toolkit", []string{"en-US"}, "toolkit"},
			},
			ResIDs:    []string{"browser/main.ftl"},
			Solutions: [][]int{{0}, {1}},
		},
		{
			Name: "small",
			Files: []string{
				"browser/branding/brand.ftl",
				"browser/menu.ftl",
				"browser/shared.ftl",
				"toolkit/branding/brand.ftl",
				"toolkit/menu.ftl",
				"toolkit/shared.ftl",
			},
			Sources: []SourceDef{
				{"browser", []string{"en-US"}, "browser"},
				{"toolkit", []string{"en-US"}, "toolkit"},
			},
			ResIDs: []string{"branding/brand.ftl", "menu.ftl", "shared.ftl"},
			Solutions: [][]int{
				{0, 0, 0},
				{0, 0, 1},
				{0, 1, 0},
				{0, 1, 1},
				{1, 0, 0},
				{1, 0, 1},
				{1, 1, 0},
				{1, 1, 1},
			},
		},
		{
			Name: "incomplete",
			Files: []string{
				"browser/branding/brand.ftl",
				"browser/shared.ftl",
				"toolkit/menu.ftl",
				"toolkit/shared.ftl",
			},
			Sources: []SourceDef{
				{"browser", []string{"en-US"}, "browser"},
				{"toolkit", []string{"en-US"}, "toolkit"},
			},
			ResIDs:    []string{"branding/brand.ftl", "menu.ftl", "shared.ftl"},
			Solutions: [][]int{{0, 1, 0}, {0, 1, 1}},
		},
		{
			Name: "dead",
			Files: []string{
				"browser/menu.ftl",
				"toolkit/menu.ftl",
			},
			Sources: []SourceDef{
				{"browser", []string{"en-US"}, "browser"},
				{"toolkit", []string{"en-US"}, "toolkit"},
			},
			ResIDs:    []string{"branding/brand.ftl", "menu.ftl"},
			Solutions: [][]int{},
		},
		{
			Name: "tie-break",
			Files: []string{
				"langpack/main.ftl",
				"browser/main.ftl",
				"toolkit/main.ftl",
			},
			Sources: []SourceDef{
				{"langpack", []string{"en-US"}, "langpack"},
				{"browser", []string{"en-US"}, "browser"},
				{"toolkit", []string{"en-US"}, "toolkit"},
			},
			ResIDs:    []string{"main.ftl"},
			Solutions: [][]int{{0}, {1}, {2}},
		},
		{
			Name: "late-miss",
			Files: []string{
				"browser/branding/brand.ftl",
				"browser/menu.ftl",
				"toolkit/branding/brand.ftl",
				"toolkit/menu.ftl",
				"toolkit/shared.ftl",
			},
			Sources: []SourceDef{
				{"browser", []string{"en-US"}, "browser"},
				{"toolkit", []string{"en-US"}, "toolkit"},
			},
			ResIDs: []string{"branding/brand.ftl", "menu.ftl", "shared.ftl"},
			Solutions: [][]int{
				{0, 0, 1},
				{0, 1, 1},
				{1, 0, 1},
				{1, 1, 1},
			},
		},
		{
			Name:  "preferences",
			Files: preferencesFiles(),
			Sources: []SourceDef{
				{"packaged-browser", []string{"en-US"}, "browser"},
				{"packaged-toolkit", []string{"en-US"}, "toolkit"},
			},
			ResIDs: preferencesResIDs(),
			Solutions: [][]int{
				{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1},
			},
		},
	}
}

func preferencesResIDs() []string {
	return []string{
		"branding/brand.ftl",
		"browser/branding/brandings.ftl",
		"browser/branding/sync-brand.ftl",
		"browser/preferences/preferences.ftl",
		"browser/preferences/fonts.ftl",
		"browser/featuregates/features.ftl",
		"browser/preferences/addEngine.ftl",
		"browser/preferences/blocklists.ftl",
		"browser/preferences/clearSiteData.ftl",
		"browser/preferences/colors.ftl",
		"browser/preferences/connection.ftl",
		"browser/preferences/languages.ftl",
		"browser/preferences/permissions.ftl",
		"browser/preferences/selectBookmark.ftl",
		"browser/aboutDialog.ftl",
		"browser/sanitize.ftl",
		"toolkit/updates/history.ftl",
		"security/certificates/deviceManager.ftl",
		"security/certificates/certManager.ftl",
	}
}

func preferencesFiles() []string {
	ids := preferencesResIDs()
	files := make([]string, 0, len(ids))
	for i, id := range ids {
		if i < 16 {
			files = append(files, "browser/"+id)
		} else {
			files = append(files, "toolkit/"+id)
		}
	}
	return files
}

// MatrixSyncTester answers solver queries straight from a presence matrix.
type MatrixSyncTester struct {
	Matrix [][]bool
	// Calls records every queried cell in order.
	Calls [][2]int
}

func (t *MatrixSyncTester) TestSync(resIdx, sourceIdx int) bool {
	t.Calls = append(t.Calls, [2]int{resIdx, sourceIdx})
	return t.Matrix[resIdx][sourceIdx]
}
