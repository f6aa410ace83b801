// Package config loads source manifests. A manifest is a YAML document
// declaring the sources a deployment assembles its localization from:
//
//	sources:
//	  - name: toolkit
//	    locales: [en-US, pl]
//	    path: toolkit/{locale}
//	  - name: langpack-pl
//	    locales: [pl]
//	    path: langpack/{locale}
//	    index:
//	      - "branding/*.ftl"
//	      - "menu.ftl"
//
// Manifest order is registration order, so the last source listed has the
// highest priority.
package config

import (
	"fmt"
	"io"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/bufbuild/fallback/source"
)

// Manifest is a parsed source manifest.
type Manifest struct {
	Sources []Source `yaml:"sources"`
}

// Source describes one source to register.
type Source struct {
	Name        string   `yaml:"name"`
	Locales     []string `yaml:"locales"`
	Path        string   `yaml:"path"`
	Index       []string `yaml:"index,omitempty"`
	Parallelism int      `yaml:"parallelism,omitempty"`
}

// Parse unmarshals and validates a manifest.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Load reads and parses a manifest from r.
func Load(r io.Reader) (*Manifest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func (m *Manifest) validate() error {
	names := make(map[string]bool, len(m.Sources))
	for i, s := range m.Sources {
		if s.Name == "" {
			return fmt.Errorf("source #%d: name is required", i)
		}
		if names[s.Name] {
			return fmt.Errorf("source %q: duplicated name", s.Name)
		}
		names[s.Name] = true
		if len(s.Locales) == 0 {
			return fmt.Errorf("source %q: at least one locale is required", s.Name)
		}
		for _, l := range s.Locales {
			if _, err := language.Parse(l); err != nil {
				return fmt.Errorf("source %q: locale %q: %w", s.Name, l, err)
			}
		}
	}
	return nil
}

// Materialize turns the manifest into FileSources backed by the given
// fetcher and parser, in manifest order, ready to hand to
// Registry.RegisterSources. A nil parser defaults to source.RawParser.
func (m *Manifest) Materialize(fetcher source.Fetcher, parser source.Parser, opts ...source.Option) ([]*source.FileSource, error) {
	out := make([]*source.FileSource, 0, len(m.Sources))
	for _, def := range m.Sources {
		locales := make([]language.Tag, len(def.Locales))
		for i, l := range def.Locales {
			tag, err := language.Parse(l)
			if err != nil {
				return nil, fmt.Errorf("source %q: locale %q: %w", def.Name, l, err)
			}
			locales[i] = tag
		}
		sourceOpts := make([]source.Option, 0, len(opts)+2)
		sourceOpts = append(sourceOpts, opts...)
		if def.Index != nil {
			sourceOpts = append(sourceOpts, source.WithIndex(def.Index...))
		}
		if def.Parallelism > 0 {
			sourceOpts = append(sourceOpts, source.WithParallelism(def.Parallelism))
		}
		out = append(out, source.New(def.Name, locales, def.Path, fetcher, parser, sourceOpts...))
	}
	return out, nil
}
