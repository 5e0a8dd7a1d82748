// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sources loads the YAML table of target sites. Each entry names an
// authoritative publisher and carries the per-source settings the pipeline
// needs: fetch strategy, discovery endpoints, and validation overrides.
package sources

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/health-ingest/pkg/types"
)

// IndexPage is a category or listing page scraped for article links.
type IndexPage struct {
	// URL is the absolute listing page URL.
	URL string `yaml:"url"`

	// LinkSelector is the CSS selector for anchor elements pointing at
	// articles (e.g. "ul.article-list a").
	LinkSelector string `yaml:"link_selector"`
}

// Source describes one configured target site.
type Source struct {
	// Name is the unique short identifier (e.g. "cdc-infant-feeding").
	Name string `yaml:"name"`

	// Organization is the publisher name used in provenance and citations
	// (e.g. "CDC").
	Organization string `yaml:"organization"`

	// Strategy selects static or rendered fetching for this site. Empty
	// falls back to the pipeline default.
	Strategy types.FetchStrategy `yaml:"strategy,omitempty"`

	// AcceptLanguage optionally overrides the Accept-Language header.
	AcceptLanguage string `yaml:"accept_language,omitempty"`

	// ViewportWidth and ViewportHeight override the rendered viewport.
	ViewportWidth  int `yaml:"viewport_width,omitempty"`
	ViewportHeight int `yaml:"viewport_height,omitempty"`

	// Region and AgeRange scope the articles this source yields.
	Region   string `yaml:"region,omitempty"`
	AgeRange string `yaml:"age_range,omitempty"`

	// Category is the default keyword attached to ingested articles when the
	// discovery page supplies none.
	Category string `yaml:"category,omitempty"`

	// Validation overrides the pipeline's quality thresholds for this
	// source. Zero fields inherit the defaults.
	Validation *types.ValidationConfig `yaml:"validation,omitempty"`

	// Feeds lists RSS/Atom feed URLs for candidate discovery.
	Feeds []string `yaml:"feeds,omitempty"`

	// IndexPages lists listing pages scraped for candidate links.
	IndexPages []IndexPage `yaml:"index_pages,omitempty"`
}

// FetchConfig merges this source's overrides over the pipeline defaults.
func (s Source) FetchConfig(base types.FetchConfig) types.FetchConfig {
	if s.Strategy != "" {
		base.Strategy = s.Strategy
	}
	if s.AcceptLanguage != "" {
		base.AcceptLanguage = s.AcceptLanguage
	}
	if s.ViewportWidth > 0 {
		base.ViewportWidth = s.ViewportWidth
	}
	if s.ViewportHeight > 0 {
		base.ViewportHeight = s.ViewportHeight
	}
	return base
}

// ValidationConfig merges this source's threshold overrides over the
// pipeline defaults.
func (s Source) ValidationConfig(base types.ValidationConfig) types.ValidationConfig {
	base = base.Defaulted()
	if s.Validation == nil {
		return base
	}
	if s.Validation.MinContentLength > 0 {
		base.MinContentLength = s.Validation.MinContentLength
	}
	if s.Validation.MaxContentLength > 0 {
		base.MaxContentLength = s.Validation.MaxContentLength
	}
	if s.Validation.MinParagraphs > 0 {
		base.MinParagraphs = s.Validation.MinParagraphs
	}
	return base
}

// Table is the parsed source table.
type Table struct {
	Sources []Source `yaml:"sources"`
}

// Load reads and validates a source table from a YAML file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading source table: %w", err)
	}
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing source table %s: %w", path, err)
	}
	if err := t.validate(); err != nil {
		return nil, fmt.Errorf("source table %s: %w", path, err)
	}
	return &t, nil
}

func (t *Table) validate() error {
	seen := make(map[string]bool, len(t.Sources))
	for i, s := range t.Sources {
		if s.Name == "" {
			return fmt.Errorf("source %d: missing name", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate source name %q", s.Name)
		}
		seen[s.Name] = true
		if s.Organization == "" {
			return fmt.Errorf("source %q: missing organization", s.Name)
		}
		switch s.Strategy {
		case "", types.StrategyStatic, types.StrategyRendered:
		default:
			return fmt.Errorf("source %q: unknown strategy %q", s.Name, s.Strategy)
		}
		for _, p := range s.IndexPages {
			if p.URL == "" || p.LinkSelector == "" {
				return fmt.Errorf("source %q: index page needs url and link_selector", s.Name)
			}
		}
	}
	return nil
}

// ByName returns the named source.
func (t *Table) ByName(name string) (Source, bool) {
	for _, s := range t.Sources {
		if s.Name == name {
			return s, true
		}
	}
	return Source{}, false
}

// Names returns the source names in table order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Sources))
	for i, s := range t.Sources {
		names[i] = s.Name
	}
	return names
}
