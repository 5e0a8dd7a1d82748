// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/health-ingest/pkg/types"
)

func writeTable(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing table: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeTable(t, `
sources:
  - name: cdc-infant-feeding
    organization: CDC
    strategy: static
    region: US
    category: infant-feeding
    feeds:
      - https://www.cdc.gov/feeds/infant-feeding.xml
    index_pages:
      - url: https://www.cdc.gov/infant-feeding/articles.html
        link_selector: "ul.article-list a"
  - name: nhs-start-for-life
    organization: NHS
    strategy: rendered
    region: UK
    viewport_width: 1366
    viewport_height: 900
    validation:
      min_content_length: 500
`)

	table, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(table.Sources) != 2 {
		t.Fatalf("len(Sources) = %d, want 2", len(table.Sources))
	}

	cdc, ok := table.ByName("cdc-infant-feeding")
	if !ok {
		t.Fatal("ByName(cdc-infant-feeding) not found")
	}
	if cdc.Organization != "CDC" || cdc.Strategy != types.StrategyStatic {
		t.Errorf("cdc source = %+v", cdc)
	}
	if len(cdc.Feeds) != 1 || len(cdc.IndexPages) != 1 {
		t.Errorf("cdc discovery endpoints = %+v", cdc)
	}

	if _, ok := table.ByName("missing"); ok {
		t.Error("ByName(missing) = ok, want not found")
	}
	if got := table.Names(); len(got) != 2 || got[0] != "cdc-infant-feeding" {
		t.Errorf("Names() = %v", got)
	}
}

func TestLoadRejectsInvalidTables(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing name",
			content: "sources:\n  - organization: CDC\n",
			wantErr: "missing name",
		},
		{
			name: "duplicate name",
			content: "sources:\n" +
				"  - name: cdc\n    organization: CDC\n" +
				"  - name: cdc\n    organization: CDC\n",
			wantErr: "duplicate source name",
		},
		{
			name:    "missing organization",
			content: "sources:\n  - name: cdc\n",
			wantErr: "missing organization",
		},
		{
			name:    "unknown strategy",
			content: "sources:\n  - name: cdc\n    organization: CDC\n    strategy: teleport\n",
			wantErr: "unknown strategy",
		},
		{
			name: "index page without selector",
			content: "sources:\n  - name: cdc\n    organization: CDC\n" +
				"    index_pages:\n      - url: https://example.org\n",
			wantErr: "link_selector",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeTable(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Load() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestFetchConfigMerge(t *testing.T) {
	base := types.FetchConfig{Strategy: types.StrategyStatic, ViewportWidth: 1280}

	src := Source{
		Strategy:       types.StrategyRendered,
		AcceptLanguage: "en-GB",
		ViewportHeight: 900,
	}
	got := src.FetchConfig(base)
	if got.Strategy != types.StrategyRendered {
		t.Errorf("Strategy = %s, want rendered", got.Strategy)
	}
	if got.AcceptLanguage != "en-GB" {
		t.Errorf("AcceptLanguage = %s", got.AcceptLanguage)
	}
	if got.ViewportWidth != 1280 || got.ViewportHeight != 900 {
		t.Errorf("viewport = %dx%d", got.ViewportWidth, got.ViewportHeight)
	}

	// No overrides keeps the base untouched.
	got = Source{}.FetchConfig(base)
	if got != base {
		t.Errorf("FetchConfig without overrides = %+v, want base", got)
	}
}

func TestValidationConfigMerge(t *testing.T) {
	src := Source{Validation: &types.ValidationConfig{MinContentLength: 500}}

	got := src.ValidationConfig(types.ValidationConfig{})
	if got.MinContentLength != 500 {
		t.Errorf("MinContentLength = %d, want 500", got.MinContentLength)
	}
	if got.MaxContentLength != 50000 || got.MinParagraphs != 3 {
		t.Errorf("unset fields not defaulted: %+v", got)
	}

	got = Source{}.ValidationConfig(types.ValidationConfig{})
	if got.MinContentLength != 300 {
		t.Errorf("defaults not applied: %+v", got)
	}
}
