// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"strings"
	"testing"
)

func TestExtractTitleChain(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "h1 wins",
			html: `<html><head><title>Site | Page</title></head><body><h1>Starting Solid Foods</h1></body></html>`,
			want: "Starting Solid Foods",
		},
		{
			name: "short h1 falls through to og:title",
			html: `<html><head><meta property="og:title" content="Vaccine Schedules Explained"><title>t</title></head><body><h1>FAQ</h1></body></html>`,
			want: "Vaccine Schedules Explained",
		},
		{
			name: "class-marked heading when no h1",
			html: `<html><body><div class="article-title">Infant Sleep Guidelines</div></body></html>`,
			want: "Infant Sleep Guidelines",
		},
		{
			name: "document title as last resort",
			html: `<html><head><title>Hand Washing Basics</title></head><body><p>text</p></body></html>`,
			want: "Hand Washing Basics",
		},
		{
			name: "no acceptable title",
			html: `<html><head><title>Hi</title></head><body></body></html>`,
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.html)
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if got.Title != tt.want {
				t.Errorf("Title = %q, want %q", got.Title, tt.want)
			}
		})
	}
}

// para builds a paragraph of exactly n characters.
func para(n int) string {
	return strings.Repeat("x", n)
}

func TestExtractParagraphLengthBounds(t *testing.T) {
	tests := []struct {
		name   string
		length int
		kept   bool
	}{
		{"below minimum", 29, false},
		{"at minimum", 30, true},
		{"at maximum", 2000, true},
		{"above maximum", 2001, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := fmt.Sprintf(`<html><body><article><p>%s</p></article></body></html>`, para(tt.length))
			got, err := Extract(html)
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if kept := got.ParagraphCount == 1; kept != tt.kept {
				t.Errorf("paragraph of length %d kept = %v, want %v", tt.length, kept, tt.kept)
			}
		})
	}
}

func TestExtractLinkDensity(t *testing.T) {
	// Ten words with three links: ratio 0.3 is at the cap and rejected.
	dense := `<p>` +
		`<a href="/a">one</a> <a href="/b">two</a> <a href="/c">three</a> ` +
		`four five six seven eight nine ten</p>`
	// Ten words with two links: ratio 0.2 passes.
	sparse := `<p>` +
		`<a href="/a">alpha</a> <a href="/b">bravo</a> ` +
		`charlie delta echo foxtrot golf hotel india juliet</p>`

	html := `<html><body><article>` + dense + sparse + `</article></body></html>`
	got, err := Extract(html)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got.ParagraphCount != 1 {
		t.Fatalf("ParagraphCount = %d, want 1 (link-dense block rejected)", got.ParagraphCount)
	}
	if !strings.Contains(got.Paragraphs[0], "charlie") {
		t.Errorf("kept paragraph = %q, want the sparse one", got.Paragraphs[0])
	}
}

func TestExtractDeduplicatesIdenticalBlocks(t *testing.T) {
	p := "<p>This exact sentence appears twice in the page body text.</p>"
	html := `<html><body><article>` + p + p + `</article></body></html>`

	got, err := Extract(html)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got.ParagraphCount != 1 {
		t.Errorf("ParagraphCount = %d, want 1 after dedup", got.ParagraphCount)
	}
}

func TestExtractRemovesNoiseRegions(t *testing.T) {
	html := `<html><body>
		<nav><p>Home About Contact and lots of other navigation words here</p></nav>
		<article><p>Wash hands with soap and water for at least twenty seconds.</p></article>
		<footer><p>Copyright notice and legal disclaimers repeated on every page</p></footer>
		<div class="sidebar"><p>Related articles you might also enjoy reading today</p></div>
	</body></html>`

	got, err := Extract(html)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got.ParagraphCount != 1 {
		t.Fatalf("ParagraphCount = %d, want 1, got %v", got.ParagraphCount, got.Paragraphs)
	}
	if !strings.Contains(got.Paragraphs[0], "Wash hands") {
		t.Errorf("paragraph = %q, want article content", got.Paragraphs[0])
	}
}

func TestExtractRegionSelection(t *testing.T) {
	t.Run("prefers article over generic content class", func(t *testing.T) {
		html := `<html><body>
			<article><p>` + para(120) + `</p></article>
			<div class="content"><p>` + para(120) + `y</p></div>
		</body></html>`
		got, err := Extract(html)
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}
		if got.SourceSelector != "article" {
			t.Errorf("SourceSelector = %q, want article", got.SourceSelector)
		}
	})

	t.Run("skips thin regions", func(t *testing.T) {
		// The article is below the 100-char region threshold; the div
		// with a content class qualifies.
		html := `<html><body>
			<article><p>too thin</p></article>
			<div class="post-content"><p>` + para(150) + `</p></div>
		</body></html>`
		got, err := Extract(html)
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}
		if got.SourceSelector != ".post-content" {
			t.Errorf("SourceSelector = %q, want .post-content", got.SourceSelector)
		}
	})

	t.Run("falls back to body", func(t *testing.T) {
		html := `<html><body><p>` + para(200) + `</p></body></html>`
		got, err := Extract(html)
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}
		if got.SourceSelector != "body" {
			t.Errorf("SourceSelector = %q, want body", got.SourceSelector)
		}
		if got.ParagraphCount != 1 {
			t.Errorf("ParagraphCount = %d, want 1", got.ParagraphCount)
		}
	})
}

func TestExtractDerivedMetrics(t *testing.T) {
	html := `<html><body><article>
		<p>one two three four five six seven eight nine ten eleven twelve</p>
		<p>alpha bravo charlie delta echo foxtrot golf hotel india juliet</p>
	</article></body></html>`

	got, err := Extract(html)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got.ParagraphCount != 2 {
		t.Fatalf("ParagraphCount = %d, want 2", got.ParagraphCount)
	}
	joined := strings.Join(got.Paragraphs, "\n\n")
	if got.ContentLength != len(joined) {
		t.Errorf("ContentLength = %d, want %d", got.ContentLength, len(joined))
	}
	if got.WordCount != 22 {
		t.Errorf("WordCount = %d, want 22", got.WordCount)
	}
	if got.Content() != joined {
		t.Errorf("Content() mismatch")
	}
	if got.BodyMarkdown == "" {
		t.Error("BodyMarkdown empty, want converted region")
	}
}

func TestExtractBoundaryBlocksProperty(t *testing.T) {
	// Synthetic documents with boundary-length blocks: whatever the input,
	// every accepted paragraph must satisfy the length and link constraints.
	lengths := []int{1, 29, 30, 31, 500, 1999, 2000, 2001, 4000}
	var sb strings.Builder
	sb.WriteString("<html><body><main>")
	for i, n := range lengths {
		fmt.Fprintf(&sb, "<p>%s%d</p>", para(n), i)
	}
	sb.WriteString("</main></body></html>")

	got, err := Extract(sb.String())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	for _, p := range got.Paragraphs {
		if len(p) < 30 || len(p) > 2000 {
			t.Errorf("accepted paragraph length %d outside [30,2000]", len(p))
		}
	}
}
