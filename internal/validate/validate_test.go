// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import (
	"strings"
	"testing"

	"github.com/pdiddy/health-ingest/pkg/types"
)

// content builds a body of exactly n characters made of paragraphs long
// enough to count, joined with the paragraph separator.
func content(n int) string {
	const sep = "\n\n"
	var parts []string
	remaining := n
	for remaining > 0 {
		size := 100
		if remaining < size+len(sep) {
			size = remaining
		}
		parts = append(parts, strings.Repeat("a", size))
		remaining -= size
		if remaining > 0 {
			remaining -= len(sep)
		}
	}
	return strings.Join(parts, sep)
}

func TestCheckContentLengthBoundaries(t *testing.T) {
	cfg := types.ValidationConfig{MinContentLength: 300, MaxContentLength: 50000, MinParagraphs: 3}

	tests := []struct {
		name       string
		length     int
		wantValid  bool
		wantReason string
	}{
		{"exactly min passes", 300, true, ""},
		{"one below min fails", 299, false, ReasonContentTooShort},
		{"one above max fails", 50001, false, ReasonContentTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := content(tt.length)
			if len(body) != tt.length {
				t.Fatalf("fixture length = %d, want %d", len(body), tt.length)
			}
			v := Check("Starting Solid Foods", body, cfg)
			if v.Valid != tt.wantValid {
				t.Fatalf("Valid = %v, want %v (reasons: %v)", v.Valid, tt.wantValid, v.FailureReasons)
			}
			if tt.wantReason != "" && !hasReason(v.FailureReasons, tt.wantReason) {
				t.Errorf("reasons = %v, want one containing %q", v.FailureReasons, tt.wantReason)
			}
		})
	}
}

func TestCheckTitle(t *testing.T) {
	cfg := types.ValidationConfig{}
	body := content(500)

	tests := []struct {
		name  string
		title string
		valid bool
	}{
		{"present", "Vaccines for Infants", true},
		{"empty", "", false},
		{"too short", "FAQ", false},
		{"whitespace only", "      ", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Check(tt.title, body, cfg)
			if v.Valid != tt.valid {
				t.Errorf("Valid = %v, want %v (reasons: %v)", v.Valid, tt.valid, v.FailureReasons)
			}
			if !tt.valid && !hasReason(v.FailureReasons, ReasonMissingTitle) {
				t.Errorf("reasons = %v, want missing-title", v.FailureReasons)
			}
		})
	}
}

func TestCheckParagraphCount(t *testing.T) {
	cfg := types.ValidationConfig{MinContentLength: 100, MaxContentLength: 50000, MinParagraphs: 3}

	two := strings.Repeat("a", 200) + "\n\n" + strings.Repeat("b", 200)
	v := Check("A Valid Title", two, cfg)
	if v.Valid {
		t.Fatal("Valid = true, want false with two paragraphs")
	}
	if !hasReason(v.FailureReasons, ReasonTooFewParagraphs) {
		t.Errorf("reasons = %v, want too-few-paragraphs", v.FailureReasons)
	}
	if v.ParagraphCount != 2 {
		t.Errorf("ParagraphCount = %d, want 2", v.ParagraphCount)
	}

	// Short fragments between separators do not count as paragraphs.
	padded := two + "\n\n" + "tiny"
	v = Check("A Valid Title", padded, cfg)
	if v.ParagraphCount != 2 {
		t.Errorf("ParagraphCount = %d, want 2 (short fragment excluded)", v.ParagraphCount)
	}
}

func TestCheckCollectsAllFailures(t *testing.T) {
	v := Check("", "short", types.ValidationConfig{})
	if v.Valid {
		t.Fatal("Valid = true, want false")
	}
	if len(v.FailureReasons) != 3 {
		t.Errorf("FailureReasons = %v, want title, too-short, and paragraph failures", v.FailureReasons)
	}
}

func TestCheckReportsStats(t *testing.T) {
	body := content(450)
	v := Check("Newborn Bathing Basics", body, types.ValidationConfig{})
	if !v.Valid {
		t.Fatalf("Valid = false, reasons: %v", v.FailureReasons)
	}
	if v.TitleLength != len("Newborn Bathing Basics") {
		t.Errorf("TitleLength = %d", v.TitleLength)
	}
	if v.ContentLength != 450 {
		t.Errorf("ContentLength = %d, want 450", v.ContentLength)
	}
	if v.ParagraphCount < 3 {
		t.Errorf("ParagraphCount = %d, want >= 3", v.ParagraphCount)
	}
}

func hasReason(reasons []string, substr string) bool {
	for _, r := range reasons {
		if strings.Contains(r, substr) {
			return true
		}
	}
	return false
}
