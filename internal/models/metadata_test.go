package models

import (
	"reflect"
	"testing"
)

func TestMetadataMerge(t *testing.T) {
	t.Parallel()

	base := Metadata{
		"summary":  "old summary",
		"og_image": "https://example.com/old.jpg",
		"custom":   "kept",
	}
	overlay := Metadata{
		"summary":    "new summary",
		"auto_title": "Generated Title",
	}

	merged := base.Merge(overlay)

	if merged["summary"] != "new summary" {
		t.Errorf("expected overlay to win, got %v", merged["summary"])
	}
	if merged["og_image"] != "https://example.com/old.jpg" {
		t.Errorf("expected unnamed key to survive, got %v", merged["og_image"])
	}
	if merged["custom"] != "kept" {
		t.Errorf("expected unrelated key to survive, got %v", merged["custom"])
	}
	if merged["auto_title"] != "Generated Title" {
		t.Errorf("expected new key applied, got %v", merged["auto_title"])
	}

	// Neither input is mutated
	if base["summary"] != "old summary" {
		t.Error("Merge mutated the base metadata")
	}
	if _, ok := overlay["og_image"]; ok {
		t.Error("Merge mutated the overlay metadata")
	}
}

func TestMetadataMerge_NilReceiver(t *testing.T) {
	t.Parallel()

	var base Metadata
	merged := base.Merge(Metadata{"summary": "s"})
	if merged["summary"] != "s" {
		t.Errorf("expected merge onto nil metadata to work, got %v", merged)
	}
}

func TestMetadataAccessors(t *testing.T) {
	t.Parallel()

	m := Metadata{
		MetadataKeySummary: "a summary",
		MetadataKeyOGImage: "https://example.com/img.jpg",
		"count":            3,
	}

	if got := m.Summary(); got != "a summary" {
		t.Errorf("Summary() = %q", got)
	}
	if got := m.OGImage(); got != "https://example.com/img.jpg" {
		t.Errorf("OGImage() = %q", got)
	}
	if got := m.GetString("count"); got != "" {
		t.Errorf("expected non-string value to read as empty, got %q", got)
	}
	if got := m.GetString("missing"); got != "" {
		t.Errorf("expected missing key to read as empty, got %q", got)
	}

	var nilMeta Metadata
	if got := nilMeta.GetString("anything"); got != "" {
		t.Errorf("expected nil metadata to read as empty, got %q", got)
	}
}

func TestUnionTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		existing  []string
		additions []string
		want      []string
	}{
		{
			name:      "disjoint sets append",
			existing:  []string{"recipes", "cooking"},
			additions: []string{"dinner"},
			want:      []string{"recipes", "cooking", "dinner"},
		},
		{
			name:      "overlap deduplicates preserving order",
			existing:  []string{"a", "b"},
			additions: []string{"b", "c"},
			want:      []string{"a", "b", "c"},
		},
		{
			name:      "duplicates within existing collapse",
			existing:  []string{"a", "a", "b"},
			additions: nil,
			want:      []string{"a", "b"},
		},
		{
			name:      "nil existing",
			existing:  nil,
			additions: []string{"x"},
			want:      []string{"x"},
		},
		{
			name:      "both empty",
			existing:  nil,
			additions: nil,
			want:      []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := UnionTags(tt.existing, tt.additions); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("UnionTags(%v, %v) = %v, want %v", tt.existing, tt.additions, got, tt.want)
			}
		})
	}
}
