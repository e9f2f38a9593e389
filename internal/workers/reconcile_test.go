package workers

import (
	"reflect"
	"sort"
	"testing"

	"github.com/google/uuid"

	"github.com/domiapp/domi-backend/internal/models"
	"github.com/domiapp/domi-backend/internal/services/ai"
)

func TestReconcile_TitleHandling(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		existingTitle string
		generated     string
		wantTitle     *string
	}{
		{
			name:          "user title is preserved",
			existingTitle: "My Custom Title",
			generated:     "AI Title",
			wantTitle:     nil,
		},
		{
			name:          "placeholder title is overwritten",
			existingTitle: models.PlaceholderTitle,
			generated:     "AI Title",
			wantTitle:     stringPtr("AI Title"),
		},
		{
			name:          "empty title is overwritten",
			existingTitle: "",
			generated:     "AI Title",
			wantTitle:     stringPtr("AI Title"),
		},
		{
			name:          "empty generated title never overwrites",
			existingTitle: "",
			generated:     "",
			wantTitle:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			clip := &models.Clip{
				ID:       uuid.New(),
				Title:    tt.existingTitle,
				Metadata: models.Metadata{},
			}
			generated := &ai.ClipMetadata{Title: tt.generated, Summary: "s"}

			patch := Reconcile(clip, generated, "")

			if tt.wantTitle == nil {
				if patch.Title != nil {
					t.Errorf("expected no title in patch, got %q", *patch.Title)
				}
				return
			}
			if patch.Title == nil {
				t.Fatalf("expected title %q in patch, got nil", *tt.wantTitle)
			}
			if *patch.Title != *tt.wantTitle {
				t.Errorf("expected title %q, got %q", *tt.wantTitle, *patch.Title)
			}
		})
	}
}

func TestReconcile_TagUnionNeverShrinks(t *testing.T) {
	t.Parallel()

	clip := &models.Clip{
		ID:       uuid.New(),
		Title:    "t",
		Tags:     []string{"a", "b"},
		Metadata: models.Metadata{},
	}
	generated := &ai.ClipMetadata{Title: "t", Summary: "s", Tags: []string{"b", "c"}}

	patch := Reconcile(clip, generated, "")

	got := append([]string(nil), patch.Tags...)
	sort.Strings(got)
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected tags %v, got %v", want, got)
	}
}

func TestReconcile_DescriptionOnlyWhenEmpty(t *testing.T) {
	t.Parallel()

	generated := &ai.ClipMetadata{Title: "t", Summary: "generated summary"}

	withDesc := &models.Clip{ID: uuid.New(), Title: "t", Description: "mine", Metadata: models.Metadata{}}
	if patch := Reconcile(withDesc, generated, ""); patch.Description != nil {
		t.Errorf("expected description untouched, got %q", *patch.Description)
	}

	withoutDesc := &models.Clip{ID: uuid.New(), Title: "t", Metadata: models.Metadata{}}
	patch := Reconcile(withoutDesc, generated, "")
	if patch.Description == nil || *patch.Description != "generated summary" {
		t.Errorf("expected description filled from summary, got %v", patch.Description)
	}
}

func TestReconcile_OGImagePersistence(t *testing.T) {
	t.Parallel()

	clip := &models.Clip{
		ID:    uuid.New(),
		Title: "t",
		Metadata: models.Metadata{
			models.MetadataKeyOGImage: "https://img.example/old.jpg",
		},
	}
	generated := &ai.ClipMetadata{Title: "t", Summary: "s"}

	// No extraction this run: the stored image must survive
	patch := Reconcile(clip, generated, "")
	if got := patch.Metadata.OGImage(); got != "https://img.example/old.jpg" {
		t.Errorf("expected stored og_image preserved, got %q", got)
	}

	// A fresh extraction replaces it
	patch = Reconcile(clip, generated, "https://img.example/new.jpg")
	if got := patch.Metadata.OGImage(); got != "https://img.example/new.jpg" {
		t.Errorf("expected new og_image, got %q", got)
	}
}

func TestReconcile_StatusAlwaysProcessed(t *testing.T) {
	t.Parallel()

	clip := &models.Clip{ID: uuid.New(), Title: "t", Status: models.ClipStatusPending, Metadata: models.Metadata{}}
	patch := Reconcile(clip, &ai.ClipMetadata{Title: "t", Summary: "s"}, "")

	if patch.Status == nil || *patch.Status != models.ClipStatusProcessed {
		t.Errorf("expected status processed, got %v", patch.Status)
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	t.Parallel()

	clip := &models.Clip{
		ID:          uuid.New(),
		Title:       models.PlaceholderTitle,
		Tags:        []string{"a"},
		Description: "",
		Metadata: models.Metadata{
			"custom":                  "kept",
			models.MetadataKeyOGImage: "https://img.example/x.jpg",
		},
		Status: models.ClipStatusPending,
	}
	generated := &ai.ClipMetadata{Title: "AI Title", Summary: "summary", Tags: []string{"a", "b"}}

	first := Reconcile(clip, generated, "")

	// Simulate the first application, then reconcile again with the same input
	applied := &models.Clip{
		ID:          clip.ID,
		Title:       *first.Title,
		Description: *first.Description,
		Tags:        first.Tags,
		Metadata:    clip.Metadata.Merge(first.Metadata),
		Status:      *first.Status,
	}
	second := Reconcile(applied, generated, "")

	if !reflect.DeepEqual(first.Tags, second.Tags) {
		t.Errorf("tags not stable under re-application: first %v, second %v", first.Tags, second.Tags)
	}
	if second.Title != nil {
		t.Errorf("expected no title change on re-application, got %q", *second.Title)
	}
	if got := second.Metadata.OGImage(); got != "https://img.example/x.jpg" {
		t.Errorf("og_image not stable under re-application, got %q", got)
	}
	if got := applied.Metadata["custom"]; got != "kept" {
		t.Errorf("unrelated metadata key lost: %v", got)
	}
	if second.Status == nil || *second.Status != models.ClipStatusProcessed {
		t.Error("status not stable under re-application")
	}
}

func stringPtr(s string) *string {
	return &s
}
