package workers

import (
	"github.com/domiapp/domi-backend/internal/models"
	"github.com/domiapp/domi-backend/internal/services/ai"
)

// Reconcile computes the conditional update that merges generated metadata
// into an existing clip. It is a pure function over its inputs and is
// idempotent: re-applying the same generated metadata yields the same patch.
//
// Merge rules, in order:
//  1. metadata: overlay summary, auto_title and og_image onto the stored
//     object; unrelated keys survive. A previously stored og_image is never
//     cleared by an absent extraction, only replaced by a non-empty one.
//  2. tags: union of existing and generated, deduplicated.
//  3. title: generated title only when the existing one is empty or the
//     capture placeholder; a user-provided title is authoritative.
//  4. description: generated summary only when the existing one is empty.
//  5. status: processed, unconditionally.
func Reconcile(clip *models.Clip, generated *ai.ClipMetadata, previewImageURL string) *models.ClipPatch {
	meta := models.Metadata{
		models.MetadataKeySummary:   generated.Summary,
		models.MetadataKeyAutoTitle: generated.Title,
	}
	if previewImageURL != "" {
		meta[models.MetadataKeyOGImage] = previewImageURL
	} else if existing := clip.Metadata.OGImage(); existing != "" {
		meta[models.MetadataKeyOGImage] = existing
	}

	patch := &models.ClipPatch{
		Metadata: meta,
		Tags:     models.UnionTags(clip.Tags, generated.Tags),
	}

	if clip.HasDefaultTitle() && generated.Title != "" {
		title := generated.Title
		patch.Title = &title
	}

	if clip.Description == "" && generated.Summary != "" {
		description := generated.Summary
		patch.Description = &description
	}

	status := models.ClipStatusProcessed
	patch.Status = &status

	return patch
}
