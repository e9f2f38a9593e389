package ai

import (
	"context"
)

// ClipMetadata is the structured result of analyzing a clip's content
type ClipMetadata struct {
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
}

// Generator is the interface for AI metadata generators
type Generator interface {
	// GenerateMetadata derives a title, summary and tags from resolved clip content.
	// Implementations return an error only for transport/model failures; callers
	// are expected to substitute FallbackMetadata and continue.
	GenerateMetadata(ctx context.Context, content string) (*ClipMetadata, error)
}

const (
	// FallbackTitle is used when the clip had no title and the model call failed
	FallbackTitle = "Untitled (Auto-generated)"
	// FallbackSummary is the fixed summary recorded when AI processing fails
	FallbackSummary = "AI processing failed (Model/Limit Error)."
)

// FallbackMetadata builds the deterministic substitute used when the model
// call fails. It relies only on locally available data so the pipeline can
// always carry a clip to processed. The tags distinguish rate-limit failures
// from general model failures for later diagnosis.
func FallbackMetadata(existingTitle string, cause error) *ClipMetadata {
	title := existingTitle
	if title == "" {
		title = FallbackTitle
	}

	tags := []string{"ai-error", "fallback"}
	if IsRateLimitError(cause) || IsQuotaError(cause) {
		tags = []string{"ai-error", "rate-limited"}
	}

	return &ClipMetadata{
		Title:   title,
		Summary: FallbackSummary,
		Tags:    tags,
	}
}

// MockMetadata is the fixed payload returned in mock mode. It exercises the
// full reconciliation path without any model call.
func MockMetadata(existingTitle string) *ClipMetadata {
	title := existingTitle
	if title == "" {
		title = "Untitled"
	}
	return &ClipMetadata{
		Title:   "Mock Title: " + title,
		Summary: "This is a mock summary generated to test the UI flow without hitting API limits.",
		Tags:    []string{"mock-tag-1", "verified-ui", "test-flow"},
	}
}
