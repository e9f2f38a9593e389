package models

import (
	"time"

	"github.com/google/uuid"
)

// ClipType represents the kind of content a clip captures
type ClipType string

const (
	ClipTypeURL   ClipType = "url"
	ClipTypeText  ClipType = "text"
	ClipTypeImage ClipType = "image"
	ClipTypePDF   ClipType = "pdf"
)

// ClipStatus represents the enrichment lifecycle of a clip
type ClipStatus string

const (
	// ClipStatusPending means the clip has been captured but not yet enriched
	ClipStatusPending ClipStatus = "pending"
	// ClipStatusProcessed means enrichment completed (successfully or with fallback content)
	ClipStatusProcessed ClipStatus = "processed"
)

// PlaceholderTitle is the default title given to clips captured without one.
// Enrichment may overwrite a title equal to this placeholder.
const PlaceholderTitle = "New Clip"

// Clip represents a captured memory record
type Clip struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	GroupID     *uuid.UUID `json:"group_id,omitempty"`
	Type        ClipType   `json:"type"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Content     string     `json:"content"`
	SrcURL      string     `json:"src_url"`
	Tags        []string   `json:"tags"`
	Metadata    Metadata   `json:"metadata"`
	Status      ClipStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ClipPatch is a partial update applied to a clip by id.
// Nil fields are left untouched; Metadata is overlaid onto the stored object.
type ClipPatch struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
	Metadata    Metadata    `json:"metadata,omitempty"`
	GroupID     *uuid.UUID  `json:"group_id,omitempty"`
	Status      *ClipStatus `json:"status,omitempty"`
}

// HasDefaultTitle reports whether the clip's title is empty or the capture placeholder.
// Enrichment only overwrites titles that are still defaults; user titles are authoritative.
func (c *Clip) HasDefaultTitle() bool {
	return c.Title == "" || c.Title == PlaceholderTitle
}

// AnalysisTarget returns the locator the enrichment pipeline should fetch for
// url-type clips: src_url when present, otherwise content (some captures store
// the page address in content).
func (c *Clip) AnalysisTarget() string {
	if c.SrcURL != "" {
		return c.SrcURL
	}
	return c.Content
}
