package models

// Well-known metadata keys written by the enrichment pipeline.
const (
	MetadataKeySummary   = "summary"
	MetadataKeyAutoTitle = "auto_title"
	MetadataKeyOGImage   = "og_image"
)

// Metadata is the open, additive key-value structure attached to a clip.
// System-derived fields (summary, auto_title, og_image) live here alongside
// any other keys; updates overlay new keys onto the old object, they never
// replace it wholesale.
type Metadata map[string]any

// Merge returns a copy of m with overlay's keys applied on top.
// Keys in m that overlay does not name survive untouched. Neither input is mutated.
func (m Metadata) Merge(overlay Metadata) Metadata {
	merged := make(Metadata, len(m)+len(overlay))
	for k, v := range m {
		merged[k] = v
	}
	for k, v := range overlay {
		merged[k] = v
	}
	return merged
}

// GetString returns the string value for key, or "" if absent or not a string.
func (m Metadata) GetString(key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

// OGImage returns the stored preview image URL, if any.
func (m Metadata) OGImage() string {
	return m.GetString(MetadataKeyOGImage)
}

// Summary returns the stored AI summary, if any.
func (m Metadata) Summary() string {
	return m.GetString(MetadataKeySummary)
}

// UnionTags returns existing with additions appended, skipping duplicates.
// Order of existing tags is preserved; the result never drops a tag.
func UnionTags(existing, additions []string) []string {
	merged := make([]string, 0, len(existing)+len(additions))
	seen := make(map[string]bool, len(existing)+len(additions))
	for _, t := range existing {
		if !seen[t] {
			merged = append(merged, t)
			seen[t] = true
		}
	}
	for _, t := range additions {
		if !seen[t] {
			merged = append(merged, t)
			seen[t] = true
		}
	}
	return merged
}
