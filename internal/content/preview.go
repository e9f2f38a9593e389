package content

import (
	"fmt"
	"regexp"
)

// PreviewInferrer derives a preview image URL from a source locator using
// platform-specific rules, without fetching the page. Additional platforms
// plug in here without touching the resolver's control flow.
type PreviewInferrer interface {
	// Name identifies the platform, for logging
	Name() string
	// Infer returns a preview image URL and true when the locator matches
	// the platform's link formats
	Infer(rawURL string) (string, bool)
}

// youtubeShortcode matches the video ID in youtube.com watch/embed/v links
// and youtu.be short links.
var youtubeShortcode = regexp.MustCompile(`(?i)(?:youtube\.com/(?:[^/]+/.+/|(?:v|e(?:mbed)?)/|.*[?&]v=)|youtu\.be/)([^"&?/\s]{11})`)

// YouTubeInferrer synthesizes a thumbnail URL from a YouTube video ID
type YouTubeInferrer struct{}

// Name implements PreviewInferrer
func (YouTubeInferrer) Name() string { return "youtube" }

// Infer implements PreviewInferrer
func (YouTubeInferrer) Infer(rawURL string) (string, bool) {
	m := youtubeShortcode.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return fmt.Sprintf("https://img.youtube.com/vi/%s/hqdefault.jpg", m[1]), true
}

// DefaultInferrers returns the built-in preview inference strategies
func DefaultInferrers() []PreviewInferrer {
	return []PreviewInferrer{YouTubeInferrer{}}
}
