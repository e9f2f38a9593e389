package content

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/domiapp/domi-backend/internal/models"
	"go.uber.org/zap"
)

const (
	// MaxAnalysisContentLength bounds the text handed to the metadata
	// generator, respecting model input limits.
	MaxAnalysisContentLength = 10000

	// NoContentPlaceholder guarantees the generator always receives a
	// non-empty string.
	NoContentPlaceholder = "No content"

	// browserUserAgent is sent on content fetches. Sites that block unknown
	// or bot agents would otherwise fail silently.
	browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// maxFetchBodyBytes caps how much of a remote page is read
	maxFetchBodyBytes = 2 << 20 // 2MB

	defaultFetchTimeout = 15 * time.Second
)

// Resolved is the outcome of content resolution for a clip
type Resolved struct {
	// Text is the non-empty analysis corpus for the metadata generator
	Text string
	// PreviewImageURL is the extracted preview image, or "" when none was found
	PreviewImageURL string
}

// Resolver decides what content to analyze for a clip. Fetch and extraction
// failures degrade to stored fallbacks; Resolve never returns an error.
type Resolver struct {
	httpClient *http.Client
	inferrers  []PreviewInferrer
	logger     *zap.Logger
}

// NewResolver creates a resolver with the built-in preview inferrers
func NewResolver(logger *zap.Logger) *Resolver {
	return &Resolver{
		httpClient: &http.Client{Timeout: defaultFetchTimeout},
		inferrers:  DefaultInferrers(),
		logger:     logger,
	}
}

// WithHTTPClient overrides the fetch client (used by tests)
func (r *Resolver) WithHTTPClient(client *http.Client) *Resolver {
	r.httpClient = client
	return r
}

// Resolve determines the analysis text and preview image for a clip.
//
// For url-type clips with a locator: preview inference runs before the fetch
// so a platform-derived thumbnail survives even when the fetch fails; the
// fetched body is stripped of markup and truncated; og/twitter meta images
// fill the preview when inference found none. Fetch failures fall back to the
// clip's title. All other clips resolve to content, then title, then a
// literal placeholder.
func (r *Resolver) Resolve(ctx context.Context, clip *models.Clip) *Resolved {
	resolved := &Resolved{}

	target := clip.AnalysisTarget()
	if clip.Type == models.ClipTypeURL && target != "" {
		for _, inferrer := range r.inferrers {
			if imageURL, ok := inferrer.Infer(target); ok {
				resolved.PreviewImageURL = imageURL
				if r.logger != nil {
					r.logger.Debug("preview_inferred",
						zap.String("clip_id", clip.ID.String()),
						zap.String("platform", inferrer.Name()),
					)
				}
				break
			}
		}

		html, err := r.fetch(ctx, target)
		if err != nil {
			if r.logger != nil {
				r.logger.Warn("content_fetch_failed",
					zap.String("clip_id", clip.ID.String()),
					zap.Error(err),
				)
			}
			resolved.Text = fallbackText(clip.Title, "", NoContentPlaceholder)
			return resolved
		}

		if resolved.PreviewImageURL == "" {
			resolved.PreviewImageURL = ExtractPreviewImage(html)
		}

		text := ExtractText(html)
		if len(text) > MaxAnalysisContentLength {
			text = text[:MaxAnalysisContentLength]
		}
		resolved.Text = fallbackText(text, clip.Title, NoContentPlaceholder)
		return resolved
	}

	resolved.Text = fallbackText(clip.Content, clip.Title, NoContentPlaceholder)
	return resolved
}

// fetch retrieves the page body with a realistic browser user agent
func (r *Resolver) fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &FetchStatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBodyBytes))
	if err != nil {
		return "", err
	}

	return string(body), nil
}

// FetchStatusError reports a non-success HTTP status from a content fetch
type FetchStatusError struct {
	StatusCode int
}

func (e *FetchStatusError) Error() string {
	return http.StatusText(e.StatusCode) + " fetching content"
}

// fallbackText returns the first non-empty candidate
func fallbackText(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}
