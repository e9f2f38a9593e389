package content

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/domiapp/domi-backend/internal/models"
)

func urlClip(srcURL, title string) *models.Clip {
	return &models.Clip{
		ID:       uuid.New(),
		UserID:   uuid.New(),
		Type:     models.ClipTypeURL,
		Title:    title,
		SrcURL:   srcURL,
		Metadata: models.Metadata{},
	}
}

func TestResolve_FetchSuccess(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "Mozilla/5.0") {
			t.Errorf("expected browser user agent, got %q", ua)
		}
		w.Write([]byte(`<html><head>
			<meta property="og:image" content="https://a.example/og.jpg">
		</head><body><p>Article body text</p></body></html>`))
	}))
	defer server.Close()

	resolver := NewResolver(zap.NewNop())
	resolved := resolver.Resolve(context.Background(), urlClip(server.URL, "t"))

	if !strings.Contains(resolved.Text, "Article body text") {
		t.Errorf("expected stripped page text, got %q", resolved.Text)
	}
	if resolved.PreviewImageURL != "https://a.example/og.jpg" {
		t.Errorf("expected og image extracted, got %q", resolved.PreviewImageURL)
	}
}

func TestResolve_FetchFailureFallsBackToTitle(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	resolver := NewResolver(zap.NewNop())
	resolved := resolver.Resolve(context.Background(), urlClip(server.URL, "Saved Page"))

	if resolved.Text != "Saved Page" {
		t.Errorf("expected title fallback, got %q", resolved.Text)
	}
}

func TestResolve_NetworkErrorFallsBackToTitle(t *testing.T) {
	t.Parallel()

	// Closed server: the fetch fails at the transport level
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	resolver := NewResolver(zap.NewNop())
	resolved := resolver.Resolve(context.Background(), urlClip(url, "Saved Page"))

	if resolved.Text != "Saved Page" {
		t.Errorf("expected title fallback on network error, got %q", resolved.Text)
	}
}

func TestResolve_PreviewSurvivesFetchFailure(t *testing.T) {
	t.Parallel()

	// The locator matches the video shortcode but the host is unreachable;
	// the inferred thumbnail must still be set.
	resolver := NewResolver(zap.NewNop())
	resolver.WithHTTPClient(&http.Client{Transport: failingTransport{}})

	clip := urlClip("https://www.youtube.com/watch?v=dQw4w9WgXcQ", "Video")
	resolved := resolver.Resolve(context.Background(), clip)

	if resolved.PreviewImageURL != "https://img.youtube.com/vi/dQw4w9WgXcQ/hqdefault.jpg" {
		t.Errorf("expected inferred thumbnail despite fetch failure, got %q", resolved.PreviewImageURL)
	}
	if resolved.Text != "Video" {
		t.Errorf("expected title fallback, got %q", resolved.Text)
	}
}

func TestResolve_Truncation(t *testing.T) {
	t.Parallel()

	big := strings.Repeat("word ", 5000)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>" + big + "</p></body></html>"))
	}))
	defer server.Close()

	resolver := NewResolver(zap.NewNop())
	resolved := resolver.Resolve(context.Background(), urlClip(server.URL, "t"))

	if len(resolved.Text) > MaxAnalysisContentLength {
		t.Errorf("expected text truncated to %d, got %d", MaxAnalysisContentLength, len(resolved.Text))
	}
}

func TestResolve_NonURLFallbackChain(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(zap.NewNop())

	tests := []struct {
		name string
		clip *models.Clip
		want string
	}{
		{
			name: "content wins",
			clip: &models.Clip{Type: models.ClipTypeText, Content: "note body", Title: "t"},
			want: "note body",
		},
		{
			name: "title when no content",
			clip: &models.Clip{Type: models.ClipTypeText, Title: "only title"},
			want: "only title",
		},
		{
			name: "placeholder when nothing",
			clip: &models.Clip{Type: models.ClipTypeText},
			want: NoContentPlaceholder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resolved := resolver.Resolve(context.Background(), tt.clip)
			if resolved.Text != tt.want {
				t.Errorf("expected %q, got %q", tt.want, resolved.Text)
			}
		})
	}
}

// failingTransport errors every request
type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, http.ErrHandlerTimeout
}
