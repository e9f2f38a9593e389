package content

import (
	"strings"
	"testing"
)

func TestExtractPreviewImage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "og image, property before content",
			html: `<html><head><meta property="og:image" content="https://a.example/og.jpg"></head></html>`,
			want: "https://a.example/og.jpg",
		},
		{
			name: "og image, content before property",
			html: `<html><head><meta content="https://a.example/og.jpg" property="og:image"></head></html>`,
			want: "https://a.example/og.jpg",
		},
		{
			name: "single quotes",
			html: `<html><head><meta property='og:image' content='https://a.example/og.jpg'></head></html>`,
			want: "https://a.example/og.jpg",
		},
		{
			name: "twitter image when no og",
			html: `<html><head><meta name="twitter:image" content="https://a.example/tw.jpg"></head></html>`,
			want: "https://a.example/tw.jpg",
		},
		{
			name: "og preferred over twitter",
			html: `<html><head>
				<meta name="twitter:image" content="https://a.example/tw.jpg">
				<meta property="og:image" content="https://a.example/og.jpg">
			</head></html>`,
			want: "https://a.example/og.jpg",
		},
		{
			name: "no meta image",
			html: `<html><head><title>x</title></head><body></body></html>`,
			want: "",
		},
		{
			name: "empty content attribute ignored",
			html: `<html><head><meta property="og:image" content="  "></head></html>`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ExtractPreviewImage(tt.html); got != tt.want {
				t.Errorf("ExtractPreviewImage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractText(t *testing.T) {
	t.Parallel()

	html := `<html><head>
		<style>body { color: red; }</style>
		<script>var tracking = "junk";</script>
	</head><body>
		<h1>Heading</h1>
		<p>First   paragraph.</p>
		<noscript>enable js</noscript>
	</body></html>`

	got := ExtractText(html)

	if strings.Contains(got, "tracking") || strings.Contains(got, "color: red") || strings.Contains(got, "enable js") {
		t.Errorf("script/style/noscript bodies leaked into text: %q", got)
	}
	if !strings.Contains(got, "Heading") || !strings.Contains(got, "First paragraph.") {
		t.Errorf("expected body text preserved and whitespace collapsed, got %q", got)
	}
}
