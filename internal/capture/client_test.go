package capture

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/domiapp/domi-backend/internal/models"
)

// mockAcknowledger is a mock implementation of Acknowledger
type mockAcknowledger struct {
	messages []string
	panicOn  bool
}

func (m *mockAcknowledger) Acknowledge(message string) {
	if m.panicOn {
		panic("acknowledger exploded")
	}
	m.messages = append(m.messages, message)
}

var _ Acknowledger = (*mockAcknowledger)(nil)

func staticResolver(token string) *TokenResolver {
	source := &mockCredentialSource{
		findCookieFunc: func(ctx context.Context, origin string) (string, error) {
			return token, nil
		},
	}
	return NewTokenResolver(source, "https://app.example.com", zap.NewNop())
}

func TestCapture_RejectsUnsafeSchemeBeforeNetwork(t *testing.T) {
	t.Parallel()

	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
	}))
	defer server.Close()

	var lookups int32
	source := &mockCredentialSource{
		findCookieFunc: func(ctx context.Context, origin string) (string, error) {
			atomic.AddInt32(&lookups, 1)
			return "tok", nil
		},
	}
	resolver := NewTokenResolver(source, "", zap.NewNop())
	client := NewClient(server.URL, resolver, nil, zap.NewNop())

	_, err := client.Capture(context.Background(), &Request{
		Type:   models.ClipTypeURL,
		SrcURL: "javascript:alert(1)",
	})
	if err == nil {
		t.Fatal("expected error for javascript: locator")
	}
	if atomic.LoadInt32(&requests) != 0 {
		t.Error("expected no network call for rejected locator")
	}
	if atomic.LoadInt32(&lookups) != 0 {
		t.Error("expected no credential lookup for rejected locator")
	}
}

func TestCapture_LoginRequired(t *testing.T) {
	t.Parallel()

	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
	}))
	defer server.Close()

	client := NewClient(server.URL, staticResolver(""), nil, zap.NewNop())

	_, err := client.Capture(context.Background(), &Request{
		Type:    models.ClipTypeText,
		Content: "some note",
	})
	if err != ErrLoginRequired {
		t.Fatalf("expected ErrLoginRequired, got %v", err)
	}
	if atomic.LoadInt32(&requests) != 0 {
		t.Error("expected no network call without a credential")
	}
}

func TestCapture_Success(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/clips":
			if got := r.Header.Get("Authorization"); got != "Bearer tok-abc" {
				t.Errorf("unexpected Authorization header %q", got)
			}
			var req Request
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("failed to decode request: %v", err)
			}
			if req.SrcURL != "https://example.com/article" {
				t.Errorf("unexpected src_url %q", req.SrcURL)
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"data": map[string]any{
					"id":    "5be4d45f-937c-4c32-89b1-4f70c1e5e43d",
					"title": "An Article",
					"type":  "url",
				},
			})
		case "/api/v1/auth/me":
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"data":    map[string]any{"email": "user@example.com"},
			})
		default:
			t.Errorf("unexpected request to %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	ack := &mockAcknowledger{}
	client := NewClient(server.URL, staticResolver("tok-abc"), ack, zap.NewNop())

	clip, err := client.Capture(context.Background(), &Request{
		Type:   models.ClipTypeURL,
		Title:  "An Article",
		SrcURL: "https://example.com/article",
	})
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if clip.Title != "An Article" {
		t.Errorf("unexpected clip title %q", clip.Title)
	}
	if len(ack.messages) != 1 || !strings.Contains(ack.messages[0], "An Article") {
		t.Errorf("expected one acknowledgment naming the clip, got %v", ack.messages)
	}
}

func TestCapture_ServerRejection(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success":false,"error":"validation_error"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, staticResolver("tok"), nil, zap.NewNop())

	_, err := client.Capture(context.Background(), &Request{
		Type:    models.ClipTypeText,
		Content: "note",
	})
	if err == nil {
		t.Fatal("expected error for rejected capture")
	}
	if !strings.Contains(err.Error(), "status 400") {
		t.Errorf("expected status in error, got %v", err)
	}
}

func TestCapture_AcknowledgerPanicDoesNotFailSave(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/clips" {
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"success":true,"data":{"id":"0f0f34c4-0df7-4f59-a4b8-04ce2dd9c9b0","title":"Note"}}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"success":true,"data":{}}`))
	}))
	defer server.Close()

	ack := &mockAcknowledger{panicOn: true}
	client := NewClient(server.URL, staticResolver("tok"), ack, zap.NewNop())

	clip, err := client.Capture(context.Background(), &Request{
		Type:    models.ClipTypeText,
		Content: "note body",
	})
	if err != nil {
		t.Fatalf("expected save to survive acknowledger panic, got %v", err)
	}
	if clip.Title != "Note" {
		t.Errorf("unexpected clip title %q", clip.Title)
	}
}

func TestScaleCropRect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rect CropRect
		dpr  float64
		want CropRect
	}{
		{
			name: "retina doubles",
			rect: CropRect{X: 10, Y: 20, Width: 100, Height: 50},
			dpr:  2,
			want: CropRect{X: 20, Y: 40, Width: 200, Height: 100},
		},
		{
			name: "fractional ratio rounds",
			rect: CropRect{X: 10, Y: 10, Width: 33, Height: 33},
			dpr:  1.5,
			want: CropRect{X: 15, Y: 15, Width: 50, Height: 50},
		},
		{
			name: "zero ratio treated as one",
			rect: CropRect{X: 5, Y: 5, Width: 10, Height: 10},
			dpr:  0,
			want: CropRect{X: 5, Y: 5, Width: 10, Height: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ScaleCropRect(tt.rect, tt.dpr); got != tt.want {
				t.Errorf("ScaleCropRect(%+v, %v) = %+v, want %+v", tt.rect, tt.dpr, got, tt.want)
			}
		})
	}
}
