package capture

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/domiapp/domi-backend/internal/models"
	"github.com/domiapp/domi-backend/internal/validation"
)

// ErrLoginRequired is returned when no credential can be resolved.
// Callers surface it as a login prompt; no network write is attempted.
var ErrLoginRequired = errors.New("login required: no session credential found")

// Acknowledger delivers a capture confirmation to the user.
// Implementations are best-effort; failures are logged and swallowed.
type Acknowledger interface {
	Acknowledge(message string)
}

// Request describes a capture submitted by the user
type Request struct {
	Type    models.ClipType `json:"type"`
	Title   string          `json:"title"`
	Content string          `json:"content"`
	SrcURL  string          `json:"src_url"`
	Tags    []string        `json:"tags"`
}

// Client submits captures to the backend API
type Client struct {
	apiURL     string
	resolver   *TokenResolver
	ack        Acknowledger
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a capture client for the given API base URL
func NewClient(apiURL string, resolver *TokenResolver, ack Acknowledger, logger *zap.Logger) *Client {
	return &Client{
		apiURL:     apiURL,
		resolver:   resolver,
		ack:        ack,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// WithHTTPClient overrides the HTTP client, for tests
func (c *Client) WithHTTPClient(client *http.Client) *Client {
	c.httpClient = client
	return c
}

// Capture validates and submits a new clip.
// Remote clip types must carry an http(s) locator; any other scheme is
// rejected before the credential lookup or any network call. A missing
// credential aborts with ErrLoginRequired before the write.
func (c *Client) Capture(ctx context.Context, req *Request) (*models.Clip, error) {
	if req.Type != models.ClipTypeText {
		if err := validation.ValidateCaptureURL(req.SrcURL); err != nil {
			return nil, fmt.Errorf("rejected capture: %w", err)
		}
	}

	token := c.resolver.Resolve(ctx)
	if token == "" {
		return nil, ErrLoginRequired
	}
	if TokenLooksExpired(token) {
		c.logger.Warn("session_token_expired", zap.String("api_url", c.apiURL))
	}

	clip, err := c.submit(ctx, req, token)
	if err != nil {
		return nil, err
	}

	// The write has durably succeeded. Everything below is best-effort and
	// never rolls it back.
	c.lookupIdentity(ctx, token)
	c.acknowledge(clip)

	return clip, nil
}

func (c *Client) submit(ctx context.Context, req *Request, token string) (*models.Clip, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode capture: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/api/v1/clips", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("capture request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("capture rejected with status %d: %s", resp.StatusCode, msg)
	}

	var envelope struct {
		Success bool        `json:"success"`
		Data    models.Clip `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode capture response: %w", err)
	}

	return &envelope.Data, nil
}

// Me returns the authenticated user for the resolved credential
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	token := c.resolver.Resolve(ctx)
	if token == "" {
		return nil, ErrLoginRequired
	}
	return c.fetchMe(ctx, token)
}

func (c *Client) fetchMe(ctx context.Context, token string) (*models.User, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/api/v1/auth/me", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("identity lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity lookup returned status %d", resp.StatusCode)
	}

	var envelope struct {
		Success bool        `json:"success"`
		Data    models.User `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode identity response: %w", err)
	}

	return &envelope.Data, nil
}

// lookupIdentity fetches the authenticated user. Failures are logged only.
func (c *Client) lookupIdentity(ctx context.Context, token string) {
	if _, err := c.fetchMe(ctx, token); err != nil {
		c.logger.Debug("identity_lookup_failed", zap.Error(err))
	}
}

// acknowledge notifies the user of a successful save. Failures never
// propagate; the save has already happened.
func (c *Client) acknowledge(clip *models.Clip) {
	if c.ack == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.logger.Debug("acknowledgment_failed", zap.Any("panic", r))
		}
	}()
	c.ack.Acknowledge(fmt.Sprintf("Saved: %s", clip.Title))
}

// CropRect is a selection rectangle in CSS pixels
type CropRect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// ScaleCropRect maps a selection rectangle from CSS pixels to device pixels.
// Viewport screenshots are whole-bitmap captures at device resolution, so a
// user-drawn selection has to be scaled by the device pixel ratio before
// cropping.
func ScaleCropRect(rect CropRect, devicePixelRatio float64) CropRect {
	if devicePixelRatio <= 0 {
		devicePixelRatio = 1
	}
	return CropRect{
		X:      math.Round(rect.X * devicePixelRatio),
		Y:      math.Round(rect.Y * devicePixelRatio),
		Width:  math.Round(rect.Width * devicePixelRatio),
		Height: math.Round(rect.Height * devicePixelRatio),
	}
}
