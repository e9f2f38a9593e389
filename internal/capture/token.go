package capture

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwt"
	"go.uber.org/zap"
)

// base64Prefix marks session cookie values that are base64-wrapped JSON
const base64Prefix = "base64-"

// loopbackOrigins are tried when the configured origin yields no cookie.
// Local development dashboards commonly run on these.
var loopbackOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
}

// CredentialSource abstracts the host environment's credential stores.
// FindCookie looks up a session cookie for an origin; ProbeOpenSessions
// inspects any open dashboard sessions for a token. Both return "" when
// nothing is found. Absence is not an error.
type CredentialSource interface {
	FindCookie(ctx context.Context, origin string) (string, error)
	ProbeOpenSessions(ctx context.Context) (string, error)
}

// TokenResolver locates a usable bearer credential from the ambient session
// context. Resolution order: configured origin cookie, loopback origin
// cookies, open-session probe. First hit wins.
type TokenResolver struct {
	source CredentialSource
	origin string
	logger *zap.Logger
}

// NewTokenResolver creates a token resolver for the given dashboard origin
func NewTokenResolver(source CredentialSource, origin string, logger *zap.Logger) *TokenResolver {
	return &TokenResolver{source: source, origin: origin, logger: logger}
}

// Resolve returns a bearer credential, or "" when none is found through any
// path. Source errors are logged and treated as absence.
func (r *TokenResolver) Resolve(ctx context.Context) string {
	origins := make([]string, 0, len(loopbackOrigins)+1)
	if r.origin != "" {
		origins = append(origins, r.origin)
	}
	origins = append(origins, loopbackOrigins...)

	for _, origin := range origins {
		raw, err := r.source.FindCookie(ctx, origin)
		if err != nil {
			r.logger.Debug("cookie_lookup_failed",
				zap.String("origin", origin),
				zap.Error(err))
			continue
		}
		if raw != "" {
			return DecodeCredential(raw)
		}
	}

	raw, err := r.source.ProbeOpenSessions(ctx)
	if err != nil {
		r.logger.Debug("session_probe_failed", zap.Error(err))
		return ""
	}
	if raw == "" {
		return ""
	}
	return DecodeCredential(raw)
}

// DecodeCredential extracts a bearer token from a raw stored session value.
// Session stores wrap tokens in several layers: an optional "base64-" prefix,
// base64 encoding, and a JSON object (or array) carrying an access_token
// field. Any layer that fails to parse returns the value as-is; decoding is
// tolerant and never fails.
func DecodeCredential(raw string) string {
	value := strings.TrimPrefix(raw, base64Prefix)

	decoded, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(value, "="))
	if err != nil {
		// Not base64, try parsing the value directly
		decoded = []byte(value)
	}

	var parsed any
	if err := json.Unmarshal(decoded, &parsed); err != nil {
		return raw
	}

	switch v := parsed.(type) {
	case map[string]any:
		if token, ok := v["access_token"].(string); ok && token != "" {
			return token
		}
	case []any:
		if len(v) > 0 {
			if token, ok := v[0].(string); ok && token != "" {
				return token
			}
		}
	}

	return raw
}

// TokenLooksExpired inspects a JWT's exp claim without verifying its
// signature. Used only to warn before a capture attempt; the server is the
// authority on validity. Unparseable tokens report false.
func TokenLooksExpired(token string) bool {
	parsed, err := jwt.Parse([]byte(token), jwt.WithVerify(false), jwt.WithValidate(false))
	if err != nil {
		return false
	}
	exp := parsed.Expiration()
	if exp.IsZero() {
		return false
	}
	return exp.Before(time.Now())
}
