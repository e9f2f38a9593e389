package validation

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/domiapp/domi-backend/internal/models"
	"github.com/go-playground/validator/v10"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	// These should never fail in normal operation, but log if they do
	if err := Validate.RegisterValidation("clip_type", validateClipType); err != nil {
		panic(fmt.Sprintf("failed to register clip_type validator: %v", err))
	}
	if err := Validate.RegisterValidation("clip_status", validateClipStatus); err != nil {
		panic(fmt.Sprintf("failed to register clip_status validator: %v", err))
	}
	if err := Validate.RegisterValidation("capture_url", validateCaptureURL); err != nil {
		panic(fmt.Sprintf("failed to register capture_url validator: %v", err))
	}
}

// validateClipType validates that a string is a valid ClipType enum value
func validateClipType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	switch models.ClipType(value) {
	case models.ClipTypeURL, models.ClipTypeText, models.ClipTypeImage, models.ClipTypePDF:
		return true
	default:
		return false
	}
}

// validateClipStatus validates that a string is a valid ClipStatus enum value
func validateClipStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	switch models.ClipStatus(value) {
	case models.ClipStatusPending, models.ClipStatusProcessed:
		return true
	default:
		return false
	}
}

// validateCaptureURL accepts empty values (optional fields) and otherwise
// requires a well-formed http or https URL. See ValidateCaptureURL.
func validateCaptureURL(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return ValidateCaptureURL(value) == nil
}

// ValidateCaptureURL enforces the capture security boundary: only http and
// https source URLs are accepted. Schemes like javascript:, file: and data:
// are rejected before any network or store operation so the capture path
// cannot be used to smuggle executable or local-file URIs into clips.
func ValidateCaptureURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("disallowed URL scheme %q (must be http or https)", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL has no host")
	}
	return nil
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	// Trim whitespace
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateClipType validates a ClipType string value
func ValidateClipType(value string) error {
	switch models.ClipType(value) {
	case models.ClipTypeURL, models.ClipTypeText, models.ClipTypeImage, models.ClipTypePDF:
		return nil
	default:
		return fmt.Errorf("invalid type: %s (must be 'url', 'text', 'image', or 'pdf')", value)
	}
}

// ValidateClipStatus validates a ClipStatus string value
func ValidateClipStatus(value string) error {
	switch models.ClipStatus(value) {
	case models.ClipStatusPending, models.ClipStatusProcessed:
		return nil
	default:
		return fmt.Errorf("invalid status: %s (must be 'pending' or 'processed')", value)
	}
}
