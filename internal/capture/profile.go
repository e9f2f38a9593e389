package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultProfilePath is the capture profile location relative to the home
// directory
const DefaultProfilePath = ".domi/capture.yaml"

// Profile holds the capture client's persisted settings. Tokens maps a
// dashboard origin to the raw session value stored for it; values go through
// the same tolerant decode as browser cookies.
type Profile struct {
	APIURL string            `yaml:"api_url"`
	Origin string            `yaml:"origin"`
	Tokens map[string]string `yaml:"tokens,omitempty"`
}

// LoadProfile reads a capture profile from the given path.
// An empty path resolves to ~/.domi/capture.yaml.
func LoadProfile(path string) (*Profile, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		path = filepath.Join(home, DefaultProfilePath)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}

	if profile.APIURL == "" {
		return nil, fmt.Errorf("profile is missing api_url")
	}

	return &profile, nil
}

// Save writes the profile to the given path, creating parent directories.
// An empty path resolves to ~/.domi/capture.yaml.
func (p *Profile) Save(path string) error {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to resolve home directory: %w", err)
		}
		path = filepath.Join(home, DefaultProfilePath)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create profile directory: %w", err)
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}

	return nil
}

// sessionEnvVar is checked by the open-session probe as the CLI's analogue
// of an already-authenticated dashboard tab
const sessionEnvVar = "DOMI_SESSION"

// ProfileCredentialSource resolves credentials from a capture profile and
// the process environment
type ProfileCredentialSource struct {
	profile *Profile
}

// NewProfileCredentialSource creates a credential source backed by a profile
func NewProfileCredentialSource(profile *Profile) *ProfileCredentialSource {
	return &ProfileCredentialSource{profile: profile}
}

// FindCookie returns the stored session value for an origin, "" when none
func (s *ProfileCredentialSource) FindCookie(_ context.Context, origin string) (string, error) {
	if s.profile == nil || s.profile.Tokens == nil {
		return "", nil
	}
	return s.profile.Tokens[origin], nil
}

// ProbeOpenSessions checks the environment for an exported session value
func (s *ProfileCredentialSource) ProbeOpenSessions(_ context.Context) (string, error) {
	return os.Getenv(sessionEnvVar), nil
}

var _ CredentialSource = (*ProfileCredentialSource)(nil)
