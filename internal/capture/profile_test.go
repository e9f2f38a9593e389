package capture

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestProfile_SaveAndLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "capture.yaml")
	profile := &Profile{
		APIURL: "https://api.example.com",
		Origin: "https://app.example.com",
		Tokens: map[string]string{
			"https://app.example.com": "base64-abc",
		},
	}

	if err := profile.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("profile not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("expected profile mode 0600, got %o", perm)
	}

	loaded, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile failed: %v", err)
	}
	if loaded.APIURL != profile.APIURL {
		t.Errorf("expected api_url %q, got %q", profile.APIURL, loaded.APIURL)
	}
	if loaded.Origin != profile.Origin {
		t.Errorf("expected origin %q, got %q", profile.Origin, loaded.Origin)
	}
	if loaded.Tokens["https://app.example.com"] != "base64-abc" {
		t.Errorf("expected stored token to round-trip, got %v", loaded.Tokens)
	}
}

func TestLoadProfile_MissingAPIURL(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "capture.yaml")
	if err := os.WriteFile(path, []byte("origin: https://app.example.com\n"), 0o600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	if _, err := LoadProfile(path); err == nil {
		t.Error("expected error for profile without api_url")
	}
}

func TestLoadProfile_MissingFile(t *testing.T) {
	t.Parallel()

	if _, err := LoadProfile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing profile")
	}
}

func TestProfileCredentialSource_FindCookie(t *testing.T) {
	t.Parallel()

	source := NewProfileCredentialSource(&Profile{
		Tokens: map[string]string{"https://app.example.com": "tok"},
	})

	got, err := source.FindCookie(context.Background(), "https://app.example.com")
	if err != nil {
		t.Fatalf("FindCookie failed: %v", err)
	}
	if got != "tok" {
		t.Errorf("expected stored token, got %q", got)
	}

	got, err = source.FindCookie(context.Background(), "https://other.example.com")
	if err != nil {
		t.Fatalf("FindCookie failed: %v", err)
	}
	if got != "" {
		t.Errorf("expected no token for unknown origin, got %q", got)
	}

	empty := NewProfileCredentialSource(nil)
	if got, _ := empty.FindCookie(context.Background(), "https://app.example.com"); got != "" {
		t.Errorf("expected no token from nil profile, got %q", got)
	}
}
