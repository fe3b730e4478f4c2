package internal

import (
	"strings"
	"testing"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestGitHubConfig_EmptyRepositoryAllowed(t *testing.T) {
	cfg := GitHubConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty repository should be allowed (attribution disabled): %v", err)
	}
}

func TestGitHubConfig_RepositoryShape(t *testing.T) {
	good := GitHubConfig{Repository: "acme/hack4good-ideas"}
	if err := good.Validate(); err != nil {
		t.Fatalf("owner/repo should validate: %v", err)
	}
	bad := GitHubConfig{Repository: "not-a-repo"}
	err := bad.Validate()
	if err == nil || !strings.Contains(err.Error(), "owner/repo") {
		t.Errorf("err = %v, want owner/repo shape error", err)
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestHTTPConfig_PortBounds(t *testing.T) {
	cfg := HTTPConfig{Port: 0}
	if err := cfg.Validate(); err == nil {
		t.Error("port 0 should fail validation")
	}
	cfg.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("port above 65535 should fail validation")
	}
}
