package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jfmyers9/crates/pkg/discogs"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := loadFrom(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Output != "table" {
		t.Errorf("expected output table, got %q", cfg.Output)
	}
	if cfg.DataDir != "" {
		t.Errorf("expected empty data dir, got %q", cfg.DataDir)
	}
	if cfg.Discogs.Host != discogs.DefaultHost {
		t.Errorf("expected host %q, got %q", discogs.DefaultHost, cfg.Discogs.Host)
	}
	if cfg.Discogs.RequestLimitInterval != time.Minute {
		t.Errorf("expected 1m interval, got %v", cfg.Discogs.RequestLimitInterval)
	}
	if cfg.Discogs.BackoffRate != 2.7 {
		t.Errorf("expected backoff rate 2.7, got %v", cfg.Discogs.BackoffRate)
	}
	if cfg.Auth() != nil {
		t.Errorf("expected no auth, got %+v", cfg.Auth())
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	content := `output: json
discogs:
  user_token: file-token
  request_limit_interval: 30s
  backoff_max_retries: 4
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := loadFrom(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Output != "json" {
		t.Errorf("expected output json, got %q", cfg.Output)
	}
	if cfg.Discogs.RequestLimitInterval != 30*time.Second {
		t.Errorf("expected 30s interval, got %v", cfg.Discogs.RequestLimitInterval)
	}
	if cfg.Discogs.BackoffMaxRetries != 4 {
		t.Errorf("expected 4 retries, got %d", cfg.Discogs.BackoffMaxRetries)
	}
	if auth := cfg.Auth(); auth == nil || auth.UserToken != "file-token" {
		t.Errorf("expected token auth, got %+v", auth)
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("CRATES_DISCOGS_USER_TOKEN", "env-token")
	t.Setenv("CRATES_OUTPUT", "yaml")

	cfg, err := loadFrom(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Discogs.UserToken != "env-token" {
		t.Errorf("expected env token, got %q", cfg.Discogs.UserToken)
	}
	if cfg.Output != "yaml" {
		t.Errorf("expected output yaml, got %q", cfg.Output)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	cfg, err := loadFrom(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.Discogs.ConsumerKey = "ck"
	cfg.Discogs.ConsumerSecret = "cs"
	cfg.Discogs.OAuthToken = "at"
	cfg.Discogs.OAuthTokenSecret = "as"
	cfg.Discogs.BackoffInterval = 3 * time.Second

	if err := cfg.saveTo(dir); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("expected config file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("expected mode 0600, got %v", perm)
	}

	loaded, err := loadFrom(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.Discogs.BackoffInterval != 3*time.Second {
		t.Errorf("expected 3s backoff, got %v", loaded.Discogs.BackoffInterval)
	}

	auth := loaded.Auth()
	if auth == nil || auth.Method != discogs.AuthMethodOAuth || auth.Level != discogs.AuthUser {
		t.Fatalf("expected user-level oauth, got %+v", auth)
	}
}

func TestConfig_Auth(t *testing.T) {
	tests := []struct {
		name      string
		discogs   DiscogsConfig
		wantNil   bool
		wantLevel discogs.AuthLevel
	}{
		{"none", DiscogsConfig{}, true, discogs.AuthNone},
		{"token", DiscogsConfig{UserToken: "t"}, false, discogs.AuthUser},
		{"key", DiscogsConfig{ConsumerKey: "k", ConsumerSecret: "s"}, false, discogs.AuthConsumer},
		{"oauth", DiscogsConfig{ConsumerKey: "k", ConsumerSecret: "s", OAuthToken: "t", OAuthTokenSecret: "ts"}, false, discogs.AuthUser},
		{"key without secret", DiscogsConfig{ConsumerKey: "k"}, true, discogs.AuthNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Discogs: tt.discogs}
			auth := cfg.Auth()
			if tt.wantNil {
				if auth != nil {
					t.Errorf("expected nil auth, got %+v", auth)
				}
				return
			}
			if auth == nil {
				t.Fatal("expected auth, got nil")
			}
			if auth.Level != tt.wantLevel {
				t.Errorf("expected level %d, got %d", tt.wantLevel, auth.Level)
			}
		})
	}
}

func TestConfig_ClientConfig(t *testing.T) {
	cfg, err := loadFrom(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.Discogs.UserToken = "t"

	client, err := discogs.NewClient(cfg.ClientConfig())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	if !client.Authenticated(discogs.AuthUser) {
		t.Error("expected user-level client")
	}
	if got := client.Settings().BackoffMaxRetries; got != 2 {
		t.Errorf("expected 2 retries, got %d", got)
	}
}
