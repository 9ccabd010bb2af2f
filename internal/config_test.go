package internal

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/socialgram/pkg/config"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
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

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_PageUserDefault(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.User != DefaultAuthUser {
		t.Errorf("user = %q, want %q", cfg.User, DefaultAuthUser)
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

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestStoreConfig_UnknownDriver(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Store.Driver = "mongo"
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown driver should fail validation")
	}
}

func TestConfig_DriverSections(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Store.Driver = DriverPostgres
	if err := cfg.Validate(); err == nil {
		t.Fatal("postgres driver without dsn should fail")
	}
	cfg.Postgres.DSN = "postgres://localhost/socialgram?sslmode=disable"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("postgres with dsn should pass: %v", err)
	}

	// Vault paths are irrelevant to the memory driver.
	cfg = NewDefaultConfig()
	cfg.Store.Driver = DriverMemory
	cfg.Vault.Path = ""
	cfg.SQLite.Path = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("memory driver should ignore vault settings: %v", err)
	}

	cfg.Store.Driver = DriverVault
	if err := cfg.Validate(); err == nil {
		t.Fatal("vault driver without paths should fail")
	}
}

func TestEditorConfig_AutosaveIdleRequired(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Editor.AutosaveIdle = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("zero autosave idle should fail")
	}
}

func TestEditorConfig_SessionIdleNotNegative(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Editor.SessionIdle = -time.Minute
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative session idle")
	}
	cfg.Editor.SessionIdle = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("zero session idle should disable eviction: %v", err)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	t.Setenv("SOCIALGRAM_TEST_DSN", "postgres://db/ideas")
	yaml := `app:
  log_level: debug
  http:
    port: 9090
  shutdown_timeout: 3s
store:
  driver: postgres
postgres:
  dsn: ${SOCIALGRAM_TEST_DSN}
cors:
  allowed_origins:
    - http://localhost:5173
editor:
  autosave_idle: 1500ms
  mock_latency: true
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.LogLevel != slog.LevelDebug || cfg.App.HTTP.Port != 9090 || cfg.App.ShutdownTimeout != 3*time.Second {
		t.Errorf("app = %+v", cfg.App)
	}
	if cfg.Postgres.DSN != "postgres://db/ideas" {
		t.Errorf("dsn = %q, want env expansion", cfg.Postgres.DSN)
	}
	if cfg.Editor.AutosaveIdle != 1500*time.Millisecond || !cfg.Editor.MockLatency {
		t.Errorf("editor = %+v", cfg.Editor)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 {
		t.Errorf("cors = %v", cfg.CORS.AllowedOrigins)
	}
	// Unset keys keep their defaults.
	if cfg.Vault.Path != "./vault" {
		t.Errorf("vault path = %q", cfg.Vault.Path)
	}
}
