package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// DefaultAuthUser is the Basic auth user name for the pages in token mode.
const DefaultAuthUser = "socialgram"

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverVault    = "vault"
	DriverPostgres = "postgres"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Store    StoreConfig       `yaml:"store"`
	Vault    VaultConfig       `yaml:"vault"`
	SQLite   SQLiteConfig      `yaml:"sqlite"`
	Postgres PostgresConfig    `yaml:"postgres"`
	Auth     AuthConfig        `yaml:"auth"`
	CORS     CORSConfig        `yaml:"cors"`
	Editor   EditorConfig      `yaml:"editor"`
}

// Validate validates the configuration. Driver-specific sections are only
// checked for the selected driver.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	switch c.Store.Driver {
	case DriverVault:
		if err := c.Vault.Validate(); err != nil {
			return err
		}
		if err := c.SQLite.Validate(); err != nil {
			return err
		}
	case DriverPostgres:
		if err := c.Postgres.Validate(); err != nil {
			return err
		}
	}
	if err := c.Editor.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel        slog.Level    `yaml:"log_level"`
	HTTP            HTTPConfig    `yaml:"http"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.ShutdownTimeout, validation.Min(time.Duration(0))),
	); err != nil {
		return err
	}
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// StoreConfig selects where ideas are persisted.
type StoreConfig struct {
	Driver string `yaml:"driver"`
}

// Validate validates the store configuration.
func (c *StoreConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required, validation.In(DriverMemory, DriverVault, DriverPostgres)),
	)
}

// VaultConfig holds the path to the directory of idea files.
type VaultConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SQLiteConfig holds the path of the vault search index.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// PostgresConfig holds the hosted database connection string.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// Validate validates the Postgres configuration.
func (c *PostgresConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DSN, validation.Required),
	)
}

// AuthConfig holds authentication configuration for the JSON API.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
//
// In token mode the HTML pages ask for HTTP Basic credentials: User and
// Token as the password.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
	User  string `yaml:"user"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if c.User == "" {
		c.User = DefaultAuthUser
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// CORSConfig lists the browser origins allowed to call the JSON API.
// An empty list disables CORS headers.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// EditorConfig tunes the edit workflow.
type EditorConfig struct {
	// AutosaveIdle is how long script edits wait before they are saved.
	AutosaveIdle time.Duration `yaml:"autosave_idle"`
	// MockLatency makes the memory driver delay calls like a hosted service.
	MockLatency bool `yaml:"mock_latency"`
	// SessionIdle closes edit sessions unused for this long. Zero keeps them.
	SessionIdle time.Duration `yaml:"session_idle"`
}

// Validate validates the editor configuration.
func (c *EditorConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.AutosaveIdle, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.SessionIdle, validation.Min(time.Duration(0))),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
			ShutdownTimeout: 10 * time.Second,
		},
		Store: StoreConfig{
			Driver: DriverVault,
		},
		Vault: VaultConfig{
			Path: "./vault",
		},
		SQLite: SQLiteConfig{
			Path: "./socialgram.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
			User: DefaultAuthUser,
		},
		Editor: EditorConfig{
			AutosaveIdle: time.Second,
			SessionIdle:  30 * time.Minute,
		},
	}
}
