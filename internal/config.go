package internal

import (
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/seliv/margin/internal/annot"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Vault  VaultConfig       `yaml:"vault"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
	Auth   AuthConfig        `yaml:"auth"`
	Tags   []annot.TagRule   `yaml:"tags"`
	View   ViewConfig        `yaml:"view"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.validateTags(); err != nil {
		return err
	}
	return c.View.Validate()
}

func (c *Config) validateTags() error {
	if len(c.Tags) == 0 {
		return fmt.Errorf("tags: at least one tag rule is required")
	}
	seen := make(map[string]struct{}, len(c.Tags))
	for i, r := range c.Tags {
		tag := strings.ToLower(strings.TrimSpace(r.Tag))
		if tag == "" {
			return fmt.Errorf("tags[%d]: tag must not be empty", i)
		}
		if _, dup := seen[tag]; dup {
			return fmt.Errorf("tags[%d]: duplicate tag %q", i, tag)
		}
		seen[tag] = struct{}{}
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
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

// VaultConfig holds the path to the annotated document vault.
type VaultConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
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

// ViewConfig holds the default arrangement for comment threads.
type ViewConfig struct {
	By      string `yaml:"by"`
	Order   string `yaml:"order"`
	Flatten bool   `yaml:"flatten"`
}

// Validate validates the view configuration.
func (c *ViewConfig) Validate() error {
	if c.By == "" {
		c.By = "line"
	}
	if c.Order == "" {
		c.Order = "asc"
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.By, validation.Required, validation.In("line", "time")),
		validation.Field(&c.Order, validation.Required, validation.In("asc", "desc")),
	)
}

// View converts the configuration into an arrangement value.
func (c *ViewConfig) View() annot.View {
	return annot.View{
		ByTimestamp: c.By == "time",
		Flatten:     c.Flatten,
		Ascending:   c.Order != "desc",
	}
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Vault: VaultConfig{
			Path: "./vault",
		},
		SQLite: SQLiteConfig{
			Path: "./margin.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Tags: []annot.TagRule{
			{Tag: "me", Color: "#e8b339"},
		},
		View: ViewConfig{
			By:    "line",
			Order: "asc",
		},
	}
}
