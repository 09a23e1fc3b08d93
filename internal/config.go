package internal

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/ansuz/internal/layout"
	"github.com/starford/ansuz/internal/memory"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config represents the application configuration. It is built once at
// process start and threaded as a parameter into every component; no
// package reads paths from ambient global state.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Project ProjectConfig     `yaml:"project"`
	Docs    DocsConfig        `yaml:"docs"`
	Memory  MemoryConfig      `yaml:"memory"`
	SQLite  SQLiteConfig      `yaml:"sqlite"`
	Auth    AuthConfig        `yaml:"auth"`
	MCP     MCPConfig         `yaml:"mcp"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Project.Validate(); err != nil {
		return err
	}
	if err := c.Docs.Validate(); err != nil {
		return err
	}
	if err := c.Memory.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	return c.MCP.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel  slog.Level `yaml:"log_level"`
	LogFormat string     `yaml:"log_format"`
	HTTP      HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.LogFormat == "" {
		c.LogFormat = LogFormatText
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.LogFormat, validation.Required, validation.In(LogFormatText, LogFormatJSON)),
	); err != nil {
		return err
	}
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration for serve mode.
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

// ProjectConfig identifies the managed project.
type ProjectConfig struct {
	Name string `yaml:"name"`
	Root string `yaml:"root"`
}

// Validate validates the project configuration.
func (c *ProjectConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.Root, validation.Required),
	)
}

// DocsConfig holds the documentation layout inside the project root.
// Exclude patterns are doublestar globs matched against project-relative
// paths; matching files are dropped by the locator.
type DocsConfig struct {
	Dir          string   `yaml:"dir"`
	TemplatesDir string   `yaml:"templates_dir"`
	Exclude      []string `yaml:"exclude"`
}

// Tree returns the layout described by this configuration.
func (c *DocsConfig) Tree() layout.Tree {
	return layout.Tree{DocsDir: c.Dir, TemplatesDir: c.TemplatesDir}
}

// Validate validates the docs configuration.
func (c *DocsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.TemplatesDir, validation.Required),
	)
}

// MemoryConfig holds the memory file destinations. AssistantPath is
// preferred whenever its parent directory exists on this host; LocalPath is
// the in-project fallback.
type MemoryConfig struct {
	AssistantPath string `yaml:"assistant_path"`
	LocalPath     string `yaml:"local_path"`
}

// Validate validates the memory configuration.
func (c *MemoryConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.AssistantPath, validation.Required),
		validation.Field(&c.LocalPath, validation.Required),
	)
}

// SQLiteConfig holds the document index database location.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration for serve mode.
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

// MCPConfig holds the external knowledge-graph memory server command that
// init records into the Cursor registry.
type MCPConfig struct {
	Command []string `yaml:"command"`
}

// Validate validates the MCP configuration.
func (c *MCPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Command, validation.Required, validation.Length(1, 0)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values. The
// project name defaults to the working directory basename, and the memory
// destinations to the per-assistant config dir with an in-project fallback.
func NewDefaultConfig() *Config {
	project := "project"
	if wd, err := os.Getwd(); err == nil {
		project = filepath.Base(wd)
	}
	return &Config{
		App: ApplicationConfig{
			LogLevel:  slog.LevelInfo,
			LogFormat: LogFormatText,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Project: ProjectConfig{
			Name: project,
			Root: ".",
		},
		Docs: DocsConfig{
			Dir:          "docs",
			TemplatesDir: "templates",
		},
		Memory: MemoryConfig{
			AssistantPath: memory.DefaultAssistantPath(project),
			LocalPath:     filepath.Join(".ansuz", "memory.jsonl"),
		},
		SQLite: SQLiteConfig{
			Path: filepath.Join(".ansuz", "index.db"),
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		MCP: MCPConfig{
			Command: []string{"npx", "-y", "@itseasy21/mcp-knowledge-graph"},
		},
	}
}
