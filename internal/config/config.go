package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config represents the console configuration
type Config struct {
	// Backend
	APIBaseURL            string `json:"api_base_url" validate:"required,url"`
	Token                 string `json:"token"`
	RequestTimeoutSeconds int    `json:"request_timeout_seconds" validate:"gte=0,lte=300"`

	// UI preferences
	Theme string `json:"theme" validate:"oneof=gate night"`
	Debug bool   `json:"debug"`

	// Engine tuning
	DebounceMS     int `json:"debounce_ms" validate:"gte=50,lte=5000"`
	MinQueryLength int `json:"min_query_length" validate:"gte=1,lte=10"`
	QueueCapacity  int `json:"queue_capacity" validate:"gte=1,lte=100"`
	PageSize       int `json:"page_size" validate:"gte=1,lte=100"`

	// LogFile is relative to the project directory unless absolute.
	LogFile string `json:"log_file" validate:"required"`
}

// DefaultConfig returns a config with the gate's defaults
func DefaultConfig() *Config {
	return &Config{
		APIBaseURL:            "http://localhost:8089/api",
		Token:                 "${FASTTRACK_TOKEN}",
		RequestTimeoutSeconds: 0,
		Theme:                 "gate",
		Debug:                 false,
		DebounceMS:            300,
		MinQueryLength:        2,
		QueueCapacity:         10,
		PageSize:              10,
		LogFile:               ".fasttrack/console.log",
	}
}

// Debounce returns DebounceMS as a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// RequestTimeout returns the HTTP timeout; zero means none.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks every field against its constraints and reports all
// violations at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		if fe.Param() != "" {
			msgs[i] = fmt.Sprintf("%s: must satisfy %s=%s (got %v)", fe.Field(), fe.Tag(), fe.Param(), fe.Value())
		} else {
			msgs[i] = fmt.Sprintf("%s: must satisfy %s (got %v)", fe.Field(), fe.Tag(), fe.Value())
		}
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// Manager handles configuration loading and saving
type Manager struct {
	projectPath string
	configPath  string
	config      *Config
	// raw keeps the unexpanded values so Save never writes secrets pulled
	// from the environment back to disk.
	raw *Config
}

// NewManager creates a manager for .fasttrack/config.json under projectPath
func NewManager(projectPath string) *Manager {
	dir := filepath.Join(projectPath, ".fasttrack")
	return &Manager{
		projectPath: projectPath,
		configPath:  filepath.Join(dir, "config.json"),
		config:      DefaultConfig(),
		raw:         DefaultConfig(),
	}
}

// NewManagerForFile creates a manager for an explicit config file path.
func NewManagerForFile(projectPath, configPath string) *Manager {
	m := NewManager(projectPath)
	m.configPath = configPath
	return m
}

// Path returns the config file location.
func (m *Manager) Path() string {
	return m.configPath
}

// Load reads .env and the config file, creating defaults if needed. Values
// may reference environment variables as $VAR or ${VAR}.
func (m *Manager) Load() error {
	if err := m.loadDotenv(); err != nil {
		return err
	}

	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := m.ensureGitignore(); err != nil {
		return fmt.Errorf("failed to create .gitignore: %w", err)
	}

	if _, err := os.Stat(m.configPath); os.IsNotExist(err) {
		m.raw = DefaultConfig()
		if err := m.Save(); err != nil {
			return err
		}
	} else {
		data, err := os.ReadFile(m.configPath)
		if err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		// Start from defaults so fields missing from older files keep them.
		raw := DefaultConfig()
		if err := json.Unmarshal(data, raw); err != nil {
			return fmt.Errorf("failed to parse config JSON: %w", err)
		}
		m.raw = raw
	}

	expanded := *m.raw
	expandEnvVars(&expanded)
	m.config = &expanded
	return nil
}

// Save writes the current configuration to disk
func (m *Manager) Save() error {
	data, err := json.MarshalIndent(m.raw, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(m.configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Get returns the current (expanded) configuration
func (m *Manager) Get() *Config {
	return m.config
}

// LogPath resolves LogFile against the project directory.
func (m *Manager) LogPath() string {
	if filepath.IsAbs(m.config.LogFile) {
		return m.config.LogFile
	}
	return filepath.Join(m.projectPath, m.config.LogFile)
}

// Set updates a configuration value, validates and saves
func (m *Manager) Set(key, value string) error {
	next := *m.raw
	switch key {
	case "api_base_url":
		next.APIBaseURL = value
	case "token":
		next.Token = value
	case "theme":
		next.Theme = value
	case "debug":
		next.Debug = value == "true"
	case "debounce_ms", "min_query_length", "queue_capacity", "page_size", "request_timeout_seconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s must be a number: %w", key, err)
		}
		switch key {
		case "debounce_ms":
			next.DebounceMS = n
		case "min_query_length":
			next.MinQueryLength = n
		case "queue_capacity":
			next.QueueCapacity = n
		case "page_size":
			next.PageSize = n
		case "request_timeout_seconds":
			next.RequestTimeoutSeconds = n
		}
	case "log_file":
		next.LogFile = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}

	expanded := next
	expandEnvVars(&expanded)
	if err := expanded.Validate(); err != nil {
		return err
	}
	m.raw = &next
	m.config = &expanded
	return m.Save()
}

func (m *Manager) loadDotenv() error {
	path := filepath.Join(m.projectPath, ".env")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	// Existing environment variables win over .env values.
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// ensureGitignore keeps logs out of version control
func (m *Manager) ensureGitignore() error {
	gitignorePath := filepath.Join(filepath.Dir(m.configPath), ".gitignore")
	if _, err := os.Stat(gitignorePath); !os.IsNotExist(err) {
		return nil
	}

	content := `# fasttrack console data
*.log
*.tmp

!config.json
!.gitignore
`
	return os.WriteFile(gitignorePath, []byte(content), 0o644)
}

var envRef = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

func expandEnvVars(c *Config) {
	c.APIBaseURL = expandString(c.APIBaseURL)
	c.Theme = expandString(c.Theme)
	c.LogFile = expandString(c.LogFile)

	// An unset token variable means no token, not a literal "$VAR".
	c.Token = expandString(c.Token)
	if envRef.MatchString(c.Token) {
		c.Token = ""
	}
}

// expandString expands $VAR and ${VAR}; unset variables are left as written
func expandString(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimPrefix(match, "$")
		name = strings.TrimSuffix(strings.TrimPrefix(name, "{"), "}")
		if value, ok := os.LookupEnv(name); ok && value != "" {
			return value
		}
		return match
	})
}
