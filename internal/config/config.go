package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const FileName = "coachline.yml"

// Config models coachline.yml.
type Config struct {
	API struct {
		BaseURL string        `yaml:"base_url"`
		Version string        `yaml:"version"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"api"`
	Editor struct {
		Debounce time.Duration `yaml:"debounce"`
	} `yaml:"editor"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	Metrics struct {
		Textfile string `yaml:"textfile"`
	} `yaml:"metrics"`
}

// Default returns the built-in configuration.
func Default() *Config {
	var cfg Config
	cfg.API.BaseURL = "http://localhost:4000"
	cfg.API.Version = "0.0.1"
	cfg.API.Timeout = 10 * time.Second
	cfg.Editor.Debounce = time.Second
	cfg.Log.Level = "info"
	cfg.Log.Pretty = true
	return &cfg
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("config.api.base_url is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("config.api.base_url must be an http(s) url, got %q", c.API.BaseURL)
	}
	if c.API.Version == "" {
		return fmt.Errorf("config.api.version is required")
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("config.api.timeout must not be negative")
	}
	if c.Editor.Debounce <= 0 {
		return fmt.Errorf("config.editor.debounce must be positive")
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level)); err != nil {
		return fmt.Errorf("config.log.level %q is not a log level", c.Log.Level)
	}
	return nil
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, FileName)
}

// Load reads and validates config from workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; create one with coach config init", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// LoadOptional returns the defaults if the config file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	data, err := os.ReadFile(Path(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// FromYAML parses and validates config from raw YAML bytes. Missing keys
// keep their default.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

// Override applies values set through flags or COACHLINE_* variables.
func (c *Config) Override(v *viper.Viper) error {
	if v.IsSet("api.base_url") {
		c.API.BaseURL = v.GetString("api.base_url")
	}
	if v.IsSet("api.version") {
		c.API.Version = v.GetString("api.version")
	}
	if v.IsSet("api.timeout") {
		c.API.Timeout = v.GetDuration("api.timeout")
	}
	if v.IsSet("editor.debounce") {
		c.Editor.Debounce = v.GetDuration("editor.debounce")
	}
	if v.IsSet("log.level") {
		c.Log.Level = v.GetString("log.level")
	}
	if v.IsSet("log.pretty") {
		c.Log.Pretty = v.GetBool("log.pretty")
	}
	if v.IsSet("metrics.textfile") {
		c.Metrics.Textfile = v.GetString("metrics.textfile")
	}
	return c.Validate()
}

// YAML renders the config the way it is stored on disk.
func (c *Config) YAML() (string, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Write stores cfg under workspace, refusing to replace an existing file
// unless force is set.
func Write(workspace string, cfg *Config, force bool) (string, error) {
	path := Path(workspace)
	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("config %s already exists; use --force to replace it", path)
	}
	out, err := cfg.YAML()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
