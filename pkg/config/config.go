package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/rubiojr/explore/pkg/explore"
	"github.com/rubiojr/explore/pkg/page"
)

//go:embed config.toml.sample
var configTemplate string

type Config struct {
	StorageDir string           `toml:"storage_dir"`
	Timezone   string           `toml:"timezone,omitempty"`
	Server     ServerConfig     `toml:"server"`
	Client     ClientConfig     `toml:"client"`
	Categories []CategoryConfig `toml:"categories"`
}

type ServerConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Endpoint string `toml:"endpoint"`
}

type ClientConfig struct {
	BaseURL string   `toml:"base_url"`
	Timeout Duration `toml:"timeout"`
}

// CategoryConfig is one option of the category selector.
type CategoryConfig struct {
	Value string `toml:"value"`
	Text  string `toml:"text"`
}

type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

const (
	DefaultHost    = "127.0.0.1"
	DefaultPort    = 8080
	DefaultTimeout = 30 * time.Second
)

func GetDefaultConfig() (*Config, error) {
	storageDir, err := GetDefaultStorageDir()
	if err != nil {
		return nil, fmt.Errorf("getting default storage directory: %w", err)
	}
	c := &Config{StorageDir: storageDir}
	c.applyDefaults()
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.Endpoint == "" {
		c.Server.Endpoint = explore.DefaultEndpoint
	}
	if c.Client.BaseURL == "" {
		c.Client.BaseURL = fmt.Sprintf("http://%s:%d", c.Server.Host, c.Server.Port)
	}
	if c.Client.Timeout.Duration == 0 {
		c.Client.Timeout = Duration{DefaultTimeout}
	}
	if len(c.Categories) == 0 {
		for _, o := range page.DefaultCategories() {
			c.Categories = append(c.Categories, CategoryConfig{Value: o.Value, Text: o.Text})
		}
	}
}

func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return GetDefaultConfig()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if config.StorageDir == "" {
		storageDir, err := GetDefaultStorageDir()
		if err != nil {
			return nil, fmt.Errorf("getting default storage directory: %w", err)
		}
		config.StorageDir = storageDir
	}
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks values that LoadConfig cannot default.
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if !strings.HasPrefix(c.Server.Endpoint, "/") {
		return fmt.Errorf("server endpoint %q must start with /", c.Server.Endpoint)
	}
	seen := make(map[string]bool, len(c.Categories))
	for i, cat := range c.Categories {
		v := strings.TrimSpace(cat.Value)
		if v == "" {
			return fmt.Errorf("category %d: value is required", i)
		}
		if seen[v] {
			return fmt.Errorf("category %q defined twice", v)
		}
		seen[v] = true
	}
	return nil
}

// Location returns the time zone used to display dataset dates. An empty
// timezone means local time.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// CategoryOptions returns the configured categories as selector options. The
// option text falls back to the value.
func (c *Config) CategoryOptions() []page.Option {
	opts := make([]page.Option, 0, len(c.Categories))
	for _, cat := range c.Categories {
		text := cat.Text
		if text == "" {
			text = cat.Value
		}
		opts = append(opts, page.Option{Value: cat.Value, Text: text})
	}
	return opts
}

// CategoryLabels maps category values to their display text.
func (c *Config) CategoryLabels() map[string]string {
	labels := make(map[string]string, len(c.Categories))
	for _, o := range c.CategoryOptions() {
		labels[o.Value] = o.Text
	}
	return labels
}

// DBPath is the dataset database inside the storage directory.
func (c *Config) DBPath() string {
	return filepath.Join(c.StorageDir, "explore.db")
}

// ListenAddr is the host:port the server binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) SaveTemplateConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	template, err := c.generateConfigTemplate()
	if err != nil {
		return fmt.Errorf("generating config template: %w", err)
	}
	return os.WriteFile(configPath, []byte(template), 0644)
}

func (c *Config) generateConfigTemplate() (string, error) {
	storageDir := c.StorageDir
	if storageDir == "" {
		var err error
		storageDir, err = GetDefaultStorageDir()
		if err != nil {
			return "", fmt.Errorf("getting default storage directory: %w", err)
		}
	}

	return strings.Replace(configTemplate, "/home/user/.local/share/explore", storageDir, 1), nil
}

// GetDefaultStorageDir returns the default storage directory for databases
func GetDefaultStorageDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	dir := filepath.Join(dataDir, "explore")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating storage directory %s: %w", dir, err)
	}
	return dir, nil
}

// GetConfigDir returns the configuration directory
func GetConfigDir() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	dir := filepath.Join(configDir, "explore")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return dir, nil
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}
