package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Backend  BackendConfig  `yaml:"backend"`
	Export   ExportConfig   `yaml:"export"`
	Form     FormConfig     `yaml:"form"`
	Log      LogConfig      `yaml:"log"`

	// ConfigPath is the path the config was loaded from (not serialized)
	ConfigPath string `yaml:"-"`
}

// ServerConfig is where the backend listens
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// BackendConfig is how the form reaches the backend
type BackendConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`

	// JournalSize is how many auto-save outcomes the form remembers
	JournalSize int `yaml:"journal_size"`
}

type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// FormConfig lists the cities offered when adding a section
type FormConfig struct {
	Cities []string `yaml:"cities"`
}

type LogConfig struct {
	Verbose bool `yaml:"verbose"`
	// File receives the form's logs; the terminal belongs to the UI.
	File string `yaml:"file"`
}

// DefaultPaths are searched in order when no explicit path is given
var DefaultPaths = []string{
	"vehiclelog.yaml",
	"configs/vehiclelog.yaml",
	"/etc/vehiclelog/vehiclelog.yaml",
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 5000,
		},
		Database: DatabaseConfig{
			Path: "vehicle_reports.db",
		},
		Backend: BackendConfig{
			URL:         "http://localhost:5000",
			Timeout:     15 * time.Second,
			JournalSize: 100,
		},
		Export: ExportConfig{
			Dir: ".",
		},
		Form: FormConfig{
			Cities: []string{"Pune", "Mumbai", "Nagpur", "Nashik", "Aurangabad"},
		},
		Log: LogConfig{
			File: "vehiclelog.log",
		},
	}
}

// Load reads the config at path, or the first of DefaultPaths that exists
// when path is empty. Missing keys keep their defaults.
func Load(path string) (*Config, error) {
	paths := DefaultPaths
	if path != "" {
		paths = []string{path}
	}

	var data []byte
	var err error
	var loadedPath string

	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			loadedPath = p
			break
		}
	}

	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", loadedPath, err)
	}

	cfg.ConfigPath = loadedPath
	cfg.applyEnvOverrides()
	return cfg, nil
}

// LoadOrDefault is Load, falling back to Default when no config file exists.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) && path == "" {
		cfg = Default()
		cfg.applyEnvOverrides()
		return cfg, nil
	}
	return cfg, err
}

// applyEnvOverrides lets the hosting platform pick the port through PORT.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			c.Server.Port = port
		}
	}
}

// Save writes the configuration to path as yaml.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
