// Package config handles the user configuration file and its environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

// Config represents configuration stored in ~/.config/rpo/config.yml.
type Config struct {
	DBPath    string `yaml:"db_path,omitempty"`    // SQLite library file
	PDFDir    string `yaml:"pdf_dir,omitempty"`    // Base for relative PDF paths
	PDFReader string `yaml:"pdf_reader,omitempty"` // system, skim, preview, zathura, ...
}

const (
	// AppDir is the directory name under XDG_CONFIG_HOME and XDG_DATA_HOME.
	AppDir = "rpo"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"
	// DBFile is the default library file name.
	DBFile = "papers.db"
)

// Environment variables that override file values.
const (
	EnvDBPath    = "RPO_DB_PATH"
	EnvPDFDir    = "RPO_PDF_DIR"
	EnvPDFReader = "RPO_PDF_READER"
)

// Keys lists the settable configuration keys.
var Keys = []string{"db_path", "pdf_dir", "pdf_reader"}

// ValidReaders lists the supported PDF reader values.
var ValidReaders = []string{"system", "skim", "preview", "zathura", "evince", "okular"}

// ErrUnknownKey is returned for a key not in Keys.
var ErrUnknownKey = errors.New("unknown config key")

// Path returns the path to the config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/rpo/config.yml.
func Path() string {
	return filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), AppDir, ConfigFile)
}

// DefaultDBPath returns the library location used when none is configured.
// Respects XDG_DATA_HOME, defaults to ~/.local/share/rpo/papers.db.
func DefaultDBPath() string {
	return filepath.Join(xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share")), AppDir, DBFile)
}

func xdgDir(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return fallback
	}
	return filepath.Join(home, fallback)
}

// Load reads the config file at path.
// Returns an empty config (not an error) if the file doesn't exist.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &cfg, nil
}

// Resolve builds the effective configuration: the config file, then a
// .env file in the working directory, then RPO_* environment variables,
// then defaults. Paths come back with ~ expanded.
func Resolve(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Load .env file if present; real environment variables win.
	_ = godotenv.Load()

	cfg.ApplyEnv()
	if err := ValidatePDFReader(cfg.PDFReader); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// ApplyEnv overrides fields with any RPO_* environment variables that are set.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvDBPath); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv(EnvPDFDir); v != "" {
		c.PDFDir = v
	}
	if v := os.Getenv(EnvPDFReader); v != "" {
		c.PDFReader = v
	}
}

func (c *Config) applyDefaults() {
	if c.DBPath == "" {
		c.DBPath = DefaultDBPath()
	}
	if c.PDFReader == "" {
		c.PDFReader = "system"
	}
	c.DBPath = ExpandPath(c.DBPath)
	c.PDFDir = ExpandPath(c.PDFDir)
}

// Save writes the configuration to path atomically, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Get returns the value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "db_path":
		return c.DBPath, nil
	case "pdf_dir":
		return c.PDFDir, nil
	case "pdf_reader":
		return c.PDFReader, nil
	default:
		return "", fmt.Errorf("%w: %s (valid: %s)", ErrUnknownKey, key, strings.Join(Keys, ", "))
	}
}

// Set validates and stores a config value.
func (c *Config) Set(key, value string) error {
	switch key {
	case "db_path":
		c.DBPath = value
	case "pdf_dir":
		if err := ValidatePDFDir(value); err != nil {
			return err
		}
		c.PDFDir = value
	case "pdf_reader":
		if err := ValidatePDFReader(value); err != nil {
			return err
		}
		c.PDFReader = value
	default:
		return fmt.Errorf("%w: %s (valid: %s)", ErrUnknownKey, key, strings.Join(Keys, ", "))
	}
	return nil
}

// ValidatePDFDir checks that the PDF directory exists and is a directory.
func ValidatePDFDir(path string) error {
	if path == "" {
		return nil // Empty is allowed (paths are used as stored)
	}

	expandedPath := ExpandPath(path)

	info, err := os.Stat(expandedPath)
	if err != nil {
		return fmt.Errorf("path does not exist: %s", expandedPath)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", expandedPath)
	}

	return nil
}

// ValidatePDFReader checks that the reader value is valid.
func ValidatePDFReader(reader string) error {
	if reader == "" {
		return nil // Empty defaults to "system"
	}

	for _, valid := range ValidReaders {
		if reader == valid {
			return nil
		}
	}

	return fmt.Errorf("invalid pdf_reader: %s (valid: %v)", reader, ValidReaders)
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
