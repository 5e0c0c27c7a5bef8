package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/tally/internal/constants"
)

// KeyringDatabase as the database value means the connection string lives
// in the OS keyring.
const KeyringDatabase = "keyring"

// LogConfig controls the rotating log file.
type LogConfig struct {
	// Debug mirrors log output to stderr and enables caller reporting.
	Debug bool `yaml:"debug" json:"debug"`
	// Level is debug, info, warn or error.
	Level string `yaml:"level" json:"level"`
	// Format is text, json or logfmt.
	Format string `yaml:"format" json:"format"`
	// Dir overrides the log directory. Empty means "logs" next to the config file.
	Dir string `yaml:"dir,omitempty" json:"dir,omitempty"`
}

// Config is the application configuration file. Processing settings such as
// the work week live in the database, not here.
type Config struct {
	// Database is a SQLite file path, a PostgreSQL URL or DSN without a
	// password, or "keyring".
	Database string `yaml:"database" json:"database"`

	// Listen is the address of the health and metrics endpoint started by "serve".
	Listen string `yaml:"listen" json:"listen"`

	Log LogConfig `yaml:"log" json:"log"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Database: constants.DefaultDBPath,
		Listen:   constants.DefaultListenAddr,
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Normalize fills in missing values so partially written files still load.
func (c *Config) Normalize() {
	if c.Database == "" {
		c.Database = constants.DefaultDBPath
	}
	if c.Listen == "" {
		c.Listen = constants.DefaultListenAddr
	}
	if c.Log.Level == "" {
		c.Log.Level = "warn"
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json", "logfmt":
		c.Log.Format = strings.ToLower(c.Log.Format)
	default:
		c.Log.Format = "text"
	}
}

// ApplyEnv overrides file values with TALLY_* environment variables.
// getenv is os.Getenv outside of tests.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(constants.DBConnectionEnv); v != "" {
		c.Database = v
	}
	if v := getenv(constants.LogLevelEnv); v != "" {
		c.Log.Level = v
	}
	if v := getenv(constants.LogFormatEnv); v != "" {
		c.Log.Format = v
	}
}

// IsPostgres reports whether Database names a PostgreSQL server.
func (c *Config) IsPostgres() bool {
	return IsPostgresConnString(c.Database)
}

// IsPostgresConnString accepts postgres:// and postgresql:// URLs and
// key=value DSNs carrying a host or dbname.
func IsPostgresConnString(s string) bool {
	if strings.HasPrefix(s, "postgres://") || strings.HasPrefix(s, "postgresql://") {
		return true
	}
	for _, field := range strings.Fields(s) {
		if k, _, ok := strings.Cut(field, "="); ok {
			switch strings.ToLower(k) {
			case "host", "dbname":
				return true
			}
		}
	}
	return false
}

// ExpandHome replaces a leading "~" with the current user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600
//     permissions and returned.
//   - Otherwise the YAML is read and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically via a temp file and rename. The parent
// directory is created with 0700 and the file ends up 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".tally-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
