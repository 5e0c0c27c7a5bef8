package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/tally/internal/backup"
	"github.com/julianstephens/tally/internal/config"
	"github.com/julianstephens/tally/internal/keyring"
	"github.com/julianstephens/tally/internal/logger"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/storage"
	"github.com/julianstephens/tally/internal/storage/postgres"
	"github.com/julianstephens/tally/internal/storage/sqlite"
	"github.com/julianstephens/tally/internal/utils"
)

type Context struct {
	Store      storage.Provider
	Config     *config.Config
	ConfigPath string
}

// IsSQLite reports whether the store is a local database file.
func (c *Context) IsSQLite() bool {
	_, ok := c.Store.(*sqlite.Store)
	return ok
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	if !c.IsSQLite() {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.CreateBackup(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// LoadSettings reads and validates the processing settings
func (c *Context) LoadSettings() (models.Settings, error) {
	settings, err := c.Store.GetSettings()
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return models.Settings{}, err
	}
	return settings, nil
}

// ReferenceDate parses an optional --date flag in the settings timezone.
// An empty value yields nil, meaning now.
func ReferenceDate(value string, settings models.Settings) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		return nil, err
	}
	t, err := utils.ParseReferenceDate(value, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ResolveDatabase turns the configured database value into a SQLite path or
// a PostgreSQL connection string, reading the keyring when asked to.
func ResolveDatabase(cfg *config.Config) (string, error) {
	db := cfg.Database
	fromKeyring := false
	if db == config.KeyringDatabase {
		connStr, err := keyring.GetConnectionString()
		if err != nil {
			if errors.Is(err, keyring.ErrNotFound) {
				return "", errors.New("database is set to keyring but no connection string is stored; run 'tally keyring set'")
			}
			return "", err
		}
		db = connStr
		fromKeyring = true
	}

	if !config.IsPostgresConnString(db) {
		return config.ExpandHome(db)
	}

	if valid, err := postgres.ValidateConnString(db); !valid {
		// Passwords are tolerated only when they come from the encrypted keyring
		if !(fromKeyring && errors.Is(err, postgres.ErrEmbeddedCredentials)) {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return "", fmt.Errorf("%w; store it with 'tally keyring set' or use .pgpass / PGPASSWORD", err)
			}
			return "", err
		}
	}
	return db, nil
}

// OpenStore builds the storage provider for cfg without loading it
func OpenStore(cfg *config.Config) (storage.Provider, error) {
	db, err := ResolveDatabase(cfg)
	if err != nil {
		return nil, err
	}
	if config.IsPostgresConnString(db) {
		return postgres.New(db), nil
	}
	return sqlite.NewStore(db), nil
}
