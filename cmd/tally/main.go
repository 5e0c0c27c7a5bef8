package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/cli/backups"
	"github.com/julianstephens/tally/internal/cli/events"
	"github.com/julianstephens/tally/internal/cli/process"
	"github.com/julianstephens/tally/internal/cli/settings"
	"github.com/julianstephens/tally/internal/cli/system"
	"github.com/julianstephens/tally/internal/config"
	"github.com/julianstephens/tally/internal/constants"
	apperrors "github.com/julianstephens/tally/internal/errors"
	"github.com/julianstephens/tally/internal/logger"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"Config file path." type:"string" default:"~/.config/tally/config.yaml"`
	Database string `help:"SQLite path, PostgreSQL connection string, or 'keyring'. Overrides the config file. PostgreSQL credentials must NOT be embedded; use the OS keyring, .pgpass or PGPASSWORD."`
	Debug    bool   `help:"Log at debug level and mirror the log to stderr."`

	Init     system.InitCmd       `cmd:"" help:"Initialize tally storage."`
	Migrate  system.MigrateCmd    `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd     `cmd:"" help:"Run health checks and diagnostics."`
	Serve    system.ServeCmd      `cmd:"" help:"Run the scheduler and the health/metrics endpoint."`
	Jobs     system.JobsCmd       `cmd:"" help:"Run scheduler jobs by hand and inspect past runs."`
	Keyring  system.KeyringCmd    `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
	Process  process.ProcessCmd   `cmd:"" help:"Process the raw events of one work week into time blocks."`
	Week     process.WeekCmd      `cmd:"" help:"Show the work-week window for a date."`
	Blocks   process.BlocksCmd    `cmd:"" help:"Show or delete the stored time blocks of a week."`
	Summary  process.SummaryCmd   `cmd:"" help:"Show week summaries." default:"1"`
	Settings settings.SettingsCmd `cmd:"" help:"Manage processing settings."`
	Events   struct {
		Import events.ImportCmd `cmd:"" help:"Import raw events from a JSON file."`
		List   events.ListCmd   `cmd:"" help:"List the raw events of a week." default:"1"`
	} `cmd:"" help:"Manage raw activity events."`
	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Turns raw activity events into weekly 30-minute time blocks"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	configPath, err := config.ExpandHome(CLI.Config)
	if err != nil {
		apperrors.Fatal(err)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		apperrors.Fatal(fmt.Errorf("failed to load config: %w", err))
	}
	cfg.ApplyEnv(os.Getenv)
	if CLI.Database != "" {
		cfg.Database = CLI.Database
	}

	logDir := cfg.Log.Dir
	if logDir != "" {
		if logDir, err = config.ExpandHome(logDir); err != nil {
			apperrors.Fatal(err)
		}
	}
	if err := logger.Init(logger.Config{
		Debug:     cfg.Log.Debug || CLI.Debug,
		ConfigDir: filepath.Dir(configPath),
		LogDir:    logDir,
		Level:     debugLevel(cfg.Log.Level, CLI.Debug),
		Format:    cfg.Log.Format,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	appCtx := &cli.Context{
		Config:     cfg,
		ConfigPath: configPath,
	}

	// keyring commands work without a store, init creates its own
	path := ""
	if cmd := ctx.Selected(); cmd != nil {
		path = cmd.Path()
	}
	if !strings.HasPrefix(path, "keyring") {
		store, err := cli.OpenStore(cfg)
		if err != nil {
			apperrors.Fatal(err)
		}
		appCtx.Store = store
		if path != "init" {
			if err := store.Load(); err != nil {
				apperrors.Fatal(err)
			}
		}
	}

	err = ctx.Run(appCtx)
	if appCtx.Store != nil {
		if cerr := appCtx.Store.Close(); cerr != nil {
			logger.Warn("Failed to close store", "error", cerr)
		}
	}
	if err != nil {
		apperrors.Fatal(err)
	}
}

func debugLevel(level string, debug bool) string {
	if debug {
		return "debug"
	}
	return level
}
