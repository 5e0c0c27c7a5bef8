package constants

import "time"

const (
	AppName            = "tally"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/tally/config.yaml"
	DefaultDBPath      = "~/.config/tally/tally.db"
	DefaultListenAddr  = "127.0.0.1:9464"
	Version            = "v0.3.0"

	// DBConnectionEnv overrides the database configured in the config file
	DBConnectionEnv = "TALLY_DB_CONNECTION"
	LogLevelEnv     = "TALLY_LOG_LEVEL"
	LogFormatEnv    = "TALLY_LOG_FORMAT"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// DateTimeFormat is accepted by the CLI for reference dates (YYYY-MM-DDTHH:MM)
	DateTimeFormat = "2006-01-02T15:04"

	// LegacyTimestampFormat is the space separated timestamp some fetchers emit
	LegacyTimestampFormat = "2006-01-02 15:04:05"

	// LocalTimestampFormat is an ISO timestamp without an offset, fraction optional
	LocalTimestampFormat = "2006-01-02T15:04:05.999999999"

	// Block granularity
	BlockSizeMinutes = 30
	BlockSize        = BlockSizeMinutes * time.Minute

	// MaxEventMinutes caps a single raw event at one week
	MaxEventMinutes = 7 * 24 * 60

	// Auto-fill placement
	FillTopicPrefix     = "Development: "
	EndOfWeekFillOffset = 6 * time.Hour
	EndOfWeekFillHour   = 12
	DistributedFillHour = 17

	// Block metadata and summary keys
	MergedDescriptionSep    = " | "
	MergedDescriptionFmt    = "%s: %s"
	MetadataMergedFrom      = "merged_from"
	MetadataAutoGenerated   = "auto_generated"
	MetadataFillHours       = "fill_hours"
	MetadataDistributed     = "distributed"
	SummaryKeyWeekStart     = "week_start"
	SummaryKeyWeekEnd       = "week_end"
	SummaryKeyHoursFilled   = "hours_filled"
	SummaryKeyHoursBySource = "hours_by_source"

	// Scheduler job names
	JobFetchAndProcess = "fetch_and_process"
	JobWeeklyFillUp    = "weekly_fillup"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "tally-"
	BackupFileSuffix = ".db"

	// Log file rotation
	LogDirName    = "logs"
	LogFileName   = "tally.log"
	LogMaxSizeMB  = 10
	LogMaxBackups = 3
	LogMaxAgeDays = 28

	// Metrics server timeouts
	HTTPReadTimeout  = 10 * time.Second
	HTTPWriteTimeout = 10 * time.Second
)
