package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/julianstephens/tally/internal/constants"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database != constants.DefaultDBPath || cfg.Listen != constants.DefaultListenAddr {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0o600 {
		t.Errorf("config file mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	in := &Config{
		Database: "postgresql://tally@db.internal:5432/tally",
		Listen:   ":9100",
		Log:      LogConfig{Debug: true, Level: "info", Format: "json"},
	}
	if err := in.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	out, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *out != *in {
		t.Errorf("Load() = %+v, want %+v", out, in)
	}
}

func TestLoadNormalizesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log:\n  format: XML\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database != constants.DefaultDBPath {
		t.Errorf("Database = %q, want default", cfg.Database)
	}
	if cfg.Log.Format != "text" || cfg.Log.Level != "warn" {
		t.Errorf("Log = %+v, want text/warn", cfg.Log)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("database: [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() expected error for invalid YAML")
	}
}

func TestLoadEmptyPath(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Error("Load(\"\") expected error")
	}
	if err := Save("", DefaultConfig()); err == nil {
		t.Error("Save(\"\") expected error")
	}
	if err := Save(filepath.Join(t.TempDir(), "c.yaml"), nil); err == nil {
		t.Error("Save(nil) expected error")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		constants.DBConnectionEnv: "host=localhost dbname=tally",
		constants.LogLevelEnv:     "debug",
	}
	cfg := DefaultConfig()
	cfg.ApplyEnv(func(k string) string { return env[k] })

	if cfg.Database != "host=localhost dbname=tally" {
		t.Errorf("Database = %q", cfg.Database)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Log.Format = %q, want unchanged", cfg.Log.Format)
	}
	if !cfg.IsPostgres() {
		t.Error("IsPostgres() = false for a DSN")
	}
}

func TestIsPostgresConnString(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"postgres://u@h/db", true},
		{"postgresql://u@h/db", true},
		{"host=localhost user=tally", true},
		{"dbname=tally", true},
		{"~/.config/tally/tally.db", false},
		{"/var/lib/tally/data=1.db", false},
		{"keyring", false},
	}
	for _, tt := range tests {
		if got := IsPostgresConnString(tt.in); got != tt.want {
			t.Errorf("IsPostgresConnString(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	got, err := ExpandHome("~/.config/tally/tally.db")
	if err != nil {
		t.Fatalf("ExpandHome() error = %v", err)
	}
	if got != filepath.Join(home, ".config/tally/tally.db") {
		t.Errorf("ExpandHome() = %q", got)
	}

	if got, _ := ExpandHome("/tmp/x.db"); got != "/tmp/x.db" {
		t.Errorf("ExpandHome() changed an absolute path: %q", got)
	}
	if got, _ := ExpandHome("~user/x"); got != "~user/x" {
		t.Errorf("ExpandHome() expanded another user's home: %q", got)
	}
}
