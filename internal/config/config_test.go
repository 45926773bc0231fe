package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var envKeys = []string{
	"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "TELEGRAM_API_URL", "TARGET_URL",
	"VACANCY_BASE_URL", "CHECK_INTERVAL", "SCHEDULE", "REQUEST_TIMEOUT", "USER_AGENT",
	"NOTIFIER", "STORE_TYPE", "STATE_FILE", "DATABASE_URL", "COMMIT_POLICY",
	"SEED_ON_FIRST_RUN", "HTTP_ADDR", "MIN_FETCH_GAP",
}

// clearEnv blanks every recognized variable so the host environment cannot
// leak into a test. Empty values are treated as unset by Load.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vacancywatch.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	cfg, err := Load(DefaultConfigFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TargetURL != DefaultTargetURL {
		t.Errorf("TargetURL = %q, want default", cfg.TargetURL)
	}
	if cfg.CheckInterval != 600*time.Second {
		t.Errorf("CheckInterval = %v, want 600s", cfg.CheckInterval)
	}
	if cfg.Store.Type != StoreFile || cfg.Store.Path != DefaultStateFile {
		t.Errorf("Store = %+v, want file store at %s", cfg.Store, DefaultStateFile)
	}
	if cfg.CommitPolicy != CommitAlways {
		t.Errorf("CommitPolicy = %q, want %q", cfg.CommitPolicy, CommitAlways)
	}
	if cfg.Notification.Type != NotifierTelegram {
		t.Errorf("Notification.Type = %q, want telegram", cfg.Notification.Type)
	}
	if cfg.RequestTimeout != 0 {
		t.Errorf("RequestTimeout = %v, want 0", cfg.RequestTimeout)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
target_url: https://example.com/from-file
check_interval: 5m
telegram:
  bot_token: file-token
  chat_id: "-100"
store:
  type: sqlite
`)
	t.Setenv("TARGET_URL", "https://example.com/from-env")
	t.Setenv("CHECK_INTERVAL", "30")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TargetURL != "https://example.com/from-env" {
		t.Errorf("TargetURL = %q, want env value", cfg.TargetURL)
	}
	if cfg.CheckInterval != 30*time.Second {
		t.Errorf("CheckInterval = %v, want 30s", cfg.CheckInterval)
	}
	if cfg.Telegram.BotToken != "file-token" {
		t.Errorf("BotToken = %q, want file value", cfg.Telegram.BotToken)
	}
	if cfg.Telegram.ChatID != "42" {
		t.Errorf("ChatID = %q, want 42", cfg.Telegram.ChatID)
	}
	if cfg.Store.Path != DefaultSQLitePath {
		t.Errorf("Store.Path = %q, want sqlite default", cfg.Store.Path)
	}
}

func TestLoad_ExpandsEnvInFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("VW_TEST_TOKEN", "expanded-secret")
	path := writeConfig(t, `
telegram:
  bot_token: ${VW_TEST_TOKEN}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telegram.BotToken != "expanded-secret" {
		t.Errorf("BotToken = %q, want expanded value", cfg.Telegram.BotToken)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err == nil {
		t.Fatal("Load: expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "check_interval: [broken")

	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected error for invalid YAML")
	}
}

func TestLoad_InvalidCheckInterval(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	for _, v := range []string{"ten", "0", "-5"} {
		t.Setenv("CHECK_INTERVAL", v)
		if _, err := Load(DefaultConfigFile); err == nil {
			t.Errorf("CHECK_INTERVAL=%q: expected error", v)
		}
	}
}

func TestLoad_ZeroIntervalInFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "check_interval: 0s\n")

	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected validation error for zero check_interval")
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown commit policy", "commit_policy: sometimes\n"},
		{"unknown store", "store:\n  type: redis\n"},
		{"postgres without dsn", "store:\n  type: postgres\n"},
		{"unknown notifier", "notification:\n  type: email\n"},
		{"bad cron expression", "schedule: \"every tuesday\"\n"},
		{"negative timeout", "request_timeout: -1s\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			if _, err := Load(writeConfig(t, tt.yaml)); err == nil {
				t.Errorf("Load: expected validation error")
			}
		})
	}
}

func TestLoad_MissingTokenIsNotAnError(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	cfg, err := Load(DefaultConfigFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telegram.BotToken != "" {
		t.Errorf("BotToken = %q, want empty", cfg.Telegram.BotToken)
	}
}

func TestLoad_PostgresWithDSN(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	t.Setenv("STORE_TYPE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/vacancies")
	t.Setenv("COMMIT_POLICY", "delivered")
	t.Setenv("SEED_ON_FIRST_RUN", "true")
	t.Setenv("SCHEDULE", "*/10 * * * *")

	cfg, err := Load(DefaultConfigFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Type != StorePostgres || cfg.Store.DSN == "" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.CommitPolicy != CommitDelivered {
		t.Errorf("CommitPolicy = %q", cfg.CommitPolicy)
	}
	if !cfg.SeedOnFirstRun {
		t.Error("SeedOnFirstRun = false, want true")
	}
	if cfg.Schedule != "*/10 * * * *" {
		t.Errorf("Schedule = %q", cfg.Schedule)
	}
}

func TestLoad_MinFetchGap(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	cfg, err := Load(DefaultConfigFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MinFetchGap != DefaultMinFetchGap {
		t.Errorf("MinFetchGap = %v, want default %v", cfg.MinFetchGap, DefaultMinFetchGap)
	}

	// An explicit zero disables the throttle instead of falling back to the default.
	path := writeConfig(t, "min_fetch_gap: 0s\n")
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MinFetchGap != 0 {
		t.Errorf("MinFetchGap = %v, want 0", cfg.MinFetchGap)
	}

	t.Setenv("MIN_FETCH_GAP", "-1s")
	if _, err := Load(path); err == nil {
		t.Error("expected error for negative MIN_FETCH_GAP")
	}
}

func TestLoad_MinFetchGapNeverExceedsInterval(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	t.Setenv("CHECK_INTERVAL", "5")

	cfg, err := Load(DefaultConfigFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CheckInterval != 5*time.Second {
		t.Fatalf("CheckInterval = %v, want 5s", cfg.CheckInterval)
	}
	if cfg.MinFetchGap != 5*time.Second {
		t.Errorf("MinFetchGap = %v, want clamped to 5s", cfg.MinFetchGap)
	}
}
