package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTargetURL      = "https://qsamruk.kz/company/too-pgu-turkestan"
	DefaultVacancyBaseURL = "https://qsamruk.kz/vacancy/"
	DefaultTelegramAPIURL = "https://api.telegram.org"
	DefaultCheckInterval  = 600 * time.Second
	DefaultStateFile      = "known_vacancies.txt"
	DefaultSQLitePath     = "vacancies.db"
	DefaultConfigFile     = "vacancywatch.yaml"
	DefaultMinFetchGap    = 10 * time.Second
)

// Store backends.
const (
	StoreFile     = "file"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Notifier kinds.
const (
	NotifierTelegram = "telegram"
	NotifierLog      = "log"
)

// Commit policies decide whether the known set advances when a notification
// could not be delivered.
const (
	CommitAlways    = "always"
	CommitDelivered = "delivered"
)

// Config is the root configuration for the vacancy watcher. It is built once
// at startup and passed to each component.
type Config struct {
	TargetURL      string
	VacancyBaseURL string        // detail link is VacancyBaseURL + id
	CheckInterval  time.Duration // pause between cycles
	Schedule       string        // cron expression; overrides CheckInterval when set
	RequestTimeout time.Duration // zero leaves the transport default
	MinFetchGap    time.Duration // minimum pause between two page requests, zero disables
	UserAgent      string
	CommitPolicy   string
	SeedOnFirstRun bool
	HTTPAddr       string // status API listen address, empty disables it

	Telegram     TelegramConfig
	Notification NotificationConfig
	Store        StoreConfig
	Extract      ExtractConfig
}

// TelegramConfig holds the bot credential and destination chat.
type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
	APIURL   string `yaml:"api_url"`
}

// NotificationConfig selects the notifier.
type NotificationConfig struct {
	Type string `yaml:"type"` // "telegram" or "log"
}

// StoreConfig selects where the known set is persisted.
type StoreConfig struct {
	Type string `yaml:"type"` // "file", "sqlite" or "postgres"
	Path string `yaml:"path"` // file or sqlite database path
	DSN  string `yaml:"dsn"`  // postgres connection string
}

// ExtractConfig describes how vacancies are located on the page.
type ExtractConfig struct {
	ContainerSelector string `yaml:"container_selector"`
	Marker            string `yaml:"marker"`
}

// rawConfig is used for YAML unmarshaling (snake_case fields and durations as strings).
type rawConfig struct {
	TargetURL      string             `yaml:"target_url"`
	VacancyBaseURL string             `yaml:"vacancy_base_url"`
	CheckInterval  string             `yaml:"check_interval"`
	Schedule       string             `yaml:"schedule"`
	RequestTimeout string             `yaml:"request_timeout"`
	MinFetchGap    string             `yaml:"min_fetch_gap"`
	UserAgent      string             `yaml:"user_agent"`
	CommitPolicy   string             `yaml:"commit_policy"`
	SeedOnFirstRun bool               `yaml:"seed_on_first_run"`
	HTTPAddr       string             `yaml:"http_addr"`
	Telegram       TelegramConfig     `yaml:"telegram"`
	Notification   NotificationConfig `yaml:"notification"`
	Store          StoreConfig        `yaml:"store"`
	Extract        ExtractConfig      `yaml:"extract"`
}

// Load builds the configuration from defaults, the YAML file at path and the
// environment, in increasing order of precedence. A .env file in the working
// directory is loaded first. The file at path is optional only when path is
// DefaultConfigFile.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var raw rawConfig
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// Expand environment variables
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist) && path == DefaultConfigFile:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := fromRaw(raw)
	if err != nil {
		return nil, err
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	// The throttle must never stretch the configured interval.
	if cfg.Schedule == "" && cfg.MinFetchGap > cfg.CheckInterval {
		cfg.MinFetchGap = cfg.CheckInterval
	}
	return cfg, nil
}

func fromRaw(raw rawConfig) (*Config, error) {
	cfg := &Config{
		TargetURL:      raw.TargetURL,
		VacancyBaseURL: raw.VacancyBaseURL,
		Schedule:       raw.Schedule,
		UserAgent:      raw.UserAgent,
		CommitPolicy:   raw.CommitPolicy,
		SeedOnFirstRun: raw.SeedOnFirstRun,
		HTTPAddr:       raw.HTTPAddr,
		Telegram:       raw.Telegram,
		Notification:   raw.Notification,
		Store:          raw.Store,
		Extract:        raw.Extract,
		MinFetchGap:    DefaultMinFetchGap,
	}

	var err error
	if raw.CheckInterval != "" {
		cfg.CheckInterval, err = time.ParseDuration(raw.CheckInterval)
		if err != nil {
			return nil, fmt.Errorf("parse check_interval %q: %w", raw.CheckInterval, err)
		}
		if cfg.CheckInterval <= 0 {
			return nil, fmt.Errorf("check_interval must be positive, got %v", cfg.CheckInterval)
		}
	}
	if raw.RequestTimeout != "" {
		cfg.RequestTimeout, err = time.ParseDuration(raw.RequestTimeout)
		if err != nil {
			return nil, fmt.Errorf("parse request_timeout %q: %w", raw.RequestTimeout, err)
		}
	}
	if raw.MinFetchGap != "" {
		cfg.MinFetchGap, err = time.ParseDuration(raw.MinFetchGap)
		if err != nil {
			return nil, fmt.Errorf("parse min_fetch_gap %q: %w", raw.MinFetchGap, err)
		}
	}
	return cfg, nil
}

// applyEnv overrides cfg with any recognized environment variable that is set.
func applyEnv(cfg *Config) error {
	setString(&cfg.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
	setString(&cfg.Telegram.ChatID, "TELEGRAM_CHAT_ID")
	setString(&cfg.Telegram.APIURL, "TELEGRAM_API_URL")
	setString(&cfg.TargetURL, "TARGET_URL")
	setString(&cfg.VacancyBaseURL, "VACANCY_BASE_URL")
	setString(&cfg.Schedule, "SCHEDULE")
	setString(&cfg.UserAgent, "USER_AGENT")
	setString(&cfg.Notification.Type, "NOTIFIER")
	setString(&cfg.Store.Type, "STORE_TYPE")
	setString(&cfg.Store.Path, "STATE_FILE")
	setString(&cfg.Store.DSN, "DATABASE_URL")
	setString(&cfg.CommitPolicy, "COMMIT_POLICY")
	setString(&cfg.HTTPAddr, "HTTP_ADDR")

	// CHECK_INTERVAL is a plain number of seconds.
	if v := os.Getenv("CHECK_INTERVAL"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid CHECK_INTERVAL %q: %w", v, err)
		}
		if secs <= 0 {
			return fmt.Errorf("CHECK_INTERVAL must be positive, got %d", secs)
		}
		cfg.CheckInterval = time.Duration(secs) * time.Second
	}
	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid REQUEST_TIMEOUT %q: %w", v, err)
		}
		cfg.RequestTimeout = d
	}
	if v := os.Getenv("MIN_FETCH_GAP"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid MIN_FETCH_GAP %q: %w", v, err)
		}
		cfg.MinFetchGap = d
	}
	if v := os.Getenv("SEED_ON_FIRST_RUN"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SEED_ON_FIRST_RUN %q: %w", v, err)
		}
		cfg.SeedOnFirstRun = b
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.TargetURL == "" {
		cfg.TargetURL = DefaultTargetURL
	}
	if cfg.VacancyBaseURL == "" {
		cfg.VacancyBaseURL = DefaultVacancyBaseURL
	}
	if cfg.CheckInterval == 0 {
		cfg.CheckInterval = DefaultCheckInterval
	}
	if cfg.Telegram.APIURL == "" {
		cfg.Telegram.APIURL = DefaultTelegramAPIURL
	}
	if cfg.Notification.Type == "" {
		cfg.Notification.Type = NotifierTelegram
	}
	if cfg.CommitPolicy == "" {
		cfg.CommitPolicy = CommitAlways
	}
	if cfg.Store.Type == "" {
		cfg.Store.Type = StoreFile
	}
	if cfg.Store.Path == "" {
		switch cfg.Store.Type {
		case StoreFile:
			cfg.Store.Path = DefaultStateFile
		case StoreSQLite:
			cfg.Store.Path = DefaultSQLitePath
		}
	}
}

func validate(cfg *Config) error {
	if cfg.CheckInterval <= 0 {
		return fmt.Errorf("check_interval must be positive, got %v", cfg.CheckInterval)
	}
	if cfg.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative, got %v", cfg.RequestTimeout)
	}
	if cfg.MinFetchGap < 0 {
		return fmt.Errorf("min_fetch_gap must not be negative, got %v", cfg.MinFetchGap)
	}
	if cfg.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
			return fmt.Errorf("parse schedule %q: %w", cfg.Schedule, err)
		}
	}

	switch cfg.Notification.Type {
	case NotifierTelegram, NotifierLog:
	default:
		return fmt.Errorf("notification.type must be %q or %q, got %q", NotifierTelegram, NotifierLog, cfg.Notification.Type)
	}

	switch cfg.CommitPolicy {
	case CommitAlways, CommitDelivered:
	default:
		return fmt.Errorf("commit_policy must be %q or %q, got %q", CommitAlways, CommitDelivered, cfg.CommitPolicy)
	}

	switch cfg.Store.Type {
	case StoreFile, StoreSQLite:
	case StorePostgres:
		if cfg.Store.DSN == "" {
			return fmt.Errorf("store.dsn (or DATABASE_URL) is required when store.type is %q", StorePostgres)
		}
	default:
		return fmt.Errorf("store.type must be one of file, sqlite, postgres, got %q", cfg.Store.Type)
	}

	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
