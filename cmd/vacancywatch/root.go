package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/vacancywatch/internal/config"
	"github.com/amishk599/vacancywatch/internal/extract"
	"github.com/amishk599/vacancywatch/internal/fetcher"
	"github.com/amishk599/vacancywatch/internal/model"
	"github.com/amishk599/vacancywatch/internal/notifier"
	"github.com/amishk599/vacancywatch/internal/poller"
	"github.com/amishk599/vacancywatch/internal/ratelimit"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "vacancywatch",
	Short: "Vacancy watcher: be the first to hear about new openings",
	Long:  "vacancywatch polls a company vacancy page and sends a Telegram alert for every vacancy it has not seen before.",
	// Default to `start` so that `vacancywatch` with no args runs the daemon.
	RunE: runStart,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: VACANCYWATCH_CONFIG env var or ./vacancywatch.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > VACANCYWATCH_CONFIG env var > "./vacancywatch.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("VACANCYWATCH_CONFIG"); env != "" {
			path = env
		} else {
			path = config.DefaultConfigFile
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

// mustLoad loads the config or exits, logging the reason.
func mustLoad(logger *slog.Logger) *config.Config {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	return cfg
}

// newHTTPClient returns the client shared by the fetcher and the notifier.
// A zero RequestTimeout leaves requests unbounded.
func newHTTPClient(cfg *config.Config) *http.Client {
	return &http.Client{Timeout: cfg.RequestTimeout}
}

func userAgent(cfg *config.Config) string {
	if cfg.UserAgent != "" {
		return cfg.UserAgent
	}
	return "vacancywatch/" + version
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case config.NotifierLog:
		return notifier.NewLogNotifier(cfg.VacancyBaseURL, logger)
	default:
		if cfg.Telegram.BotToken == "" || cfg.Telegram.ChatID == "" {
			logger.Warn("telegram bot token or chat id is empty; notifications will fail")
		}
		logger.Info("using telegram notifier", "chat_id", cfg.Telegram.ChatID)
		return notifier.NewTelegramNotifier(
			cfg.Telegram.APIURL,
			cfg.Telegram.BotToken,
			cfg.Telegram.ChatID,
			cfg.VacancyBaseURL,
			httpClient,
			logger,
		)
	}
}

func setupPipeline(cfg *config.Config, httpClient *http.Client) (model.PageFetcher, *extract.Extractor, error) {
	ex, err := extract.New(cfg.Extract.ContainerSelector, cfg.Extract.Marker)
	if err != nil {
		return nil, nil, err
	}
	var f model.PageFetcher = fetcher.NewHTTPFetcher(httpClient, userAgent(cfg))
	if cfg.MinFetchGap > 0 {
		f = ratelimit.NewRateLimitedFetcher(f, ratelimit.NewHostRateLimiter(cfg.MinFetchGap))
	}
	return f, ex, nil
}

// buildPoller wires the full cycle around st, loading the known set from it.
func buildPoller(ctx context.Context, cfg *config.Config, st model.KnownSetStore, n model.Notifier, httpClient *http.Client, logger *slog.Logger) (*poller.VacancyPoller, error) {
	f, ex, err := setupPipeline(cfg, httpClient)
	if err != nil {
		return nil, err
	}

	known, err := st.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading known vacancies: %w", err)
	}
	logger.Info("loaded known vacancies", "count", known.Len(), "store", cfg.Store.Type)

	return poller.NewVacancyPoller(
		cfg.TargetURL,
		f,
		ex,
		st,
		n,
		known,
		poller.Options{CommitPolicy: commitPolicy(cfg.CommitPolicy), SeedOnFirstRun: cfg.SeedOnFirstRun},
		logger,
	), nil
}

func commitPolicy(name string) poller.CommitPolicy {
	if name == config.CommitDelivered {
		return poller.CommitDelivered
	}
	return poller.CommitAlways
}
