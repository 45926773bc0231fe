package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/amishk599/vacancywatch/internal/httpapi"
	"github.com/amishk599/vacancywatch/internal/scheduler"
	"github.com/amishk599/vacancywatch/internal/store"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the polling daemon",
	Long:  "Start the scheduler daemon; blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

type runner interface {
	Run(ctx context.Context) error
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	cfg := mustLoad(logger)

	logger.Info("config loaded",
		"target", cfg.TargetURL,
		"interval", cfg.CheckInterval.String(),
		"schedule", cfg.Schedule,
		"notifier", cfg.Notification.Type,
		"store", cfg.Store.Type,
		"commit_policy", cfg.CommitPolicy,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	httpClient := newHTTPClient(cfg)
	n := setupNotifier(cfg, httpClient, logger)
	p, err := buildPoller(ctx, cfg, st, n, httpClient, logger)
	if err != nil {
		logger.Error("failed to set up poller", "error", err)
		os.Exit(1)
	}

	var sched runner = scheduler.NewScheduler(p, cfg.CheckInterval, logger)
	if cfg.Schedule != "" {
		cs, err := scheduler.NewCronScheduler(p, cfg.Schedule, logger)
		if err != nil {
			logger.Error("invalid schedule", "error", err)
			os.Exit(1)
		}
		sched = cs
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sched.Run(gctx)
	})

	if cfg.HTTPAddr != "" {
		srv := httpapi.NewServer(cfg.HTTPAddr, httpapi.NewHandler(p, logger))
		g.Go(func() error {
			logger.Info("status api listening", "addr", cfg.HTTPAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("daemon error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
