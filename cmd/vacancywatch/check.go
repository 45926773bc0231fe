package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/vacancywatch/internal/model"
	"github.com/amishk599/vacancywatch/internal/notifier"
	"github.com/amishk599/vacancywatch/internal/store"
)

var dryRun bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one cycle, print the result, exit",
	Long: "One-shot cycle against the configured page. With --dry-run the known set is read but never written " +
		"and new vacancies are logged instead of sent to Telegram.",
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&dryRun, "dry-run", false, "do not notify or persist, only report what is new")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	cfg := mustLoad(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	httpClient := newHTTPClient(cfg)

	var (
		n     model.Notifier
		saver model.KnownSetStore = st
	)
	if dryRun {
		logger.Info("dry-run mode: nothing will be sent or persisted")
		n = notifier.NewLogNotifier(cfg.VacancyBaseURL, logger)
		saver = readOnlyStore{KnownSetStore: st, nop: store.NewNopStore()}
	} else {
		n = setupNotifier(cfg, httpClient, logger)
	}

	p, err := buildPoller(ctx, cfg, saver, n, httpClient, logger)
	if err != nil {
		logger.Error("failed to set up poller", "error", err)
		os.Exit(1)
	}

	res, err := p.Poll(ctx)
	if err != nil {
		logger.Error("check failed", "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// readOnlyStore loads from the real store and discards saves.
type readOnlyStore struct {
	model.KnownSetStore
	nop *store.NopStore
}

func (s readOnlyStore) Save(ctx context.Context, set model.KnownSet) error {
	return s.nop.Save(ctx, set)
}
