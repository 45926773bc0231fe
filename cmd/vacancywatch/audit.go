package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/vacancywatch/internal/audit"
	"github.com/amishk599/vacancywatch/internal/model"
	"github.com/amishk599/vacancywatch/internal/store"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Browse the page's vacancies interactively (TUI)",
	Long:  "Fetches the page once and shows every vacancy on it, marking the ones not yet known. Never notifies or persists.",
	RunE:  runAuditCmd,
}

func init() {
	rootCmd.AddCommand(auditCmd)
}

func runAuditCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	known, err := st.Load(ctx)
	if err != nil {
		return fmt.Errorf("load known vacancies: %w", err)
	}

	f, ex, err := setupPipeline(cfg, newHTTPClient(cfg))
	if err != nil {
		return err
	}

	// No log output here: anything printed before the alt-screen starts
	// corrupts the display.
	result, err := audit.RunLoader(cfg.TargetURL, func(ctx context.Context) (model.Extraction, error) {
		content, err := f.Fetch(ctx, cfg.TargetURL)
		if err != nil {
			return model.Extraction{}, err
		}
		return ex.Extract(content)
	})
	if err != nil {
		fmt.Printf("Error fetching vacancies: %v\n", err)
		return nil
	}

	items := audit.BuildItems(result.IDs, known, cfg.VacancyBaseURL)
	if err := audit.RunAuditTUI(items, result.Skipped); err != nil {
		fmt.Printf("TUI error: %v\n", err)
	}
	return nil
}
