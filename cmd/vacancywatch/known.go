package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/vacancywatch/internal/store"
)

var knownCmd = &cobra.Command{
	Use:   "known",
	Short: "List known vacancy IDs",
	Long:  "Reads the configured store and prints every known vacancy ID, sorted, one per line.",
	RunE:  runKnown,
}

func init() {
	rootCmd.AddCommand(knownCmd)
}

func runKnown(cmd *cobra.Command, args []string) error {
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

	out := cmd.OutOrStdout()
	for _, id := range known.Sorted() {
		fmt.Fprintln(out, id)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%d known vacancies\n", known.Len())
	return nil
}
