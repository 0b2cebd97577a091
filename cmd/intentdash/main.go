package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bounteer/intentdash/internal/auth"
	"github.com/bounteer/intentdash/internal/config"
	"github.com/bounteer/intentdash/internal/dashboard"
	"github.com/bounteer/intentdash/internal/directus"
	"github.com/bounteer/intentdash/internal/domain"
	"github.com/bounteer/intentdash/internal/logging"
	"github.com/bounteer/intentdash/internal/syncq"
	"github.com/bounteer/intentdash/internal/tui"
)

var (
	// CLI flags
	spaceFlag    int
	categoryFlag string
	tokenFlag    string
	baseURLFlag  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "intentdash",
		Short: "Terminal dashboard for Bounteer hiring intents",
		Long: `intentdash is a terminal kanban dashboard for Bounteer hiring intents.

Intents flow across five columns (signals, actions, completed, aborted,
hidden); moves apply instantly on screen and sync to the Directus CMS in
the background.

Authentication:
  1. Set BOUNTEER_DIRECTUS_STATIC_TOKEN or pass --token
  2. Or set the DIRECTUS_TOKEN environment variable`,
		RunE: run,
	}

	// Define CLI flags
	rootCmd.Flags().IntVar(&spaceFlag, "space", 0, "Space ID to open. Skips the space picker.")
	rootCmd.Flags().StringVar(&categoryFlag, "category", "", "Initial category filter.")
	rootCmd.Flags().StringVar(&tokenFlag, "token", "", "Directus static token. Overrides configuration.")
	rootCmd.Flags().StringVar(&baseURLFlag, "base-url", "", "Directus base URL. Overrides configuration.")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	configViper := config.NewViper()
	if tokenFlag != "" {
		configViper.Set("directus.static_token", tokenFlag)
	}
	if baseURLFlag != "" {
		configViper.Set("directus.base_url", baseURLFlag)
	}

	cfg, err := config.Load(configViper)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	token, err := auth.GetToken(cfg.StaticToken)
	if err != nil {
		return err
	}

	client := directus.New(cfg.DirectusBaseURL, token)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctrl := dashboard.New(client, dashboard.Options{
		PageSize:     cfg.PageSize,
		ActionQuota:  cfg.ActionQuota,
		SyncInterval: time.Duration(cfg.SyncIntervalSecs) * time.Second,
		OnConflict: func(entry syncq.Entry, remote domain.Column) {
			logger.Warn("sync conflict detected",
				zap.Int("intent", entry.IntentID),
				zap.String("expected", string(entry.To)),
				zap.String("remote", string(remote)))
		},
		Logger: logger,
	})
	if categoryFlag != "" {
		ctrl.SetCategoryFilter(categoryFlag)
	}

	// Background reconciliation loop; stops with the program context.
	go ctrl.RunSync(ctx)

	app := tui.NewAppModel(ctx, ctrl, client, spaceFlag)

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}

	return nil
}
