package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"voicecal/internal/config"
	"voicecal/internal/google"
	"voicecal/internal/logging"
)

func newAuthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to Google Calendar",
		Long: `Run the OAuth authorization flow and persist the resulting token.

If a valid token is already stored, nothing happens. Run this once before
starting the MCP server so tool calls never block on a browser flow.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logging.Setup(cfg.LogLevel)

			ctx, cancel := signal.NotifyContext(context.Background(),
				syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			auth := google.NewAuthenticator(cfg, slog.Default(), nil)
			if _, err := auth.Credentials(ctx); err != nil {
				return fmt.Errorf("authorization failed: %w", err)
			}

			fmt.Printf("Authorized. Token stored at %s\n", cfg.TokenPath)
			return nil
		},
	}
}
