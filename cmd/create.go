package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"voicecal/internal/config"
	"voicecal/internal/google"
	"voicecal/internal/logging"
	"voicecal/internal/server"
	"voicecal/internal/tools/calendar_tools"
)

func newCreateCmd() *cobra.Command {
	var (
		date            string
		clock           string
		durationMinutes int
		description     string
	)

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Schedule a meeting on the calendar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(),
				syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			sc, shutdown := newCLIServerContext(ctx)
			defer shutdown()

			req := calendar_tools.CreateRequest{
				Title:           args[0],
				Date:            date,
				Time:            clock,
				DurationMinutes: durationMinutes,
				Description:     description,
			}
			if req.Date == "" {
				req.Date = todayDate()
			}
			if clock == "" {
				return fmt.Errorf("time is required (24-hour HH:MM)")
			}

			message, err := calendar_tools.CreateEvent(ctx, sc, req)
			if err != nil {
				return fmt.Errorf("%v", err)
			}

			fmt.Println(message)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Meeting date (YYYY-MM-DD, defaults to today)")
	cmd.Flags().StringVar(&clock, "time", "", "Start time in 24-hour HH:MM format")
	cmd.Flags().IntVar(&durationMinutes, "duration", calendar_tools.DefaultDurationMinutes, "Meeting duration in minutes (1-480)")
	cmd.Flags().StringVar(&description, "description", "", "Optional meeting description")
	_ = cmd.MarkFlagRequired("time")

	return cmd
}

func todayDate() string {
	return time.Now().Format("2006-01-02")
}

// newCLIServerContext builds a server context for one-shot CLI commands.
func newCLIServerContext(ctx context.Context) (*server.ServerContext, func()) {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel)

	auth := google.NewAuthenticator(cfg, slog.Default(), nil)
	sc := server.NewServerContext(ctx, cfg, auth, nil, slog.Default())
	return sc, sc.Shutdown
}
