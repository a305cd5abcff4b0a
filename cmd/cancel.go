package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"voicecal/internal/tools/calendar_tools"
)

func newCancelCmd() *cobra.Command {
	var (
		date  string
		clock string
	)

	cmd := &cobra.Command{
		Use:   "cancel <title>",
		Short: "Cancel meetings matching a title and date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(),
				syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			sc, shutdown := newCLIServerContext(ctx)
			defer shutdown()

			req := calendar_tools.CancelRequest{
				Title: args[0],
				Date:  date,
				Time:  clock,
			}
			if req.Date == "" {
				req.Date = todayDate()
			}

			message, err := calendar_tools.CancelEvent(ctx, sc, req)
			if err != nil {
				return fmt.Errorf("%v", err)
			}

			fmt.Println(message)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Meeting date (YYYY-MM-DD, defaults to today)")
	cmd.Flags().StringVar(&clock, "time", "", "Only cancel meetings starting at this time (24-hour HH:MM)")

	return cmd
}
