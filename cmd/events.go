package cmd

import (
	"errors"
	"os/signal"
	"syscall"

	"devconnector/internal/events"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(eventsCmd)
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Print post events published on NATS until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := loadConfig()
		log := cfg.NewLogger()
		if cfg.NatsURL == "" {
			return errors.New("NATS_URL is required")
		}

		nc, err := events.Connect(cfg.NatsURL)
		if err != nil {
			return err
		}
		defer nc.Close()

		sub, err := events.Subscribe(nc, func(e events.Event) {
			log.Info("event", "type", e.Type, "post_id", e.PostID, "user_id", e.UserID, "comment_id", e.CommentID, "at", e.Timestamp)
		})
		if err != nil {
			return err
		}
		defer sub.Unsubscribe()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		log.Info("listening for events", "subject", events.SubjectPrefix+"*")
		<-ctx.Done()
		return nil
	},
}
