package cmd

import (
	"context"
	"time"

	"devconnector/bootstrap"
	"devconnector/database"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(indexesCmd)
}

var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Create the MongoDB indexes and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := loadConfig()
		log := cfg.NewLogger()

		client, err := database.ConnectMongo(cmd.Context(), cfg.MongoURI)
		if err != nil {
			return err
		}
		defer database.DisconnectMongo(client)

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		if err := bootstrap.EnsureIndexes(ctx, client.Database(cfg.MongoDB)); err != nil {
			return err
		}
		log.Info("indexes ensured", "db", cfg.MongoDB)
		return nil
	},
}
