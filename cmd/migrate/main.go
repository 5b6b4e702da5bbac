package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	mongoMigration "salonbook/internal/migrations/mongo"
	"salonbook/pkg/config"
)

const JobName = "mongo-migration"

func main() {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:          "migrate",
		Short:        "Create collections, validators and indexes in MongoDB",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			cfg := config.Load(JobName)
			cfg.SetMongo()
			defer cfg.GracefulShutdown()

			cfg.Log.Info("Starting Mongo migration job")
			return mongoMigration.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.Log)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 120*time.Second, "overall migration deadline")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
