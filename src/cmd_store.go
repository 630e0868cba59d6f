package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"socialdex/src/config"
	"socialdex/src/database"
)

func openDatabase(ctx context.Context) (database.SocialdexDatabase, error) {
	db, err := database.NewDBConnection(socialdexConfig.DatabaseConfig)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func runInit(cmd *cobra.Command, args []string) error {
	db, err := openDatabase(cmd.Context())
	if err != nil {
		return err
	}
	defer db.Close()
	slog.Info("Database initialized", "driver", socialdexConfig.DatabaseConfig.Driver)
	return nil
}

func syncAuthors(ctx context.Context, db database.SocialdexDatabase) (int, error) {
	path := socialdexConfig.AuthorsFile
	if authorsPath != "" {
		path = authorsPath
	}
	authors, err := config.LoadAuthors(path)
	if err != nil {
		return 0, err
	}
	return database.SyncAuthors(ctx, db, authors)
}

func runSync(cmd *cobra.Command, args []string) error {
	db, err := openDatabase(cmd.Context())
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = syncAuthors(cmd.Context(), db)
	return err
}
