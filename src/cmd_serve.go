package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"socialdex/src/metrics"
	"socialdex/src/server"
)

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	db, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	builder, err := newIndexBuilder(db)
	if err != nil {
		return err
	}
	publisher, err := metrics.BuildIndexWriter(ctx, socialdexConfig, db)
	if err != nil {
		return err
	}
	wsWriter := metrics.NewWebsocketIndexWriter()
	publisher.AddWriter(wsWriter)
	defer publisher.Close()

	serverConfig := socialdexConfig.ServerConfig
	srv := server.NewServer(serverConfig.Port).
		WithEndpoints(serverConfig.HealthEndpoint, serverConfig.MetricsEndpoint).
		WithIndexSource(builder).
		WithWebsocketWriter(wsWriter).
		WithPublisher(publisher).
		WithNotifications(db.Notifications())
	if db.Notifications() == nil {
		slog.Info("Store has no change notifications, indices rebuild only on request")
	}
	return srv.Start(ctx)
}
