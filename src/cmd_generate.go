package main

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/spf13/cobra"

	"socialdex/src/aggregators"
	"socialdex/src/database"
	"socialdex/src/metrics"
	"socialdex/src/version"
)

func newIndexBuilder(db database.SnapshotDatabase) (*aggregators.IndexBuilder, error) {
	return aggregators.NewIndexBuilder(db).
		WithIndicesConfig(socialdexConfig.IndicesConfig).
		Build()
}

func generate(ctx context.Context, db database.SocialdexDatabase) error {
	builder, err := newIndexBuilder(db)
	if err != nil {
		return err
	}
	result, err := builder.BuildAll(ctx)
	if err != nil {
		return err
	}

	writer, err := metrics.BuildIndexWriter(ctx, socialdexConfig, db)
	if err != nil {
		return err
	}
	defer writer.Close()
	if err := writer.Write(ctx, result); err != nil {
		return err
	}

	for name, summary := range metrics.SummarizeAll(result) {
		slog.Info("Index summary",
			"index", name,
			"last", summary.Last,
			"min", summary.Min,
			"max", summary.Max,
			"change_pct", summary.ChangePct)
	}
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	db, err := openDatabase(cmd.Context())
	if err != nil {
		return err
	}
	defer db.Close()
	return generate(cmd.Context(), db)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	db, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := syncAuthors(ctx, db); err != nil {
		return err
	}
	if !skipCrawl {
		if _, err := crawl(ctx, db); err != nil {
			return err
		}
	}
	return generate(ctx, db)
}

func runVersion(cmd *cobra.Command, args []string) {
	info := version.GetBuildInfo()
	keys := make([]string, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", k, info[k])
	}
}
