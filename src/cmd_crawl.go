package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"socialdex/src/database"
	"socialdex/src/datamodels"
	"socialdex/src/feeds"
	"socialdex/src/utils/errors"
)

func crawl(ctx context.Context, db database.SocialdexDatabase) (*datamodels.CrawlReport, error) {
	crawlerConfig := socialdexConfig.CrawlerConfig
	crawler := feeds.NewCrawler(db, feeds.NewFollowerFeedsFromConfig(crawlerConfig), crawlerConfig)
	return crawler.CrawlAll(ctx)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	db, err := openDatabase(cmd.Context())
	if err != nil {
		return err
	}
	defer db.Close()

	report, err := crawl(cmd.Context(), db)
	if err != nil {
		return err
	}
	for _, failure := range report.Failures {
		slog.Warn("Author not recorded", "uid", failure.Uid, "error", failure.Error)
	}
	return nil
}

func newCsvFeed(path string) (*feeds.CsvFeed, error) {
	builder := feeds.NewCsvFeedBuilder(path).
		WithHasHeader(csvHeader).
		WithPlatform(datamodels.Platform(csvPlatform))
	if csvStart != "" {
		start, err := feeds.ParseRecordedAt(csvStart)
		if err != nil {
			return nil, errors.Wrap(err, "bad --start")
		}
		builder = builder.WithStartTime(start)
	}
	if csvEnd != "" {
		end, err := feeds.ParseRecordedAt(csvEnd)
		if err != nil {
			return nil, errors.Wrap(err, "bad --end")
		}
		builder = builder.WithEndTime(end)
	}
	return builder.Build()
}

func runImport(cmd *cobra.Command, args []string) error {
	feed, err := newCsvFeed(args[0])
	if err != nil {
		return err
	}

	db, err := openDatabase(cmd.Context())
	if err != nil {
		return err
	}
	defer db.Close()

	_, _, err = feed.ImportInto(cmd.Context(), db)
	return err
}
