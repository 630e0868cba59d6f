package feeds

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"socialdex/src/database"
	"socialdex/src/datamodels"
	"socialdex/src/metrics"
	"socialdex/src/utils/errors"
)

type CrawlerDatabase interface {
	database.AuthorDatabase
	database.ObservationDatabase
}

// Crawler polls every known author once and appends an observation per success.
type Crawler struct {
	db         CrawlerDatabase
	feeds      map[datamodels.Platform]FollowerFeed
	limiter    *rate.Limiter
	batch      bool
	resolution time.Duration
	now        func() time.Time
}

func NewCrawler(db CrawlerDatabase, feeds map[datamodels.Platform]FollowerFeed, config datamodels.CrawlerConfig) *Crawler {
	limit := rate.Inf
	if config.InterRequestDelay > 0 {
		limit = rate.Every(config.InterRequestDelay)
	}
	resolution := config.TimestampResolution
	if resolution <= 0 {
		resolution = time.Second
	}
	return &Crawler{
		db:         db,
		feeds:      feeds,
		limiter:    rate.NewLimiter(limit, 1),
		batch:      config.BatchTimestamp,
		resolution: resolution,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (c *Crawler) timestamp() time.Time {
	return c.now().Truncate(c.resolution)
}

// CrawlAll fails only when the author list cannot be read or the context ends.
// Per-author failures are logged, counted and skipped.
func (c *Crawler) CrawlAll(ctx context.Context) (*datamodels.CrawlReport, error) {
	authors, err := c.db.ListAuthorsWithTags(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list authors for crawl")
	}

	report := &datamodels.CrawlReport{
		RunId:      uuid.New().String(),
		RecordedAt: c.timestamp(),
		Failures:   []datamodels.CrawlFailure{},
	}
	slog.Info("Starting crawl", "run_id", report.RunId, "authors", len(authors))

	for _, author := range authors {
		feed, ok := c.feeds[author.Platform]
		if !ok {
			slog.Warn("Skipping author", "author", author.Name, "error", errors.Wrapf(errors.ErrUnknownPlatform, "%s", author.Platform))
			report.Skipped++
			continue
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return report, err
		}
		report.Attempted++

		fans, err := feed.FetchFollowers(ctx, author.Uid)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			slog.Error("Failed to fetch followers", "author", author.Name, "uid", author.Uid, "error", err)
			metrics.CrawlFailuresTotal.WithLabelValues(string(author.Platform)).Inc()
			report.Failures = append(report.Failures, datamodels.CrawlFailure{AuthorId: author.Id, Uid: author.Uid, Error: err.Error()})
			continue
		}

		recordedAt := report.RecordedAt
		if !c.batch {
			recordedAt = c.timestamp()
		}
		observation := &datamodels.Observation{
			AuthorId:       author.Id,
			FollowersCount: fans,
			RecordedAt:     recordedAt,
		}
		if err := c.db.WriteObservation(ctx, observation); err != nil {
			slog.Error("Failed to save observation", "author", author.Name, "error", err)
			report.Failures = append(report.Failures, datamodels.CrawlFailure{AuthorId: author.Id, Uid: author.Uid, Error: err.Error()})
			continue
		}
		metrics.ObservationsWrittenTotal.Inc()
		report.Saved++
		slog.Info("Recorded followers", "author", author.Name, "followers", fans)
	}

	if report.Saved > 0 {
		if err := c.db.NotifyObservationsWritten(ctx, report.RecordedAt); err != nil {
			slog.Warn("Failed to notify observation listeners", "error", err)
		}
	}

	slog.Info("Crawl finished",
		"run_id", report.RunId,
		"attempted", report.Attempted,
		"saved", report.Saved,
		"skipped", report.Skipped,
		"failed", len(report.Failures))
	return report, nil
}
