package feeds

import (
	"context"
	"log/slog"

	"socialdex/src/datamodels"
)

// FollowerFeed reads the current follower count of one account on one platform.
type FollowerFeed interface {
	GetPlatform() datamodels.Platform
	FetchFollowers(ctx context.Context, uid string) (int64, error)
}

// NewFollowerFeedsFromConfig returns one feed per supported platform.
func NewFollowerFeedsFromConfig(config datamodels.CrawlerConfig) map[datamodels.Platform]FollowerFeed {
	feeds := map[datamodels.Platform]FollowerFeed{}
	bilibili := NewBilibiliFeed(config)
	feeds[bilibili.GetPlatform()] = bilibili
	slog.Debug("Built follower feeds", "platforms", len(feeds))
	return feeds
}
