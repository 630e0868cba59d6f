package feeds

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"socialdex/src/datamodels"
	"socialdex/src/utils/errors"
)

// CsvFeed backfills observations from a file of uid,followers_count,recorded_at rows.
// recorded_at is unix seconds, RFC3339 or "2006-01-02 15:04:05" UTC.
type CsvFeed struct {
	filePath  string
	platform  datamodels.Platform
	hasHeader bool
	startTime time.Time
	endTime   time.Time
}

type CsvFeedBuilder struct {
	filePath  string
	platform  datamodels.Platform
	hasHeader bool
	startTime *time.Time
	endTime   *time.Time
}

func NewCsvFeedBuilder(filePath string) *CsvFeedBuilder {
	return &CsvFeedBuilder{
		filePath: filePath,
		platform: datamodels.PlatformBilibili,
	}
}

func (b *CsvFeedBuilder) WithPlatform(platform datamodels.Platform) *CsvFeedBuilder {
	b.platform = platform
	return b
}

func (b *CsvFeedBuilder) WithHasHeader(hasHeader bool) *CsvFeedBuilder {
	b.hasHeader = hasHeader
	return b
}

func (b *CsvFeedBuilder) WithStartTime(startTime time.Time) *CsvFeedBuilder {
	b.startTime = &startTime
	return b
}

func (b *CsvFeedBuilder) WithEndTime(endTime time.Time) *CsvFeedBuilder {
	b.endTime = &endTime
	return b
}

func (b *CsvFeedBuilder) Build() (*CsvFeed, error) {
	if b.filePath == "" {
		return nil, errors.New("csv feed file path is required")
	}
	if _, err := os.Stat(b.filePath); err != nil {
		return nil, errors.Wrapf(err, "cannot read csv file %s", b.filePath)
	}
	feed := &CsvFeed{
		filePath:  b.filePath,
		platform:  b.platform,
		hasHeader: b.hasHeader,
	}
	if b.startTime != nil {
		feed.startTime = *b.startTime
	}
	if b.endTime != nil {
		feed.endTime = *b.endTime
		if feed.endTime.Before(feed.startTime) {
			return nil, errors.New("end time is before start time")
		}
	}
	return feed, nil
}

type CsvRow struct {
	Uid            string
	FollowersCount int64
	RecordedAt     time.Time
}

// ParseRecordedAt accepts unix seconds, RFC3339 or "2006-01-02 15:04:05" (UTC).
func ParseRecordedAt(value string) (time.Time, error) {
	if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	// sqlite's CURRENT_TIMESTAMP layout, always UTC
	t, err := time.Parse(time.DateTime, value)
	if err != nil {
		return time.Time{}, errors.Newf("unrecognized recorded_at %q", value)
	}
	return t, nil
}

func (f *CsvFeed) inWindow(t time.Time) bool {
	if !f.startTime.IsZero() && t.Before(f.startTime) {
		return false
	}
	if !f.endTime.IsZero() && t.After(f.endTime) {
		return false
	}
	return true
}

// ReadRows parses the whole file. Rows outside the time window are dropped.
func (f *CsvFeed) ReadRows() ([]CsvRow, error) {
	file, err := os.Open(f.filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open CSV file at %s", f.filePath)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = 3
	reader.TrimLeadingSpace = true

	rows := []CsvRow{}
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.Wrapf(err, "bad csv record on line %d", line)
		}
		if line == 1 && f.hasHeader {
			continue
		}

		count, err := strconv.ParseInt(strings.TrimSpace(record[1]), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "bad followers_count on line %d", line)
		}
		recordedAt, err := ParseRecordedAt(strings.TrimSpace(record[2]))
		if err != nil {
			return nil, errors.Wrapf(err, "bad recorded_at on line %d", line)
		}
		if !f.inWindow(recordedAt) {
			continue
		}
		rows = append(rows, CsvRow{
			Uid:            strings.TrimSpace(record[0]),
			FollowersCount: count,
			RecordedAt:     recordedAt,
		})
	}
	return rows, nil
}

// ImportInto writes every row whose uid matches a known author on the feed's
// platform, in a single store transaction. Imports append: running the same
// file twice stores every row twice. Returns how many were written and how
// many had no author.
func (f *CsvFeed) ImportInto(ctx context.Context, db CrawlerDatabase) (int, int, error) {
	rows, err := f.ReadRows()
	if err != nil {
		return 0, 0, err
	}
	authors, err := db.ListAuthorsWithTags(ctx)
	if err != nil {
		return 0, 0, errors.Wrap(err, "failed to list authors for import")
	}
	authorIds := make(map[string]int64, len(authors))
	for _, a := range authors {
		if a.Platform == f.platform {
			authorIds[a.Uid] = a.Id
		}
	}

	unknown := 0
	var latest time.Time
	observations := make([]datamodels.Observation, 0, len(rows))
	for _, row := range rows {
		authorId, ok := authorIds[row.Uid]
		if !ok {
			unknown++
			continue
		}
		observations = append(observations, datamodels.Observation{
			AuthorId:       authorId,
			FollowersCount: row.FollowersCount,
			RecordedAt:     row.RecordedAt,
		})
		if row.RecordedAt.After(latest) {
			latest = row.RecordedAt
		}
	}
	if err := db.WriteObservations(ctx, observations); err != nil {
		return 0, unknown, err
	}
	imported := len(observations)
	if imported > 0 {
		if err := db.NotifyObservationsWritten(ctx, latest); err != nil {
			slog.Warn("Failed to notify observation listeners", "error", err)
		}
	}

	slog.Info("Imported observations", "file", f.filePath, "imported", imported, "unknown_uid", unknown)
	return imported, unknown, nil
}
