package aggregators

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"socialdex/src/database"
	"socialdex/src/datamodels"
	"socialdex/src/metrics"
	"socialdex/src/utils/errors"
)

// IndexBuilder computes every index series from one snapshot of the store.
// Each run recomputes from scratch and only reads.
type IndexBuilder struct {
	db          database.SnapshotDatabase
	config      datamodels.IndicesConfig
	definitions map[string]IndexDefinition
	aggregator  *AsOfAggregator
}

func NewIndexBuilder(db database.SnapshotDatabase) *IndexBuilder {
	return &IndexBuilder{
		db: db,
		config: datamodels.IndicesConfig{
			Divisor:     datamodels.DefaultIndexDivisor,
			Precision:   datamodels.DefaultIndexPrecision,
			Parallelism: 1,
			BlueChip: datamodels.BlueChipConfig{
				Enabled: true,
				Name:    datamodels.DefaultBlueChipName,
				Size:    datamodels.DefaultBasketSize,
			},
		},
	}
}

func (b *IndexBuilder) WithIndicesConfig(config datamodels.IndicesConfig) *IndexBuilder {
	b.config = config
	return b
}

// WithDefinitions fixes the index set instead of deriving it from each snapshot.
// A later definition replaces an earlier one with the same name.
func (b *IndexBuilder) WithDefinitions(definitions ...IndexDefinition) *IndexBuilder {
	b.definitions = make(map[string]IndexDefinition, len(definitions))
	for _, def := range definitions {
		b.definitions[def.GetName()] = def
	}
	return b
}

func (b *IndexBuilder) Build() (*IndexBuilder, error) {
	if err := b.config.Validate(); err != nil {
		return nil, err
	}
	if b.config.Parallelism <= 0 {
		slog.Warn("Invalid parallelism, running indices sequentially", "parallelism", b.config.Parallelism)
		b.config.Parallelism = 1
	}
	b.aggregator = NewAsOfAggregator(b.config.Divisor, b.config.Precision)
	return b, nil
}

// BuildAll loads a snapshot and builds every index from it. A store read
// failure aborts the run with no partial output.
func (b *IndexBuilder) BuildAll(ctx context.Context) (*datamodels.IndexResult, error) {
	if b.db == nil {
		return nil, errors.New("index builder has no database")
	}
	snapshot, err := b.db.LoadSnapshot(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load snapshot")
	}
	return b.BuildIndices(ctx, snapshot)
}

func (b *IndexBuilder) BuildIndices(ctx context.Context, snapshot *datamodels.Snapshot) (*datamodels.IndexResult, error) {
	if b.aggregator == nil {
		return nil, errors.New("index builder used before Build")
	}
	start := time.Now()

	definitions := b.definitions
	if definitions == nil {
		definitions = DefinitionsFromSnapshot(snapshot, b.config.BlueChip)
	}
	if snapshot.IsEmpty() {
		slog.Warn("Snapshot has no observations, every series will be empty")
	}

	queryTimes := snapshot.QueryTimes()
	history := NewMemberHistory(snapshot.Observations)

	names := make([]string, 0, len(definitions))
	for name := range definitions {
		names = append(names, name)
	}
	sort.Strings(names)

	series := make([]datamodels.IndexSeries, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.config.Parallelism)
	for i, name := range names {
		i, name := i, name
		def := definitions[name]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			members, err := def.Members(snapshot)
			if err != nil {
				return errors.Wrapf(err, "failed to resolve members of index %s", name)
			}
			series[i] = datamodels.IndexSeries{
				Name:    name,
				Kind:    def.GetKind(),
				Members: members,
				Points:  b.aggregator.Aggregate(history, members, queryTimes),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		metrics.IndexBuildsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	result := &datamodels.IndexResult{
		RunId:      uuid.New().String(),
		BuiltAt:    time.Now().UTC(),
		QueryTimes: queryTimes,
		Indices:    make(map[string]datamodels.IndexSeries, len(series)),
	}
	for _, s := range series {
		result.Indices[s.Name] = s
	}

	metrics.IndexBuildsTotal.WithLabelValues("ok").Inc()
	metrics.IndexBuildDuration.Observe(time.Since(start).Seconds())
	slog.Info("Built indices",
		"run_id", result.RunId,
		"indices", len(result.Indices),
		"query_times", len(queryTimes),
		"elapsed", time.Since(start))
	return result, nil
}
