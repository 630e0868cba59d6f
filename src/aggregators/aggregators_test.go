//go:build unit

package aggregators

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialdex/src/datamodels"
	"socialdex/src/utils/errors"
)

var (
	t1 = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	t2 = t1.Add(6 * time.Hour)
	t3 = t2.Add(6 * time.Hour)
)

func obs(id, authorId, count int64, at time.Time) datamodels.Observation {
	return datamodels.Observation{Id: id, AuthorId: authorId, FollowersCount: count, RecordedAt: at}
}

// A and B tagged finance, C tagged finance with no observations, D tagged tech.
func createTestSnapshot() *datamodels.Snapshot {
	return &datamodels.Snapshot{
		TakenAt: t3,
		Authors: []datamodels.AuthorWithTags{
			{Id: 1, Name: "A", Tags: []string{"finance"}},
			{Id: 2, Name: "B", Tags: []string{"finance"}},
			{Id: 3, Name: "C", Tags: []string{"finance"}},
			{Id: 4, Name: "D", Tags: []string{"tech"}, BlueChip: true},
		},
		Observations: []datamodels.Observation{
			obs(1, 1, 100, t1),
			obs(2, 2, 80, t1),
			obs(3, 1, 150, t2),
			obs(4, 4, 1000, t3),
		},
		Latest: map[int64]int64{4: 1000},
	}
}

func newTestBuilder(t *testing.T, blueChip datamodels.BlueChipConfig) *IndexBuilder {
	t.Helper()
	builder, err := NewIndexBuilder(nil).WithIndicesConfig(datamodels.IndicesConfig{
		Divisor:     datamodels.DefaultIndexDivisor,
		Precision:   datamodels.DefaultIndexPrecision,
		Parallelism: 4,
		BlueChip:    blueChip,
	}).Build()
	require.NoError(t, err)
	return builder
}

func TestSelectBasket(t *testing.T) {
	latest := map[int64]int64{1: 500, 2: 300, 3: 100}

	basket, err := SelectBasket(latest, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, basket)

	// fewer candidates than k
	basket, err = SelectBasket(latest, 10, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, basket)

	basket, err = SelectBasket(map[int64]int64{}, 3, nil)
	require.NoError(t, err)
	assert.Empty(t, basket)

	_, err = SelectBasket(latest, 0, nil)
	assert.True(t, errors.Is(err, errors.ErrInvalidBasketSize))
}

func TestSelectBasketTieBreak(t *testing.T) {
	latest := map[int64]int64{9: 200, 4: 200, 7: 200, 1: 50}
	for i := 0; i < 20; i++ {
		basket, err := SelectBasket(latest, 2, nil)
		require.NoError(t, err)
		assert.Equal(t, []int64{4, 7}, basket)
	}
}

func TestSelectBasketEligible(t *testing.T) {
	latest := map[int64]int64{1: 500, 2: 300, 3: 100}
	basket, err := SelectBasket(latest, 2, func(id int64) bool { return id != 1 })
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, basket)
}

func TestSelectBasketRanking(t *testing.T) {
	latest := map[int64]int64{}
	for id := int64(1); id <= 50; id++ {
		latest[id] = (id * 37) % 11
	}
	basket, err := SelectBasket(latest, 20, nil)
	require.NoError(t, err)
	assert.Len(t, basket, 20)
	for i := 1; i < len(basket); i++ {
		assert.GreaterOrEqual(t, latest[basket[i-1]], latest[basket[i]])
	}
}

func TestMemberHistoryAsOf(t *testing.T) {
	history := NewMemberHistory(createTestSnapshot().Observations)

	_, ok := history.AsOf(1, t1.Add(-time.Second))
	assert.False(t, ok)

	count, ok := history.AsOf(1, t1)
	assert.True(t, ok)
	assert.Equal(t, int64(100), count)

	count, _ = history.AsOf(1, t3)
	assert.Equal(t, int64(150), count)

	_, ok = history.AsOf(3, t3)
	assert.False(t, ok)
}

func TestAggregate(t *testing.T) {
	aggregator := NewAsOfAggregator(datamodels.DefaultIndexDivisor, datamodels.DefaultIndexPrecision)
	history := NewMemberHistory(createTestSnapshot().Observations)

	points := aggregator.Aggregate(history, []int64{1, 2, 3}, []time.Time{t1, t2, t3})
	require.Len(t, points, 3)

	assert.Equal(t, int64(180), points[0].Total)
	assert.Equal(t, int64(230), points[1].Total)
	// B still contributes its last known reading
	assert.Equal(t, int64(230), points[2].Total)
	assert.Equal(t, 0.02, points[0].Value)
	assert.Equal(t, 0.02, points[1].Value)
	assert.Equal(t, []time.Time{t1, t2, t3}, []time.Time{points[0].Time, points[1].Time, points[2].Time})
}

func TestAggregateAgreesWithAsOf(t *testing.T) {
	aggregator := NewAsOfAggregator(1, 0)
	observations := []datamodels.Observation{}
	var id int64
	for author := int64(1); author <= 5; author++ {
		for step := int64(0); step < 8; step += author {
			id++
			observations = append(observations, obs(id, author, author*1000+step, t1.Add(time.Duration(step)*time.Hour)))
		}
	}
	snapshot := &datamodels.Snapshot{Observations: observations}
	history := NewMemberHistory(observations)
	queryTimes := snapshot.QueryTimes()
	members := []int64{1, 2, 3, 4, 5, 6}

	points := aggregator.Aggregate(history, members, queryTimes)
	for i, qt := range queryTimes {
		var expected int64
		for _, m := range members {
			count, _ := history.AsOf(m, qt)
			expected += count
		}
		assert.Equal(t, expected, points[i].Total, "query time %s", qt)
	}
}

func TestAggregateDuplicateTimestamp(t *testing.T) {
	aggregator := NewAsOfAggregator(1, 0)
	// delivered out of id order on purpose
	history := NewMemberHistory([]datamodels.Observation{
		obs(8, 1, 300, t1),
		obs(5, 1, 200, t1),
	})
	points := aggregator.Aggregate(history, []int64{1}, []time.Time{t1})
	assert.Equal(t, int64(300), points[0].Total)

	count, _ := history.AsOf(1, t1)
	assert.Equal(t, int64(300), count)
}

func TestAggregateEdgeCases(t *testing.T) {
	aggregator := NewAsOfAggregator(datamodels.DefaultIndexDivisor, datamodels.DefaultIndexPrecision)
	history := NewMemberHistory(createTestSnapshot().Observations)

	assert.Empty(t, aggregator.Aggregate(history, nil, []time.Time{t1, t2}))

	points := aggregator.Aggregate(history, []int64{3}, []time.Time{t1, t2})
	require.Len(t, points, 2)
	for _, p := range points {
		assert.Equal(t, 0.0, p.Value)
	}
}

func TestScaleRounding(t *testing.T) {
	aggregator := NewAsOfAggregator(10000, 2)
	assert.Equal(t, 12.35, aggregator.Scale(123456))
	assert.Equal(t, 0.0, aggregator.Scale(0))

	// invalid settings fall back to defaults
	aggregator = NewAsOfAggregator(0, -1)
	assert.Equal(t, 1.5, aggregator.Scale(15000))
}

func TestDefinitionsFromSnapshot(t *testing.T) {
	snapshot := createTestSnapshot()

	defs := DefinitionsFromSnapshot(snapshot, datamodels.BlueChipConfig{Enabled: false})
	assert.Len(t, defs, 2)
	assert.Equal(t, TagIndex{Tag: "finance"}, defs["finance"])

	defs = DefinitionsFromSnapshot(snapshot, datamodels.BlueChipConfig{Enabled: true, Name: "tech", Size: 3})
	assert.Len(t, defs, 2)
	assert.Equal(t, datamodels.IndexKindBasket, defs["tech"].GetKind())
}

func TestBuildIndices(t *testing.T) {
	builder := newTestBuilder(t, datamodels.BlueChipConfig{Enabled: true, Name: datamodels.DefaultBlueChipName, Size: 2})
	snapshot := createTestSnapshot()

	result, err := builder.BuildIndices(context.Background(), snapshot)
	require.NoError(t, err)
	assert.Equal(t, []string{"finance", "tech", datamodels.DefaultBlueChipName}, result.Names())
	assert.Equal(t, []time.Time{t1, t2, t3}, result.QueryTimes)
	assert.NotEmpty(t, result.RunId)

	// every series shares the global axis
	for name, series := range result.Indices {
		require.Len(t, series.Points, 3, name)
		for i, p := range series.Points {
			assert.Equal(t, result.QueryTimes[i], p.Time, name)
		}
	}

	finance := result.Indices["finance"]
	assert.Equal(t, []int64{1, 2, 3}, finance.Members)
	assert.Equal(t, []int64{180, 230, 230}, []int64{finance.Points[0].Total, finance.Points[1].Total, finance.Points[2].Total})

	tech := result.Indices["tech"]
	assert.Equal(t, []float64{0, 0, 0.1}, []float64{tech.Points[0].Value, tech.Points[1].Value, tech.Points[2].Value})

	// only author 4 was observed at the latest timestamp
	blueChip := result.Indices[datamodels.DefaultBlueChipName]
	assert.Equal(t, datamodels.IndexKindBasket, blueChip.Kind)
	assert.Equal(t, []int64{4}, blueChip.Members)
}

func TestBuildIndicesPinnedDefinitions(t *testing.T) {
	builder, err := NewIndexBuilder(nil).
		WithDefinitions(
			TagIndex{Tag: "tech"},
			BasketIndex{Name: "top", K: 5},
			BasketIndex{Name: "top", K: 1},
		).
		Build()
	require.NoError(t, err)

	result, err := builder.BuildIndices(context.Background(), createTestSnapshot())
	require.NoError(t, err)
	// tags present in the snapshot but not pinned are not built
	assert.Equal(t, []string{"tech", "top"}, result.Names())
	assert.Equal(t, "top", result.Indices["top"].Name)
	assert.Equal(t, []int64{4}, result.Indices["top"].Members)
	assert.Equal(t, int64(1000), result.Indices["top"].Points[2].Total)
}

func TestBuildIndicesIdempotent(t *testing.T) {
	builder := newTestBuilder(t, datamodels.BlueChipConfig{Enabled: true, Name: datamodels.DefaultBlueChipName, Size: 2})
	snapshot := createTestSnapshot()

	first, err := builder.BuildIndices(context.Background(), snapshot)
	require.NoError(t, err)
	second, err := builder.BuildIndices(context.Background(), snapshot)
	require.NoError(t, err)

	assert.Equal(t, first.Indices, second.Indices)
	assert.Equal(t, first.QueryTimes, second.QueryTimes)
}

func TestBuildIndicesEmptySnapshot(t *testing.T) {
	builder := newTestBuilder(t, datamodels.BlueChipConfig{Enabled: true, Name: datamodels.DefaultBlueChipName, Size: 2})
	snapshot := &datamodels.Snapshot{
		Authors: []datamodels.AuthorWithTags{{Id: 1, Tags: []string{"finance"}}},
		Latest:  map[int64]int64{},
	}

	result, err := builder.BuildIndices(context.Background(), snapshot)
	require.NoError(t, err)
	assert.Empty(t, result.QueryTimes)
	assert.Empty(t, result.Indices["finance"].Points)
	assert.Empty(t, result.Indices[datamodels.DefaultBlueChipName].Members)
}

func TestBuildIndicesEligibleOnly(t *testing.T) {
	snapshot := createTestSnapshot()
	snapshot.Latest = map[int64]int64{1: 5000, 4: 1000}

	builder := newTestBuilder(t, datamodels.BlueChipConfig{Enabled: true, Name: "bc", Size: 1, EligibleOnly: true})
	result, err := builder.BuildIndices(context.Background(), snapshot)
	require.NoError(t, err)
	assert.Equal(t, []int64{4}, result.Indices["bc"].Members)
}

type failingSnapshotDatabase struct{}

func (failingSnapshotDatabase) LoadSnapshot(ctx context.Context) (*datamodels.Snapshot, error) {
	return nil, errors.New("connection reset")
}

func TestBuildAllFailsOnStoreError(t *testing.T) {
	builder, err := NewIndexBuilder(failingSnapshotDatabase{}).Build()
	require.NoError(t, err)

	result, err := builder.BuildAll(context.Background())
	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	_, err := NewIndexBuilder(nil).WithIndicesConfig(datamodels.IndicesConfig{Divisor: 0}).Build()
	assert.Error(t, err)
}
