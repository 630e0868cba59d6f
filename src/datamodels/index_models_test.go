package datamodels

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSnapshot(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	snapshot := &Snapshot{
		Authors: []AuthorWithTags{
			{Id: 1, Name: "a", Tags: []string{"finance", "tech"}},
			{Id: 2, Name: "b", Tags: []string{"finance"}},
			{Id: 3, Name: "c"},
		},
		Observations: []Observation{
			{Id: 1, AuthorId: 1, FollowersCount: 10, RecordedAt: t0},
			{Id: 2, AuthorId: 2, FollowersCount: 20, RecordedAt: t0},
			{Id: 3, AuthorId: 1, FollowersCount: 11, RecordedAt: t0.Add(time.Hour)},
			{Id: 4, AuthorId: 1, FollowersCount: 12, RecordedAt: t0.Add(time.Hour)},
			{Id: 5, AuthorId: 2, FollowersCount: 21, RecordedAt: t0.Add(-time.Hour)},
		},
	}

	t.Run("QueryTimes", func(t *testing.T) {
		times := snapshot.QueryTimes()
		assert.Equal(t, []time.Time{t0.Add(-time.Hour), t0, t0.Add(time.Hour)}, times)
	})

	t.Run("QueryTimes does not reorder observations", func(t *testing.T) {
		snapshot.QueryTimes()
		assert.Equal(t, int64(1), snapshot.Observations[0].Id)
		assert.Equal(t, int64(5), snapshot.Observations[4].Id)
	})

	t.Run("Tags", func(t *testing.T) {
		assert.Equal(t, []string{"finance", "tech"}, snapshot.Tags())
	})

	t.Run("AuthorsWithTag", func(t *testing.T) {
		assert.Equal(t, []int64{1, 2}, snapshot.AuthorsWithTag("finance"))
		assert.Equal(t, []int64{1}, snapshot.AuthorsWithTag("tech"))
		assert.Empty(t, snapshot.AuthorsWithTag("sports"))
	})

	t.Run("IsEmpty", func(t *testing.T) {
		assert.False(t, snapshot.IsEmpty())
		assert.True(t, (&Snapshot{}).IsEmpty())
	})
}

func TestIndexResult(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	result := &IndexResult{
		Indices: map[string]IndexSeries{
			"tech":    {Name: "tech", Points: []SeriesPoint{{Time: t0, Value: 1}}},
			"finance": {Name: "finance", Points: []SeriesPoint{{Time: t0, Value: 2}, {Time: t0, Value: 3}}},
		},
	}

	assert.Equal(t, []string{"finance", "tech"}, result.Names())
	assert.Equal(t, 3, result.PointCount())
	assert.Len(t, result.SeriesByName()["finance"], 2)
}

func TestIndicesConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  IndicesConfig
		wantErr bool
	}{
		{"valid", IndicesConfig{Divisor: 10000, Precision: 2, BlueChip: BlueChipConfig{Enabled: true, Name: "bc", Size: 100}}, false},
		{"zero divisor", IndicesConfig{Divisor: 0}, true},
		{"negative precision", IndicesConfig{Divisor: 1, Precision: -1}, true},
		{"blue chip without name", IndicesConfig{Divisor: 1, BlueChip: BlueChipConfig{Enabled: true, Size: 10}}, true},
		{"blue chip zero size", IndicesConfig{Divisor: 1, BlueChip: BlueChipConfig{Enabled: true, Name: "bc"}}, true},
		{"blue chip disabled", IndicesConfig{Divisor: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
