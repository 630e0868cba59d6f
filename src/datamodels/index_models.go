package datamodels

import (
	"sort"
	"time"
)

const (
	DefaultIndexDivisor   = 10000.0
	DefaultIndexPrecision = 2
	DefaultBasketSize     = 100
	DefaultBlueChipName   = "蓝筹100"
)

type IndexKind string

const (
	IndexKindTag    IndexKind = "tag"
	IndexKindBasket IndexKind = "basket"
)

// Snapshot is an immutable view of the Observation Store taken at the start of a run.
// Observations are expected in (RecordedAt, Id) ascending order.
type Snapshot struct {
	TakenAt      time.Time
	Authors      []AuthorWithTags
	Observations []Observation
	// author id -> follower count at the global max RecordedAt
	Latest map[int64]int64
}

func (s *Snapshot) IsEmpty() bool {
	return len(s.Observations) == 0
}

// QueryTimes returns every distinct observation timestamp, ascending.
func (s *Snapshot) QueryTimes() []time.Time {
	times := make([]time.Time, 0, len(s.Observations))
	for _, o := range s.Observations {
		times = append(times, o.RecordedAt)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	distinct := times[:0]
	for i, t := range times {
		if i > 0 && t.Equal(distinct[len(distinct)-1]) {
			continue
		}
		distinct = append(distinct, t)
	}
	return distinct
}

// Tags returns the distinct tag labels across all authors, sorted.
func (s *Snapshot) Tags() []string {
	seen := make(map[string]bool)
	tags := make([]string, 0)
	for _, a := range s.Authors {
		for _, t := range a.Tags {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	sort.Strings(tags)
	return tags
}

func (s *Snapshot) AuthorsWithTag(tag string) []int64 {
	ids := make([]int64, 0)
	for _, a := range s.Authors {
		if a.HasTag(tag) {
			ids = append(ids, a.Id)
		}
	}
	return ids
}

type SeriesPoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
	// raw follower sum before scaling
	Total int64 `json:"-"`
}

type IndexSeries struct {
	Name    string        `json:"name"`
	Kind    IndexKind     `json:"kind"`
	Members []int64       `json:"members"`
	Points  []SeriesPoint `json:"points"`
}

type IndexSummary struct {
	First     float64 `json:"first"`
	Last      float64 `json:"last"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Mean      float64 `json:"mean"`
	ChangePct float64 `json:"change_pct"`
}

// IndexResult is the full output of one build.
type IndexResult struct {
	RunId      string                 `json:"run_id"`
	BuiltAt    time.Time              `json:"built_at"`
	QueryTimes []time.Time            `json:"query_times"`
	Indices    map[string]IndexSeries `json:"indices"`
}

func (r *IndexResult) Names() []string {
	names := make([]string, 0, len(r.Indices))
	for name := range r.Indices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SeriesByName is the presentation shape: index name -> ordered (time, value) pairs.
func (r *IndexResult) SeriesByName() map[string][]SeriesPoint {
	out := make(map[string][]SeriesPoint, len(r.Indices))
	for name, series := range r.Indices {
		out[name] = series.Points
	}
	return out
}

func (r *IndexResult) PointCount() int {
	count := 0
	for _, series := range r.Indices {
		count += len(series.Points)
	}
	return count
}
