package aggregators

import (
	"math"
	"sort"
	"time"

	"socialdex/src/datamodels"
)

// MemberHistory holds each author's observations sorted by (RecordedAt, Id).
// It is built once per snapshot and only read afterwards.
type MemberHistory map[int64][]datamodels.Observation

func NewMemberHistory(observations []datamodels.Observation) MemberHistory {
	history := make(MemberHistory)
	for _, o := range observations {
		history[o.AuthorId] = append(history[o.AuthorId], o)
	}
	for _, obs := range history {
		sort.SliceStable(obs, func(i, j int) bool {
			if !obs[i].RecordedAt.Equal(obs[j].RecordedAt) {
				return obs[i].RecordedAt.Before(obs[j].RecordedAt)
			}
			return obs[i].Id < obs[j].Id
		})
	}
	return history
}

// AsOf returns the follower count of the author's latest observation at or
// before t, and false when there is none.
func (h MemberHistory) AsOf(authorId int64, t time.Time) (int64, bool) {
	obs := h[authorId]
	idx := sort.Search(len(obs), func(i int) bool { return obs[i].RecordedAt.After(t) })
	if idx == 0 {
		return 0, false
	}
	return obs[idx-1].FollowersCount, true
}

type AsOfAggregator struct {
	divisor   float64
	precision int
}

func NewAsOfAggregator(divisor float64, precision int) *AsOfAggregator {
	if divisor <= 0 {
		divisor = datamodels.DefaultIndexDivisor
	}
	if precision < 0 {
		precision = datamodels.DefaultIndexPrecision
	}
	return &AsOfAggregator{divisor: divisor, precision: precision}
}

// Aggregate sums, for every query time, each member's as-of follower count.
// Members without a reading yet contribute zero. queryTimes must be ascending.
// No members means an empty series.
func (a *AsOfAggregator) Aggregate(history MemberHistory, members []int64, queryTimes []time.Time) []datamodels.SeriesPoint {
	if len(members) == 0 {
		return []datamodels.SeriesPoint{}
	}

	totals := make([]int64, len(queryTimes))
	for _, authorId := range members {
		obs := history[authorId]
		next := 0
		var current int64
		for ti, t := range queryTimes {
			// ties on RecordedAt are ordered by id, so the highest id lands last
			for next < len(obs) && !obs[next].RecordedAt.After(t) {
				current = obs[next].FollowersCount
				next++
			}
			totals[ti] += current
		}
	}

	points := make([]datamodels.SeriesPoint, len(queryTimes))
	for i, t := range queryTimes {
		points[i] = datamodels.SeriesPoint{
			Time:  t,
			Value: a.Scale(totals[i]),
			Total: totals[i],
		}
	}
	return points
}

// Scale divides a raw follower total by the display divisor and rounds it.
func (a *AsOfAggregator) Scale(total int64) float64 {
	return roundTo(float64(total)/a.divisor, a.precision)
}

func roundTo(value float64, precision int) float64 {
	factor := math.Pow(10, float64(precision))
	return math.Round(value*factor) / factor
}
