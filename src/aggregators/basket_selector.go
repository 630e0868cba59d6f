package aggregators

import (
	"sort"

	"socialdex/src/utils/errors"
)

// SelectBasket ranks the authors in latest by follower count descending and
// returns the first k. Equal counts fall back to ascending author id. A nil
// eligible admits every author.
func SelectBasket(latest map[int64]int64, k int, eligible func(authorId int64) bool) ([]int64, error) {
	if k <= 0 {
		return nil, errors.Wrapf(errors.ErrInvalidBasketSize, "k=%d", k)
	}

	candidates := make([]int64, 0, len(latest))
	for authorId := range latest {
		if eligible != nil && !eligible(authorId) {
			continue
		}
		candidates = append(candidates, authorId)
	}

	sort.Slice(candidates, func(i, j int) bool {
		ci, cj := latest[candidates[i]], latest[candidates[j]]
		if ci != cj {
			return ci > cj
		}
		return candidates[i] < candidates[j]
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates, nil
}
