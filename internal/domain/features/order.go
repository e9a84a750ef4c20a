package features

import (
	"sort"

	"github.com/okian/podium/internal/domain/model"
)

// orderBy returns row indices sorted by group then (season, round).
// Ties keep input order.
func orderBy(rows []model.Result, less func(a, b *model.Result) (bool, bool)) []int {
	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		a, b := &rows[idx[i]], &rows[idx[j]]
		if lt, decided := less(a, b); decided {
			return lt
		}
		return a.Key().Less(b.Key())
	})
	return idx
}

func byDriver(a, b *model.Result) (bool, bool) {
	if a.DriverID != b.DriverID {
		return a.DriverID < b.DriverID, true
	}
	return false, false
}

func byConstructor(a, b *model.Result) (bool, bool) {
	if a.ConstructorID != b.ConstructorID {
		return a.ConstructorID < b.ConstructorID, true
	}
	return false, false
}
