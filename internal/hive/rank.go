package hive

import "sort"

// Less reports whether a ranks ahead of b: higher success count first, then older creation,
// then id so the order is total.
func Less(a, b Learning) bool {
	if a.SuccessCount != b.SuccessCount {
		return a.SuccessCount > b.SuccessCount
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID.String() < b.ID.String()
}

// Rank sorts learnings in place using Less.
func Rank(ls []Learning) {
	sort.SliceStable(ls, func(i, j int) bool { return Less(ls[i], ls[j]) })
}
