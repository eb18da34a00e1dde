package filter

import (
	"slices"

	"signal-filter.klederson.com/internal/queue"
)

// snapshot returns a sorted copy of q's current samples. It is rebuilt on
// every call so results always reflect the live window.
func snapshot(q *queue.Queue) []int64 {
	s := q.Values()
	slices.Sort(s)
	return s
}

type run struct {
	value int64
	n     int
}

// runs groups a sorted slice into runs of equal values.
func runs(sorted []int64) []run {
	var out []run
	for _, v := range sorted {
		if len(out) > 0 && out[len(out)-1].value == v {
			out[len(out)-1].n++
			continue
		}
		out = append(out, run{value: v, n: 1})
	}
	return out
}
