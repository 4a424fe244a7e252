package intervalset

import "github.com/henderiw/intervalset/pkg/interval"

// Iterator walks a snapshot of a set taken when it was created.
type Iterator[T any] struct {
	current int
	ranges  []interval.Interval[T]
}

func (s *Set[T]) Iterate() *Iterator[T] {
	return &Iterator[T]{current: -1, ranges: s.Ranges()}
}

func (r *Iterator[T]) Value() interval.Interval[T] {
	return r.ranges[r.current]
}

func (r *Iterator[T]) Next() bool {
	r.current++
	return r.current < len(r.ranges)
}

// Len returns the number of intervals in the snapshot.
func (r *Iterator[T]) Len() int {
	return len(r.ranges)
}
