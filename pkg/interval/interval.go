package interval

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Interval is a closed range [Start, End]. An interval with End <= Start is
// empty and is ignored by the set operations.
type Interval[T any] struct {
	Start T
	End   T
}

func New[T any](start, end T) Interval[T] {
	return Interval[T]{Start: start, End: end}
}

func (r Interval[T]) String() string {
	return fmt.Sprintf("%v..%v", r.Start, r.End)
}

// Bounds returns the start and end as untyped values, used by generic
// formatters which cannot name the type parameter.
func (r Interval[T]) Bounds() (any, any) {
	return r.Start, r.End
}

// Compare defines a total order on T: negative if a < b, zero if a == b,
// positive if a > b.
type Compare[T any] func(a, b T) int

// Ordered returns the natural order of an ordered type.
func Ordered[T constraints.Ordered]() Compare[T] {
	return func(a, b T) int {
		switch {
		case a < b:
			return -1
		case b < a:
			return 1
		}
		return 0
	}
}

// Less orders intervals by their start.
func (c Compare[T]) Less(a, b Interval[T]) bool {
	return c(a.Start, b.Start) < 0
}

func (c Compare[T]) IsEmpty(r Interval[T]) bool {
	return c(r.End, r.Start) <= 0
}

// Within reports whether v lies in r, both ends inclusive.
func (c Compare[T]) Within(v T, r Interval[T]) bool {
	return c(r.Start, v) <= 0 && c(v, r.End) <= 0
}

// Intersects reports whether a and b share at least one point. Intervals
// that only touch at a boundary intersect.
func (c Compare[T]) Intersects(a, b Interval[T]) bool {
	if c.IsEmpty(a) || c.IsEmpty(b) {
		return false
	}
	return c.Within(b.Start, a) || c.Within(b.End, a) || c.Within(a.Start, b)
}

// Contains reports whether b lies entirely within a.
func (c Compare[T]) Contains(a, b Interval[T]) bool {
	return !c.IsEmpty(b) && c.Within(b.Start, a) && c.Within(b.End, a)
}

func (c Compare[T]) Union(a, b Interval[T]) []Interval[T] {
	switch {
	case c.IsEmpty(a) && c.IsEmpty(b):
		return nil
	case c.IsEmpty(a):
		return []Interval[T]{b}
	case c.IsEmpty(b):
		return []Interval[T]{a}
	case c.Intersects(a, b):
		return []Interval[T]{{
			Start: c.Min(a.Start, b.Start),
			End:   c.Max(a.End, b.End),
		}}
	case c.Less(b, a):
		return []Interval[T]{b, a}
	default:
		return []Interval[T]{a, b}
	}
}

// Intersection returns the common part of a and b. Touching intervals yield
// a single zero-length interval.
func (c Compare[T]) Intersection(a, b Interval[T]) []Interval[T] {
	if !c.Intersects(a, b) {
		return nil
	}
	return []Interval[T]{{
		Start: c.Max(a.Start, b.Start),
		End:   c.Min(a.End, b.End),
	}}
}

// Difference returns the parts of a not covered by b. The boundary points of
// b are kept in the result.
func (c Compare[T]) Difference(a, b Interval[T]) []Interval[T] {
	switch {
	case !c.Intersects(a, b) || c.IsEmpty(b):
		return []Interval[T]{a}
	case c.Contains(b, a):
		return nil
	case c.strictlyContains(a, b):
		//   a
		// s-----------e
		//     s---e
		//       b
		return []Interval[T]{
			{Start: a.Start, End: b.Start},
			{Start: b.End, End: a.End},
		}
	case c(a.Start, b.Start) < 0:
		//   a
		// s------e
		//     s------e
		//        b
		return []Interval[T]{{Start: a.Start, End: b.Start}}
	default:
		//       a
		//     s------e
		// s------e
		//    b
		return []Interval[T]{{Start: b.End, End: a.End}}
	}
}

// strictlyContains reports whether b is inside a without touching either
// edge of a.
func (c Compare[T]) strictlyContains(a, b Interval[T]) bool {
	return c(a.Start, b.Start) < 0 && c(b.End, a.End) < 0
}

// Min returns the smallest of the given values. The first value is mandatory
// so the result is always defined.
func (c Compare[T]) Min(v T, vs ...T) T {
	for _, x := range vs {
		if c(x, v) < 0 {
			v = x
		}
	}
	return v
}

// Max returns the largest of the given values.
func (c Compare[T]) Max(v T, vs ...T) T {
	for _, x := range vs {
		if c(v, x) < 0 {
			v = x
		}
	}
	return v
}

func IsEmpty[T constraints.Ordered](r Interval[T]) bool {
	return Ordered[T]().IsEmpty(r)
}

func Intersects[T constraints.Ordered](a, b Interval[T]) bool {
	return Ordered[T]().Intersects(a, b)
}

func Contains[T constraints.Ordered](a, b Interval[T]) bool {
	return Ordered[T]().Contains(a, b)
}

func Union[T constraints.Ordered](a, b Interval[T]) []Interval[T] {
	return Ordered[T]().Union(a, b)
}

func Intersection[T constraints.Ordered](a, b Interval[T]) []Interval[T] {
	return Ordered[T]().Intersection(a, b)
}

func Difference[T constraints.Ordered](a, b Interval[T]) []Interval[T] {
	return Ordered[T]().Difference(a, b)
}
