package intervalset

import (
	"iter"
	"strings"

	"github.com/google/btree"
	"github.com/henderiw/intervalset/pkg/interval"
	"golang.org/x/exp/constraints"
)

const degree = 16

// Set is a normalized collection of closed intervals: sorted by start,
// pairwise disjoint, with touching intervals merged and empty intervals
// dropped. A Set is not safe for concurrent use.
type Set[T any] struct {
	cmp  interval.Compare[T]
	tree *btree.BTreeG[interval.Interval[T]]
}

// New returns a set over the natural order of T holding the union of ivs.
func New[T constraints.Ordered](ivs ...interval.Interval[T]) *Set[T] {
	return NewFunc(interval.Ordered[T](), ivs...)
}

// NewFunc returns a set ordered by cmp holding the union of ivs.
func NewFunc[T any](cmp interval.Compare[T], ivs ...interval.Interval[T]) *Set[T] {
	s := &Set[T]{
		cmp:  cmp,
		tree: btree.NewG[interval.Interval[T]](degree, cmp.Less),
	}
	s.AddAll(ivs)
	return s
}

// Add merges x into the set. Every stored interval intersecting x collapses
// together with x into a single interval.
func (s *Set[T]) Add(x interval.Interval[T]) {
	if s.cmp.IsEmpty(x) {
		return
	}
	merged := x
	for _, r := range s.extract(x) {
		merged.Start = s.cmp.Min(merged.Start, r.Start)
		merged.End = s.cmp.Max(merged.End, r.End)
	}
	s.tree.ReplaceOrInsert(merged)
}

func (s *Set[T]) AddAll(xs []interval.Interval[T]) {
	for _, x := range xs {
		s.Add(x)
	}
}

func (s *Set[T]) AddSet(other *Set[T]) {
	s.AddAll(other.Ranges())
}

// Remove carves x out of the set. The boundary points of x stay in the set.
func (s *Set[T]) Remove(x interval.Interval[T]) {
	if s.cmp.IsEmpty(x) {
		return
	}
	for _, r := range s.extract(x) {
		for _, piece := range s.cmp.Difference(r, x) {
			s.insert(piece)
		}
	}
}

func (s *Set[T]) RemoveAll(xs []interval.Interval[T]) {
	for _, x := range xs {
		s.Remove(x)
	}
}

func (s *Set[T]) RemoveSet(other *Set[T]) {
	s.RemoveAll(other.Ranges())
}

// Intersect keeps only the parts of the set that lie within x.
func (s *Set[T]) Intersect(x interval.Interval[T]) {
	var hits []interval.Interval[T]
	if !s.cmp.IsEmpty(x) {
		hits = s.extract(x)
	}
	s.tree.Clear(true)
	for _, r := range hits {
		for _, piece := range s.cmp.Intersection(r, x) {
			s.insert(piece)
		}
	}
}

// IntersectAll keeps the parts of the set that lie within any of xs: the set
// is intersected with every window separately and the results are merged.
func (s *Set[T]) IntersectAll(xs []interval.Interval[T]) {
	var pieces []interval.Interval[T]
	for _, x := range xs {
		sub := s.Clone()
		sub.Intersect(x)
		pieces = append(pieces, sub.Ranges()...)
	}
	s.tree.Clear(true)
	s.AddAll(pieces)
}

func (s *Set[T]) IntersectSet(other *Set[T]) {
	s.IntersectAll(other.Ranges())
}

// Union returns a new set holding s ∪ other.
func (s *Set[T]) Union(other *Set[T]) *Set[T] {
	r := s.Clone()
	r.AddSet(other)
	return r
}

// Difference returns a new set holding s − other.
func (s *Set[T]) Difference(other *Set[T]) *Set[T] {
	r := s.Clone()
	r.RemoveSet(other)
	return r
}

// Intersection returns a new set holding s ∩ other.
func (s *Set[T]) Intersection(other *Set[T]) *Set[T] {
	r := s.Clone()
	r.IntersectSet(other)
	return r
}

func (s *Set[T]) Plus(xs ...interval.Interval[T]) *Set[T] {
	r := s.Clone()
	r.AddAll(xs)
	return r
}

func (s *Set[T]) Minus(xs ...interval.Interval[T]) *Set[T] {
	r := s.Clone()
	r.RemoveAll(xs)
	return r
}

// Len returns the number of stored intervals.
func (s *Set[T]) Len() int {
	return s.tree.Len()
}

func (s *Set[T]) IsEmpty() bool {
	return s.tree.Len() == 0
}

func (s *Set[T]) Clear() {
	s.tree.Clear(true)
}

// Clone returns an independent copy of the set.
func (s *Set[T]) Clone() *Set[T] {
	return &Set[T]{cmp: s.cmp, tree: s.tree.Clone()}
}

// All yields the stored intervals in ascending order. Every call walks the
// current contents again.
func (s *Set[T]) All() iter.Seq[interval.Interval[T]] {
	return func(yield func(interval.Interval[T]) bool) {
		s.tree.Ascend(func(r interval.Interval[T]) bool {
			return yield(r)
		})
	}
}

// Ranges returns a copy of the stored intervals in ascending order.
func (s *Set[T]) Ranges() []interval.Interval[T] {
	out := make([]interval.Interval[T], 0, s.tree.Len())
	s.tree.Ascend(func(r interval.Interval[T]) bool {
		out = append(out, r)
		return true
	})
	return out
}

// Contains reports whether v lies in one of the stored intervals.
func (s *Set[T]) Contains(v T) bool {
	r, ok := s.floor(v)
	return ok && s.cmp.Within(v, r)
}

// Covers reports whether x lies entirely in one stored interval.
func (s *Set[T]) Covers(x interval.Interval[T]) bool {
	r, ok := s.floor(x.Start)
	return ok && s.cmp.Contains(r, x)
}

// Extent returns the interval spanning from the first start to the last end.
func (s *Set[T]) Extent() (interval.Interval[T], bool) {
	first, ok := s.tree.Min()
	if !ok {
		return first, false
	}
	last, _ := s.tree.Max()
	return interval.Interval[T]{Start: first.Start, End: last.End}, true
}

func (s *Set[T]) Equal(other *Set[T]) bool {
	if s.Len() != other.Len() {
		return false
	}
	a, b := s.Ranges(), other.Ranges()
	for i := range a {
		if s.cmp(a[i].Start, b[i].Start) != 0 || s.cmp(a[i].End, b[i].End) != 0 {
			return false
		}
	}
	return true
}

func (s *Set[T]) String() string {
	var sb strings.Builder
	sb.WriteString("IntervalSet[")
	i := 0
	s.tree.Ascend(func(r interval.Interval[T]) bool {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(r.String())
		i++
		return true
	})
	sb.WriteString("]")
	return sb.String()
}

// floor returns the stored interval with the largest start <= v.
func (s *Set[T]) floor(v T) (interval.Interval[T], bool) {
	var (
		found interval.Interval[T]
		ok    bool
	)
	s.tree.DescendLessOrEqual(interval.Interval[T]{Start: v}, func(r interval.Interval[T]) bool {
		found, ok = r, true
		return false
	})
	return found, ok
}

// extract removes and returns every stored interval intersecting x, which
// must not be empty. Only the interval starting before x can reach into it
// from the left; all others start within x.
func (s *Set[T]) extract(x interval.Interval[T]) []interval.Interval[T] {
	var out []interval.Interval[T]
	if r, ok := s.floor(x.Start); ok && s.cmp(r.Start, x.Start) < 0 && s.cmp.Intersects(r, x) {
		out = append(out, r)
	}
	s.tree.AscendGreaterOrEqual(x, func(r interval.Interval[T]) bool {
		if s.cmp(r.Start, x.End) > 0 {
			return false
		}
		out = append(out, r)
		return true
	})
	for _, r := range out {
		s.tree.Delete(r)
	}
	return out
}

// insert stores a piece known to be disjoint from the set.
func (s *Set[T]) insert(r interval.Interval[T]) {
	if s.cmp.IsEmpty(r) {
		return
	}
	s.tree.ReplaceOrInsert(r)
}
