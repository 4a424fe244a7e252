package rangetable

type Iterator struct {
	current int
	keys    []int64
	table   map[int64]Entry
}

func (r *Iterator) Value() Entry {
	return r.table[r.keys[r.current]]
}

// Start returns the start of the current entry's range.
func (r *Iterator) Start() int64 {
	return r.keys[r.current]
}

func (r *Iterator) Next() bool {
	r.current++
	return r.current < len(r.keys)
}

// IsConsecutive reports whether the current entry starts where the previous
// one ends.
func (r *Iterator) IsConsecutive() bool {
	if r.current < 1 {
		return false
	}
	return r.table[r.keys[r.current-1]].Interval().End == r.keys[r.current]
}
