package rangetable

import (
	"github.com/henderiw/intervalset/pkg/interval"
	"k8s.io/apimachinery/pkg/labels"
)

type Entry interface {
	Interval() interval.Interval[int64]
	Labels() labels.Set
}

type entry struct {
	iv     interval.Interval[int64]
	labels labels.Set
}

type Entries []Entry

func (r entry) Interval() interval.Interval[int64] { return r.iv }
func (r entry) Labels() labels.Set                 { return r.labels }

func NewEntry(iv interval.Interval[int64], l labels.Set) Entry {
	return entry{
		iv:     iv,
		labels: l,
	}
}

type ChangeKind int

const (
	Claimed ChangeKind = iota
	Released
	Updated
)

func (k ChangeKind) String() string {
	switch k {
	case Claimed:
		return "claimed"
	case Released:
		return "released"
	case Updated:
		return "updated"
	}
	return "unknown"
}

// Change is delivered to the table's event handlers.
type Change struct {
	Kind  ChangeKind
	Entry Entry
}
