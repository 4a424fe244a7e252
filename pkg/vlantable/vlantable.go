package vlantable

import (
	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"
	"github.com/henderiw/intervalset/pkg/interval"
	"github.com/henderiw/intervalset/pkg/rangetable"
	"k8s.io/apimachinery/pkg/labels"
)

// VLAN IDs are discrete. The IDs first..last are stored as the claim
// [first, last+1] so neighbouring VLAN ranges touch without overlapping.

const (
	untaggedVLAN = 0
	defaultVLAN  = 1
	reservedVLAN = 4095
)

var ErrReserved = errors.New("reserved VLAN")

type VLANTable interface {
	Get(id int64) (labels.Set, error)
	Claim(id int64, l labels.Set) error
	ClaimRange(first, last int64, l labels.Set) error
	ClaimDynamic(l labels.Set) (int64, error)
	Release(id int64) error
	Update(id int64, l labels.Set) error

	Count() int
	Has(id int64) bool

	IsFree(id int64) bool
	FindFree() (int64, error)

	GetAll() map[int64]labels.Set
	GetByLabel(selector labels.Selector) map[int64]labels.Set
}

func reserved(id int64, vlanType string) rangetable.Entry {
	return rangetable.NewEntry(interval.New(id, id+1), labels.Set{"type": vlanType, "status": "reserved"})
}

var initEntries = rangetable.Entries{
	reserved(untaggedVLAN, "untagged"),
	reserved(defaultVLAN, "default"),
	reserved(reservedVLAN, "reserved"),
}

func isReserved(id int64) bool {
	return id == untaggedVLAN || id == defaultVLAN || id == reservedVLAN
}

func validate(iv interval.Interval[int64]) error {
	for id := iv.Start; id < iv.End; id++ {
		switch id {
		case untaggedVLAN:
			return errors.Wrapf(ErrReserved, "VLAN %d is the untagged VLAN", id)
		case defaultVLAN:
			return errors.Wrapf(ErrReserved, "VLAN %d is the default VLAN", id)
		case reservedVLAN:
			return errors.Wrapf(ErrReserved, "VLAN %d is reserved", id)
		}
	}
	return nil
}

func New(log logr.Logger) (VLANTable, error) {
	t, err := rangetable.New(
		interval.New[int64](untaggedVLAN, reservedVLAN+1),
		rangetable.WithInitEntries(initEntries),
		rangetable.WithValidation(validate),
		rangetable.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}
	return &vlanTable{table: t}, nil
}

type vlanTable struct {
	table rangetable.Table
}

func (r *vlanTable) Get(id int64) (labels.Set, error) {
	e, err := r.table.Get(id)
	if err != nil {
		return nil, err
	}
	// id is the end boundary of the claim before it
	if e.Interval().End == id {
		return nil, errors.Wrapf(rangetable.ErrNotFound, "VLAN %d", id)
	}
	return e.Labels(), nil
}

func (r *vlanTable) Claim(id int64, l labels.Set) error {
	return r.ClaimRange(id, id, l)
}

func (r *vlanTable) ClaimRange(first, last int64, l labels.Set) error {
	if last < first {
		return errors.Wrapf(rangetable.ErrInvalid, "VLAN range %d-%d", first, last)
	}
	return r.table.Claim(interval.New(first, last+1), l)
}

func (r *vlanTable) ClaimDynamic(l labels.Set) (int64, error) {
	iv, err := r.table.ClaimSize(1, l)
	if err != nil {
		return -1, err
	}
	return iv.Start, nil
}

// Release releases the claim that starts at id.
func (r *vlanTable) Release(id int64) error {
	if isReserved(id) {
		return errors.Wrapf(ErrReserved, "VLAN %d cannot be released", id)
	}
	return r.table.Release(id)
}

func (r *vlanTable) Update(id int64, l labels.Set) error {
	if isReserved(id) {
		return errors.Wrapf(ErrReserved, "VLAN %d cannot be updated", id)
	}
	return r.table.Update(id, l)
}

func (r *vlanTable) Count() int {
	return r.table.Count()
}

// Has reports whether id is claimed, on its own or as part of a range.
func (r *vlanTable) Has(id int64) bool {
	_, err := r.Get(id)
	return err == nil
}

func (r *vlanTable) IsFree(id int64) bool {
	return r.table.IsFree(interval.New(id, id+1))
}

func (r *vlanTable) FindFree() (int64, error) {
	for iv := range r.table.Free().All() {
		return iv.Start, nil
	}
	return -1, errors.Wrap(rangetable.ErrNoSpace, "no free VLAN")
}

func (r *vlanTable) GetAll() map[int64]labels.Set {
	return toMap(r.table.GetAll())
}

func (r *vlanTable) GetByLabel(selector labels.Selector) map[int64]labels.Set {
	return toMap(r.table.GetByLabel(selector))
}

func toMap(entries rangetable.Entries) map[int64]labels.Set {
	m := make(map[int64]labels.Set, len(entries))
	for _, e := range entries {
		m[e.Interval().Start] = e.Labels()
	}
	return m
}
