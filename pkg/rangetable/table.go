package rangetable

import (
	"slices"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"
	"github.com/henderiw/intervalset/pkg/event"
	"github.com/henderiw/intervalset/pkg/interval"
	"github.com/henderiw/intervalset/pkg/intervalset"
	"github.com/henderiw/intervalset/pkg/trace"
	"k8s.io/apimachinery/pkg/labels"
)

var (
	ErrInvalid   = errors.New("invalid range")
	ErrOutOfPool = errors.New("range outside of pool")
	ErrOverlap   = errors.New("range overlaps a claimed range")
	ErrNotFound  = errors.New("no matching claim")
	ErrNoSpace   = errors.New("no free range of the requested size")
)

// Table hands out non-overlapping ranges of a pool. Claims may touch: [0,10]
// and [10,20] can both be claimed. A Table is safe for concurrent use.
type Table interface {
	Claim(iv interval.Interval[int64], l labels.Set) error
	ClaimSize(size int64, l labels.Set) (interval.Interval[int64], error)
	Release(start int64) error
	ReleaseByLabel(selector labels.Selector) Entries
	Update(start int64, l labels.Set) error

	Get(v int64) (Entry, error)
	Has(start int64) bool
	IsFree(iv interval.Interval[int64]) bool

	Free() *intervalset.Set[int64]
	Claimed() *intervalset.Set[int64]

	GetAll() Entries
	GetByLabel(selector labels.Selector) Entries
	Count() int
	Iterate() *Iterator

	// Events delivers one Change per successful claim, release or update
	// after the table lock is released. Deliveries are serialized. Handlers
	// may read the table and attach or detach handlers, which takes effect
	// for the next change, but must not modify the table.
	Events() event.Registry[Change]
}

type ValidationFn func(iv interval.Interval[int64]) error

type Option func(*table)

func WithValidation(fn ValidationFn) Option {
	return func(r *table) { r.validateFn = fn }
}

// WithInitEntries claims the entries when the table is created. They are not
// passed to the validation function.
func WithInitEntries(entries Entries) Option {
	return func(r *table) { r.initEntries = entries }
}

func WithLogger(l logr.Logger) Option {
	return func(r *table) { r.log = l }
}

// WithTracer traces the mutating calls. They run under the table lock so the
// tracer does not need to be safe for concurrent use.
func WithTracer(t trace.Tracer) Option {
	return func(r *table) { r.tracer = t }
}

func New(pool interval.Interval[int64], opts ...Option) (Table, error) {
	if interval.IsEmpty(pool) {
		return nil, errors.Wrapf(ErrInvalid, "pool %s is empty", pool)
	}
	r := &table{
		m:       new(sync.RWMutex),
		em:      new(sync.Mutex),
		hm:      new(sync.Mutex),
		table:   map[int64]Entry{},
		pool:    pool,
		claimed: intervalset.New[int64](),
		events:  event.New[Change](),
		log:     logr.Discard(),
		tracer:  trace.NotTracer{},
	}
	for _, opt := range opts {
		opt(r)
	}

	var errm error
	for _, e := range r.initEntries {
		if err := r.add(e.Interval(), e.Labels(), true); err != nil {
			errm = errors.Join(errm, err)
		}
	}
	r.initEntries = nil

	return r, errm
}

type table struct {
	m           *sync.RWMutex
	table       map[int64]Entry
	pool        interval.Interval[int64]
	claimed     *intervalset.Set[int64]
	validateFn  ValidationFn
	initEntries Entries

	// em serializes deliveries, hm guards the handler list
	em     *sync.Mutex
	hm     *sync.Mutex
	events *event.Event[Change]

	log    logr.Logger
	tracer trace.Tracer
}

func (r *table) validate(iv interval.Interval[int64], init bool) error {
	if interval.IsEmpty(iv) {
		return errors.Wrapf(ErrInvalid, "range %s is empty", iv)
	}
	if !interval.Contains(r.pool, iv) {
		return errors.Wrapf(ErrOutOfPool, "range %s, pool %s", iv, r.pool)
	}
	if r.validateFn != nil && !init {
		if err := r.validateFn(iv); err != nil {
			return err
		}
	}
	return nil
}

func (r *table) Claim(iv interval.Interval[int64], l labels.Set) error {
	r.m.Lock()
	_, err := r.tracer.Invoke(func() (any, error) {
		return nil, r.add(iv, l, false)
	}, iv, l)
	r.m.Unlock()

	if err != nil {
		return err
	}
	r.notify(Change{Kind: Claimed, Entry: NewEntry(iv, l)})
	return nil
}

// ClaimSize claims the first free range of the given size.
func (r *table) ClaimSize(size int64, l labels.Set) (interval.Interval[int64], error) {
	r.m.Lock()
	res, err := r.tracer.Invoke(func() (any, error) {
		iv, err := r.findFreeSize(size)
		if err != nil {
			return nil, err
		}
		// getting an error is unlikely as we have a lock
		if err := r.add(iv, l, false); err != nil {
			return nil, err
		}
		return iv, nil
	}, size, l)
	r.m.Unlock()

	if err != nil {
		return interval.Interval[int64]{}, err
	}
	iv := res.(interval.Interval[int64])
	r.notify(Change{Kind: Claimed, Entry: NewEntry(iv, l)})
	return iv, nil
}

func (r *table) Release(start int64) error {
	r.m.Lock()
	res, err := r.tracer.Invoke(func() (any, error) {
		return r.delete(start)
	}, start)
	r.m.Unlock()

	if err != nil {
		return err
	}
	r.notify(Change{Kind: Released, Entry: res.(Entry)})
	return nil
}

// ReleaseByLabel releases every claim whose labels match the selector and
// returns the released entries.
func (r *table) ReleaseByLabel(selector labels.Selector) Entries {
	r.m.Lock()
	res, _ := r.tracer.Invoke(func() (any, error) {
		var released Entries
		iter := r.iterate()
		for iter.Next() {
			if !selector.Matches(iter.Value().Labels()) {
				continue
			}
			e, err := r.delete(iter.Start())
			if err != nil {
				return released, err
			}
			released = append(released, e)
		}
		return released, nil
	}, selector.String())
	r.m.Unlock()

	released, _ := res.(Entries)
	changes := make([]Change, 0, len(released))
	for _, e := range released {
		changes = append(changes, Change{Kind: Released, Entry: e})
	}
	r.notify(changes...)
	return released
}

func (r *table) Update(start int64, l labels.Set) error {
	r.m.Lock()
	res, err := r.tracer.Invoke(func() (any, error) {
		return r.update(start, l)
	}, start, l)
	r.m.Unlock()

	if err != nil {
		return err
	}
	r.notify(Change{Kind: Updated, Entry: res.(Entry)})
	return nil
}

// Get returns the claim containing v. When v is the boundary of two touching
// claims the later one is returned.
func (r *table) Get(v int64) (Entry, error) {
	r.m.RLock()
	defer r.m.RUnlock()

	if !interval.Ordered[int64]().Within(v, r.pool) {
		return nil, errors.Wrapf(ErrOutOfPool, "value %d, pool %s", v, r.pool)
	}
	keys := r.sortedKeys()
	i, found := slices.BinarySearch(keys, v)
	if !found {
		i--
	}
	if i >= 0 {
		e := r.table[keys[i]]
		if interval.Ordered[int64]().Within(v, e.Interval()) {
			return e, nil
		}
	}
	return nil, errors.Wrapf(ErrNotFound, "value %d", v)
}

func (r *table) Has(start int64) bool {
	r.m.RLock()
	defer r.m.RUnlock()

	_, ok := r.table[start]
	return ok
}

func (r *table) IsFree(iv interval.Interval[int64]) bool {
	r.m.RLock()
	defer r.m.RUnlock()

	return r.validate(iv, true) == nil && !r.overlaps(iv)
}

// Free returns the parts of the pool that are not claimed.
func (r *table) Free() *intervalset.Set[int64] {
	r.m.RLock()
	defer r.m.RUnlock()

	return r.free()
}

func (r *table) free() *intervalset.Set[int64] {
	return intervalset.New(r.pool).Difference(r.claimed)
}

func (r *table) Claimed() *intervalset.Set[int64] {
	r.m.RLock()
	defer r.m.RUnlock()

	return r.claimed.Clone()
}

func (r *table) Count() int {
	r.m.RLock()
	defer r.m.RUnlock()

	return len(r.table)
}

func (r *table) Iterate() *Iterator {
	r.m.RLock()
	defer r.m.RUnlock()

	return r.iterate()
}

// iterate walks a copy of the table so the caller may modify the table
// while iterating.
func (r *table) iterate() *Iterator {
	table := make(map[int64]Entry, len(r.table))
	for start, e := range r.table {
		table[start] = e
	}
	return &Iterator{current: -1, keys: r.sortedKeys(), table: table}
}

func (r *table) sortedKeys() []int64 {
	keys := make([]int64, 0, len(r.table))
	for key := range r.table {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

func (r *table) GetAll() Entries {
	r.m.RLock()
	defer r.m.RUnlock()

	entries := make(Entries, 0, len(r.table))
	iter := r.iterate()
	for iter.Next() {
		entries = append(entries, iter.Value())
	}
	return entries
}

func (r *table) GetByLabel(selector labels.Selector) Entries {
	r.m.RLock()
	defer r.m.RUnlock()

	var entries Entries
	iter := r.iterate()
	for iter.Next() {
		if selector.Matches(iter.Value().Labels()) {
			entries = append(entries, iter.Value())
		}
	}
	return entries
}

func (r *table) Events() event.Registry[Change] {
	return &registry{hm: r.hm, events: r.events}
}

func (r *table) findFreeSize(size int64) (interval.Interval[int64], error) {
	if size <= 0 {
		return interval.Interval[int64]{}, errors.Wrapf(ErrInvalid, "size %d", size)
	}
	for iv := range r.free().All() {
		// the width of a free range can exceed math.MaxInt64
		if uint64(iv.End)-uint64(iv.Start) >= uint64(size) {
			return interval.New(iv.Start, iv.Start+size), nil
		}
	}
	return interval.Interval[int64]{}, errors.Wrapf(ErrNoSpace, "size %d, pool %s", size, r.pool)
}

// overlaps reports whether iv shares more than a boundary point with a claim.
func (r *table) overlaps(iv interval.Interval[int64]) bool {
	hit := r.claimed.Clone()
	hit.Intersect(iv)
	return !hit.IsEmpty()
}

func (r *table) add(iv interval.Interval[int64], l labels.Set, init bool) error {
	if err := r.validate(iv, init); err != nil {
		return err
	}
	if r.overlaps(iv) {
		return errors.Wrapf(ErrOverlap, "range %s", iv)
	}
	r.table[iv.Start] = NewEntry(iv, l)
	r.claimed.Add(iv)
	r.log.V(1).Info("claimed", "range", iv.String(), "labels", l.String())
	return nil
}

func (r *table) update(start int64, l labels.Set) (Entry, error) {
	e, ok := r.table[start]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "start %d", start)
	}
	e = NewEntry(e.Interval(), l)
	r.table[start] = e
	r.log.V(1).Info("updated", "range", e.Interval().String(), "labels", l.String())
	return e, nil
}

func (r *table) delete(start int64) (Entry, error) {
	e, ok := r.table[start]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "start %d", start)
	}
	delete(r.table, start)
	r.claimed.Remove(e.Interval())
	r.log.V(1).Info("released", "range", e.Interval().String())
	return e, nil
}

func (r *table) notify(changes ...Change) {
	r.em.Lock()
	defer r.em.Unlock()

	for _, c := range changes {
		// handlers run on a snapshot so they can detach themselves
		r.hm.Lock()
		events := r.events.Clone()
		r.hm.Unlock()
		if err := events.Invoke(c); err != nil {
			r.log.Error(err, "cannot deliver change", "kind", c.Kind.String())
		}
	}
}

// registry guards the table's handler list with the handler lock.
type registry struct {
	hm     *sync.Mutex
	events *event.Event[Change]
}

func (r *registry) Attach(handler func(Change)) event.Token {
	r.hm.Lock()
	defer r.hm.Unlock()
	return r.events.Attach(handler)
}

func (r *registry) Detach(token event.Token) bool {
	r.hm.Lock()
	defer r.hm.Unlock()
	return r.events.Detach(token)
}
