package ipset

import (
	"net/netip"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/henderiw/intervalset/pkg/interval"
	"github.com/henderiw/intervalset/pkg/intervalset"
	"go4.org/netipx"
)

var ErrInvalidRange = errors.New("invalid ip range")

// bound is a position between addresses. A range from-to is stored as the
// half-open pair [from, next(to)), so ranges that are adjacent as address
// sets touch as intervals and merge. past marks the position after the last
// address of a family, which has no next address.
type bound struct {
	addr netip.Addr
	past bool
}

func compareBound(a, b bound) int {
	if c := a.addr.Compare(b.addr); c != 0 {
		return c
	}
	switch {
	case a.past == b.past:
		return 0
	case a.past:
		return 1
	default:
		return -1
	}
}

func (b bound) String() string {
	if b.past {
		return b.addr.String() + "+"
	}
	return b.addr.String()
}

func endOf(to netip.Addr) bound {
	if next := to.Next(); next.IsValid() {
		return bound{addr: next}
	}
	return bound{addr: to, past: true}
}

// lastBefore returns the last address covered by an interval ending at b.
func (b bound) lastBefore() netip.Addr {
	if b.past {
		return b.addr
	}
	return b.addr.Prev()
}

func toInterval(r netipx.IPRange) interval.Interval[bound] {
	return interval.New(bound{addr: r.From()}, endOf(r.To()))
}

func toRange(iv interval.Interval[bound]) netipx.IPRange {
	return netipx.IPRangeFrom(iv.Start.addr, iv.End.lastBefore())
}

// IPSet is a set of IP addresses kept as a minimal list of ranges. IPv4 and
// IPv6 ranges never merge with each other.
type IPSet struct {
	set *intervalset.Set[bound]
}

func New() *IPSet {
	return &IPSet{set: intervalset.NewFunc[bound](compareBound)}
}

func validateRange(r netipx.IPRange) error {
	if !r.IsValid() {
		return errors.Wrapf(ErrInvalidRange, "%s", r.String())
	}
	return nil
}

func (r *IPSet) AddRange(ipRange netipx.IPRange) error {
	if err := validateRange(ipRange); err != nil {
		return err
	}
	r.set.Add(toInterval(ipRange))
	return nil
}

func (r *IPSet) AddPrefix(p netip.Prefix) error {
	return r.AddRange(netipx.RangeOfPrefix(p))
}

func (r *IPSet) AddAddr(a netip.Addr) error {
	return r.AddRange(netipx.IPRangeFrom(a, a))
}

func (r *IPSet) RemoveRange(ipRange netipx.IPRange) error {
	if err := validateRange(ipRange); err != nil {
		return err
	}
	r.set.Remove(toInterval(ipRange))
	return nil
}

func (r *IPSet) RemovePrefix(p netip.Prefix) error {
	return r.RemoveRange(netipx.RangeOfPrefix(p))
}

func (r *IPSet) RemoveAddr(a netip.Addr) error {
	return r.RemoveRange(netipx.IPRangeFrom(a, a))
}

// Intersect keeps the addresses that are in at least one of the given ranges.
func (r *IPSet) Intersect(ipRanges ...netipx.IPRange) error {
	windows := make([]interval.Interval[bound], 0, len(ipRanges))
	var errm error
	for _, ipRange := range ipRanges {
		if err := validateRange(ipRange); err != nil {
			errm = errors.Join(errm, err)
			continue
		}
		windows = append(windows, toInterval(ipRange))
	}
	if errm != nil {
		return errm
	}
	r.set.IntersectAll(windows)
	return nil
}

func (r *IPSet) Contains(a netip.Addr) bool {
	if !a.IsValid() {
		return false
	}
	return r.ContainsRange(netipx.IPRangeFrom(a, a))
}

// ContainsRange reports whether every address of ipRange is in the set.
func (r *IPSet) ContainsRange(ipRange netipx.IPRange) bool {
	if !ipRange.IsValid() {
		return false
	}
	return r.set.Covers(toInterval(ipRange))
}

func (r *IPSet) Len() int {
	return r.set.Len()
}

func (r *IPSet) Ranges() []netipx.IPRange {
	ranges := make([]netipx.IPRange, 0, r.set.Len())
	for iv := range r.set.All() {
		ranges = append(ranges, toRange(iv))
	}
	return ranges
}

// Prefixes returns the minimal list of prefixes covering the set.
func (r *IPSet) Prefixes() []netip.Prefix {
	var prefixes []netip.Prefix
	for iv := range r.set.All() {
		prefixes = toRange(iv).AppendPrefixes(prefixes)
	}
	return prefixes
}

func (r *IPSet) Clone() *IPSet {
	return &IPSet{set: r.set.Clone()}
}

func (r *IPSet) String() string {
	ranges := r.Ranges()
	parts := make([]string, 0, len(ranges))
	for _, ipRange := range ranges {
		parts = append(parts, ipRange.String())
	}
	return "IPSet[" + strings.Join(parts, ", ") + "]"
}

// ParseRange parses "from-to", a CIDR prefix or a single address.
func ParseRange(s string) (netipx.IPRange, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.Contains(s, "/"):
		p, err := netip.ParsePrefix(s)
		if err != nil {
			return netipx.IPRange{}, errors.Wrapf(ErrInvalidRange, "%v", err)
		}
		return netipx.RangeOfPrefix(p.Masked()), nil
	case strings.Contains(s, "-"):
		ipRange, err := netipx.ParseIPRange(s)
		if err != nil {
			return netipx.IPRange{}, errors.Wrapf(ErrInvalidRange, "%v", err)
		}
		return ipRange, nil
	default:
		a, err := netip.ParseAddr(s)
		if err != nil {
			return netipx.IPRange{}, errors.Wrapf(ErrInvalidRange, "%v", err)
		}
		return netipx.IPRangeFrom(a, a), nil
	}
}
