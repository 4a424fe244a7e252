package ipset

import (
	"math/rand/v2"
	"net/netip"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/tj/assert"
	"go4.org/netipx"
)

func mustRange(t *testing.T, s string) netipx.IPRange {
	t.Helper()
	r, err := ParseRange(s)
	assert.NoError(t, err)
	return r
}

func rangeStrings(s *IPSet) []string {
	out := []string{}
	for _, r := range s.Ranges() {
		out = append(out, r.String())
	}
	return out
}

func TestAddRemove(t *testing.T) {
	cases := map[string]struct {
		add    []string
		remove []string
		want   []string
	}{
		"Adjacent": {
			add:  []string{"10.0.0.0-10.0.0.9", "10.0.0.10-10.0.0.20"},
			want: []string{"10.0.0.0-10.0.0.20"},
		},
		"Gap": {
			add:  []string{"10.0.0.0-10.0.0.9", "10.0.0.11-10.0.0.20"},
			want: []string{"10.0.0.0-10.0.0.9", "10.0.0.11-10.0.0.20"},
		},
		"FillGap": {
			add:  []string{"10.0.0.0-10.0.0.9", "10.0.0.11-10.0.0.20", "10.0.0.10"},
			want: []string{"10.0.0.0-10.0.0.20"},
		},
		"SplitSingle": {
			add:    []string{"10.0.0.0-10.0.0.9", "10.0.0.10-10.0.0.20"},
			remove: []string{"10.0.0.5"},
			want:   []string{"10.0.0.0-10.0.0.4", "10.0.0.6-10.0.0.20"},
		},
		"RemoveEdges": {
			add:    []string{"10.0.0.0/24"},
			remove: []string{"10.0.0.0", "10.0.0.255"},
			want:   []string{"10.0.0.1-10.0.0.254"},
		},
		"RemovePrefix": {
			add:    []string{"10.0.0.0-10.0.3.255"},
			remove: []string{"10.0.1.0/24"},
			want:   []string{"10.0.0.0-10.0.0.255", "10.0.2.0-10.0.3.255"},
		},
		"SingleAddresses": {
			add:  []string{"192.168.0.1", "192.168.0.2", "192.168.0.3"},
			want: []string{"192.168.0.1-192.168.0.3"},
		},
		"LastIPv4Address": {
			add:    []string{"255.255.255.0/24", "255.255.254.255"},
			remove: []string{"255.255.255.128-255.255.255.254"},
			want:   []string{"255.255.254.255-255.255.255.127", "255.255.255.255-255.255.255.255"},
		},
		"FamiliesDoNotMerge": {
			add:  []string{"255.255.255.255", "::/128", "::1"},
			want: []string{"255.255.255.255-255.255.255.255", "::-::1"},
		},
		"IPv6": {
			add:    []string{"2001:db8::/64"},
			remove: []string{"2001:db8::1-2001:db8::ffff"},
			want:   []string{"2001:db8::-2001:db8::", "2001:db8::1:0-2001:db8::ffff:ffff:ffff:ffff"},
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			s := New()
			for _, a := range tc.add {
				assert.NoError(t, s.AddRange(mustRange(t, a)))
			}
			for _, a := range tc.remove {
				assert.NoError(t, s.RemoveRange(mustRange(t, a)))
			}
			if diff := cmp.Diff(tc.want, rangeStrings(s)); diff != "" {
				t.Errorf("%s: -want, +got:\n%s", name, diff)
			}
		})
	}
}

func TestContains(t *testing.T) {
	s := New()
	assert.NoError(t, s.AddPrefix(netip.MustParsePrefix("10.0.0.0/30")))
	assert.NoError(t, s.AddAddr(netip.MustParseAddr("10.0.0.8")))

	assert.True(t, s.Contains(netip.MustParseAddr("10.0.0.0")))
	assert.True(t, s.Contains(netip.MustParseAddr("10.0.0.3")))
	assert.False(t, s.Contains(netip.MustParseAddr("10.0.0.4")))
	assert.True(t, s.Contains(netip.MustParseAddr("10.0.0.8")))
	assert.False(t, s.Contains(netip.MustParseAddr("10.0.0.9")))
	assert.False(t, s.Contains(netip.Addr{}))

	assert.True(t, s.ContainsRange(mustRange(t, "10.0.0.1-10.0.0.3")))
	assert.False(t, s.ContainsRange(mustRange(t, "10.0.0.1-10.0.0.8")))
	assert.False(t, s.ContainsRange(netipx.IPRange{}))
}

func TestIntersect(t *testing.T) {
	s := New()
	assert.NoError(t, s.AddRange(mustRange(t, "10.0.0.0-10.0.0.100")))
	assert.NoError(t, s.Intersect(mustRange(t, "10.0.0.10-10.0.0.19"), mustRange(t, "10.0.0.20/30"), mustRange(t, "10.0.0.90-10.0.1.0")))
	assert.Equal(t, []string{"10.0.0.10-10.0.0.23", "10.0.0.90-10.0.0.100"}, rangeStrings(s))

	err := s.Intersect(mustRange(t, "10.0.0.0/24"), netipx.IPRange{})
	assert.True(t, errors.Is(err, ErrInvalidRange))
	assert.Equal(t, 2, s.Len())
}

func TestPrefixes(t *testing.T) {
	s := New()
	assert.NoError(t, s.AddRange(mustRange(t, "10.0.0.0-10.0.0.9")))
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/29"),
		netip.MustParsePrefix("10.0.0.8/31"),
	}, s.Prefixes())
	assert.Equal(t, "IPSet[10.0.0.0-10.0.0.9]", s.String())
}

func TestParseRange(t *testing.T) {
	cases := map[string]struct {
		in          string
		want        string
		expectedErr bool
	}{
		"Range":        {in: "10.0.0.1-10.0.0.5", want: "10.0.0.1-10.0.0.5"},
		"Prefix":       {in: "10.0.0.0/30", want: "10.0.0.0-10.0.0.3"},
		"PrefixMasked": {in: "10.0.0.7/30", want: "10.0.0.4-10.0.0.7"},
		"Addr":         {in: " 10.0.0.1 ", want: "10.0.0.1-10.0.0.1"},
		"IPv6Prefix":   {in: "2001:db8::/127", want: "2001:db8::-2001:db8::1"},
		"Inverted":     {in: "10.0.0.5-10.0.0.1", expectedErr: true},
		"MixedFamily":  {in: "10.0.0.1-::1", expectedErr: true},
		"Garbage":      {in: "ten", expectedErr: true},
		"BadPrefix":    {in: "10.0.0.0/33", expectedErr: true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r, err := ParseRange(tc.in)
			if tc.expectedErr {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidRange))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, r.String())
		})
	}
}

func TestInvalidInput(t *testing.T) {
	s := New()
	assert.Error(t, s.AddRange(netipx.IPRange{}))
	assert.Error(t, s.RemoveAddr(netip.Addr{}))
	assert.Equal(t, 0, s.Len())
}

func TestAgainstIPSetBuilder(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	base := netip.MustParseAddr("10.0.0.0")
	randomRange := func() netipx.IPRange {
		from := base
		for i := rng.IntN(256); i > 0; i-- {
			from = from.Next()
		}
		to := from
		for i := rng.IntN(16); i > 0; i-- {
			to = to.Next()
		}
		return netipx.IPRangeFrom(from, to)
	}

	s := New()
	var b netipx.IPSetBuilder
	for i := 0; i < 500; i++ {
		ipRange := randomRange()
		switch rng.IntN(8) {
		case 0:
			var w netipx.IPSetBuilder
			w.AddRange(ipRange)
			window, err := w.IPSet()
			assert.NoError(t, err)
			b.Intersect(window)
			assert.NoError(t, s.Intersect(ipRange))
		case 1, 2, 3:
			b.RemoveRange(ipRange)
			assert.NoError(t, s.RemoveRange(ipRange))
		default:
			b.AddRange(ipRange)
			assert.NoError(t, s.AddRange(ipRange))
		}
		want, err := b.IPSet()
		assert.NoError(t, err)
		if diff := cmp.Diff(want.Ranges(), s.Ranges(), cmp.Comparer(func(a, b netipx.IPRange) bool { return a == b })); diff != "" {
			t.Fatalf("step %d: -want, +got:\n%s", i, diff)
		}
	}
}
