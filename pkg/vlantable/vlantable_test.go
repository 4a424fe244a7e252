package vlantable

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr/testr"
	"github.com/henderiw/intervalset/pkg/rangetable"
	"github.com/tj/assert"
	"k8s.io/apimachinery/pkg/labels"
)

func TestClaim(t *testing.T) {
	cases := map[string]struct {
		newSuccessEntries map[int64]labels.Set
		newFailedEntries  map[int64]labels.Set
		expectedEntries   int
	}{
		"Normal": {
			newSuccessEntries: map[int64]labels.Set{
				10: map[string]string{},
				11: map[string]string{},
			},
			newFailedEntries: map[int64]labels.Set{
				5000: map[string]string{},
				0:    map[string]string{},
				1:    map[string]string{},
				4095: map[string]string{},
			},
			expectedEntries: 5,
		},
		"Edges": {
			newSuccessEntries: map[int64]labels.Set{
				2:    map[string]string{},
				4094: map[string]string{},
			},
			newFailedEntries: map[int64]labels.Set{
				-1: map[string]string{},
			},
			expectedEntries: 5,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r, err := New(testr.New(t))
			assert.NoError(t, err)

			for id, d := range tc.newSuccessEntries {
				err := r.Claim(id, d)
				assert.NoError(t, err)
			}
			for id, d := range tc.newFailedEntries {
				err := r.Claim(id, d)
				assert.Error(t, err)
			}
			for _, e := range initEntries {
				if !r.Has(e.Interval().Start) {
					t.Errorf("%s expecting initEntry: %d\n", name, e.Interval().Start)
				}
			}
			for id := range tc.newSuccessEntries {
				if !r.Has(id) {
					t.Errorf("%s expecting success claim entry: %d\n", name, id)
				}
			}
			if r.Count() != tc.expectedEntries {
				t.Errorf("%s: -want %d, +got: %d\n", name, tc.expectedEntries, r.Count())
			}
		})
	}
}

func TestReserved(t *testing.T) {
	r, err := New(testr.New(t))
	assert.NoError(t, err)

	err = r.ClaimRange(1, 10, nil)
	assert.True(t, errors.Is(err, ErrReserved))
	assert.True(t, errors.Is(r.Release(0), ErrReserved))
	assert.True(t, errors.Is(r.Update(4095, nil), ErrReserved))

	l, err := r.Get(0)
	assert.NoError(t, err)
	assert.Equal(t, "untagged", l["type"])
}

func TestClaimRange(t *testing.T) {
	r, err := New(testr.New(t))
	assert.NoError(t, err)

	assert.NoError(t, r.ClaimRange(100, 199, labels.Set{"tenant": "a"}))
	assert.NoError(t, r.ClaimRange(200, 299, labels.Set{"tenant": "b"}))
	assert.True(t, errors.Is(r.ClaimRange(150, 250, nil), rangetable.ErrOverlap))
	assert.True(t, errors.Is(r.Claim(199, nil), rangetable.ErrOverlap))
	assert.True(t, errors.Is(r.ClaimRange(20, 10, nil), rangetable.ErrInvalid))

	l, err := r.Get(199)
	assert.NoError(t, err)
	assert.Equal(t, "a", l["tenant"])
	l, err = r.Get(200)
	assert.NoError(t, err)
	assert.Equal(t, "b", l["tenant"])

	_, err = r.Get(300)
	assert.True(t, errors.Is(err, rangetable.ErrNotFound))
	assert.False(t, r.IsFree(150))
	assert.True(t, r.IsFree(300))
	assert.True(t, r.Has(150))
	assert.True(t, r.Has(299))
	assert.False(t, r.Has(300))

	assert.NoError(t, r.Release(100))
	assert.True(t, r.IsFree(150))
	_, err = r.Get(150)
	assert.True(t, errors.Is(err, rangetable.ErrNotFound))
}

func TestClaimDynamic(t *testing.T) {
	r, err := New(testr.New(t))
	assert.NoError(t, err)

	id, err := r.FindFree()
	assert.NoError(t, err)
	assert.Equal(t, int64(2), id)

	assert.NoError(t, r.Claim(3, nil))
	for _, want := range []int64{2, 4, 5} {
		got, err := r.ClaimDynamic(labels.Set{"dynamic": "true"})
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	}
	id, err = r.FindFree()
	assert.NoError(t, err)
	assert.Equal(t, int64(6), id)
}

func TestGetByLabel(t *testing.T) {
	r, err := New(testr.New(t))
	assert.NoError(t, err)

	assert.NoError(t, r.Claim(10, labels.Set{"tenant": "a"}))
	assert.NoError(t, r.Claim(20, labels.Set{"tenant": "b"}))
	assert.NoError(t, r.Update(20, labels.Set{"tenant": "a"}))

	sel, err := labels.Parse("tenant=a")
	assert.NoError(t, err)
	got := r.GetByLabel(sel)
	assert.Equal(t, 2, len(got))
	assert.Contains(t, got, int64(10))
	assert.Contains(t, got, int64(20))

	sel, err = labels.Parse("status=reserved")
	assert.NoError(t, err)
	assert.Equal(t, 3, len(r.GetByLabel(sel)))
	assert.Equal(t, 5, len(r.GetAll()))
}
