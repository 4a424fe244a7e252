package interval

import (
	"strconv"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/tj/assert"
)

func TestParseInt(t *testing.T) {
	cases := map[string]struct {
		in          string
		want        Interval[int64]
		expectedErr bool
	}{
		"Dots":           {in: "1..3", want: New[int64](1, 3)},
		"Hyphen":         {in: "65000-65100", want: New[int64](65000, 65100)},
		"Spaces":         {in: " 4 .. 9 ", want: New[int64](4, 9)},
		"NegativeDots":   {in: "-5..-1", want: New[int64](-5, -1)},
		"NegativeHyphen": {in: "-5--1", want: New[int64](-5, -1)},
		"Inverted":       {in: "9..3", want: New[int64](9, 3)},
		"NoSeparator":    {in: "42", expectedErr: true},
		"Empty":          {in: "", expectedErr: true},
		"BadStart":       {in: "a..3", expectedErr: true},
		"BadEnd":         {in: "1..b", expectedErr: true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := ParseInt(tc.in)
			if tc.expectedErr {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, ErrSyntax))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseFloat(t *testing.T) {
	got, err := ParseFloat("1.5..2.75")
	assert.NoError(t, err)
	assert.Equal(t, New(1.5, 2.75), got)
}

func TestParseAll(t *testing.T) {
	got, err := ParseAll([]string{"1..2", "x", "4..5", "y..1"}, strconv.Atoi)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrSyntax))
	assert.Equal(t, []Interval[int]{New(1, 2), New(4, 5)}, got)
}
