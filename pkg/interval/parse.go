package interval

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrSyntax is returned when a string is not an interval.
var ErrSyntax = errors.New("invalid interval syntax")

// Parse parses "from..to". The hyphenated "from-to" form is accepted as well;
// there the separator is the first hyphen after the first character so
// negative starts still parse.
func Parse[T any](s string, parseFn func(string) (T, error)) (Interval[T], error) {
	var r Interval[T]
	from, to, ok := split(strings.TrimSpace(s))
	if !ok {
		return r, errors.Wrapf(ErrSyntax, "no separator in interval %q", s)
	}
	start, err := parseFn(strings.TrimSpace(from))
	if err != nil {
		return r, errors.Wrapf(ErrSyntax, "invalid start %q in interval %q: %v", from, s, err)
	}
	end, err := parseFn(strings.TrimSpace(to))
	if err != nil {
		return r, errors.Wrapf(ErrSyntax, "invalid end %q in interval %q: %v", to, s, err)
	}
	return Interval[T]{Start: start, End: end}, nil
}

func ParseInt(s string) (Interval[int64], error) {
	return Parse(s, func(v string) (int64, error) {
		return strconv.ParseInt(v, 10, 64)
	})
}

func ParseFloat(s string) (Interval[float64], error) {
	return Parse(s, func(v string) (float64, error) {
		return strconv.ParseFloat(v, 64)
	})
}

// ParseAll parses every string, joining the errors of the ones that fail.
func ParseAll[T any](ss []string, parseFn func(string) (T, error)) ([]Interval[T], error) {
	out := make([]Interval[T], 0, len(ss))
	var errm error
	for _, s := range ss {
		r, err := Parse(s, parseFn)
		if err != nil {
			errm = errors.Join(errm, err)
			continue
		}
		out = append(out, r)
	}
	return out, errm
}

func split(s string) (string, string, bool) {
	if i := strings.Index(s, ".."); i != -1 {
		return s[:i], s[i+2:], true
	}
	if len(s) < 2 {
		return "", "", false
	}
	h := strings.IndexByte(s[1:], '-')
	if h == -1 {
		return "", "", false
	}
	h++
	return s[:h], s[h+1:], true
}
