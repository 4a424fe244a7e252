package format

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/henderiw/intervalset/pkg/binconv"
)

const (
	maxFullSize   = 32
	elementsToCut = maxFullSize / 2
)

// bounded is implemented by interval types.
type bounded interface {
	Bounds() (any, any)
}

// Formatted renders v for diagnostics. Strings are quoted, bytes are hex,
// slices, arrays and maps are rendered element by element and long
// collections are cut in the middle.
func Formatted(v any) string {
	switch x := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return `"` + x + `"`
	case byte:
		return binconv.Hex(x)
	case bounded:
		start, end := x.Bounds()
		return Formatted(start) + ".." + Formatted(end)
	case error:
		return x.Error()
	case fmt.Stringer:
		return x.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return "<nil>"
		}
	case reflect.Slice, reflect.Array:
		elems := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			elems = append(elems, Formatted(rv.Index(i).Interface()))
		}
		return "[" + strings.Join(cut(elems), ", ") + "]"
	case reflect.Map:
		elems := make([]string, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			elems = append(elems, Formatted(iter.Key().Interface())+"="+Formatted(iter.Value().Interface()))
		}
		slices.Sort(elems)
		return "{" + strings.Join(elems, ", ") + "}"
	}
	return fmt.Sprintf("%v", v)
}

func cut(elems []string) []string {
	if len(elems) <= maxFullSize {
		return elems
	}
	out := make([]string, 0, maxFullSize+1)
	out = append(out, elems[:elementsToCut]...)
	out = append(out, fmt.Sprintf("...(%d more)...", len(elems)-maxFullSize))
	return append(out, elems[len(elems)-elementsToCut:]...)
}
