package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/henderiw/intervalset/pkg/interval"
	"github.com/henderiw/intervalset/pkg/intervalset"
	"github.com/henderiw/intervalset/pkg/ipset"
	"github.com/spf13/cobra"
	"go4.org/netipx"
	"gopkg.in/yaml.v3"
)

type op int

const (
	opUnion op = iota
	opDifference
	opIntersect
)

func (r op) String() string {
	switch r {
	case opUnion:
		return "union"
	case opDifference:
		return "difference"
	case opIntersect:
		return "intersect"
	}
	return "unknown"
}

func (r op) short() string {
	switch r {
	case opUnion:
		return "Add the intervals to the base set"
	case opDifference:
		return "Remove the intervals from the base set"
	default:
		return "Keep the parts of the base set covered by the intervals"
	}
}

// intervalFile is the layout of the --file input.
type intervalFile struct {
	Intervals []string `yaml:"intervals"`
}

func newOpCommand(o *options, r op) *cobra.Command {
	return &cobra.Command{
		Use:   r.String() + " [INTERVAL]...",
		Short: r.short(),
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := o.baseIntervals()
			if err != nil {
				return err
			}
			o.log.V(1).Info("combine", "op", r.String(), "base", len(base), "operands", len(args), "ip", o.ip)
			if o.ip {
				return o.runIP(cmd.OutOrStdout(), r, base, args)
			}
			return o.runNumeric(cmd.OutOrStdout(), r, base, args)
		},
	}
}

// baseIntervals returns the --file intervals followed by the --base ones.
func (o *options) baseIntervals() ([]string, error) {
	if o.file == "" {
		return o.base, nil
	}
	b, err := os.ReadFile(o.file)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read %s", o.file)
	}
	in := intervalFile{}
	if err := yaml.Unmarshal(b, &in); err != nil {
		return nil, errors.Wrapf(err, "cannot parse %s", o.file)
	}
	o.log.V(1).Info("loaded base file", "file", o.file, "intervals", len(in.Intervals))
	return append(in.Intervals, o.base...), nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

func (o *options) runNumeric(w io.Writer, r op, base, args []string) error {
	bs, errb := interval.ParseAll(base, parseFloat)
	xs, errx := interval.ParseAll(args, parseFloat)
	if err := errors.Join(errb, errx); err != nil {
		return err
	}
	set := intervalset.New(bs...)
	o.log.V(2).Info("base set", "set", set.String())
	switch r {
	case opUnion:
		set.AddAll(xs)
	case opDifference:
		set.RemoveAll(xs)
	case opIntersect:
		set.IntersectAll(xs)
	}
	out := make([]string, 0, set.Len())
	for iv := range set.All() {
		out = append(out, iv.String())
	}
	return o.print(w, set.String(), out)
}

func parseRanges(ss []string) ([]netipx.IPRange, error) {
	out := make([]netipx.IPRange, 0, len(ss))
	var errm error
	for _, s := range ss {
		ipRange, err := ipset.ParseRange(s)
		if err != nil {
			errm = errors.Join(errm, err)
			continue
		}
		out = append(out, ipRange)
	}
	return out, errm
}

func (o *options) runIP(w io.Writer, r op, base, args []string) error {
	bs, errb := parseRanges(base)
	xs, errx := parseRanges(args)
	if err := errors.Join(errb, errx); err != nil {
		return err
	}
	set := ipset.New()
	for _, ipRange := range bs {
		if err := set.AddRange(ipRange); err != nil {
			return err
		}
	}
	o.log.V(2).Info("base set", "set", set.String())
	var err error
	switch r {
	case opUnion:
		for _, ipRange := range xs {
			err = errors.Join(err, set.AddRange(ipRange))
		}
	case opDifference:
		for _, ipRange := range xs {
			err = errors.Join(err, set.RemoveRange(ipRange))
		}
	case opIntersect:
		err = set.Intersect(xs...)
	}
	if err != nil {
		return err
	}
	ranges := set.Ranges()
	out := make([]string, 0, len(ranges))
	for _, ipRange := range ranges {
		out = append(out, ipRange.String())
	}
	return o.print(w, set.String(), out)
}

func (o *options) print(w io.Writer, text string, intervals []string) error {
	if o.output == outputText {
		_, err := fmt.Fprintln(w, text)
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(intervalFile{Intervals: intervals}); err != nil {
		return err
	}
	return enc.Close()
}
