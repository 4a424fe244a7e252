package cli

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	outputText = "text"
	outputYAML = "yaml"
)

type options struct {
	base      []string
	file      string
	output    string
	ip        bool
	verbosity int
	log       logr.Logger
}

// Execute runs the command line against os.Args and returns the process exit
// code.
func Execute() int {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func NewRootCommand() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:           "intervalset",
		Short:         "Interval set arithmetic",
		Long:          "intervalset combines closed intervals (1..5) or IP ranges (10.0.0.0/24, 10.0.0.1-10.0.0.9) and prints the normalized result.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch o.output {
			case outputText, outputYAML:
			default:
				return errors.Newf("unknown output format %q, want %s or %s", o.output, outputText, outputYAML)
			}
			o.log = newLogger(o.verbosity)
			return nil
		},
	}
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	o.addFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		newOpCommand(o, opUnion),
		newOpCommand(o, opDifference),
		newOpCommand(o, opIntersect),
	)
	return cmd
}

func (o *options) addFlags(f *pflag.FlagSet) {
	f.StringArrayVar(&o.base, "base", nil, "base interval, repeatable")
	f.StringVar(&o.file, "file", "", "YAML file with a list of base intervals")
	f.StringVarP(&o.output, "output", "o", outputText, "output format: text or yaml")
	f.BoolVar(&o.ip, "ip", false, "treat intervals as IP ranges")
	f.IntVarP(&o.verbosity, "verbosity", "v", 0, "log verbosity")
}

func newLogger(verbosity int) logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintln(os.Stderr, prefix, args)
			return
		}
		fmt.Fprintln(os.Stderr, args)
	}, funcr.Options{Verbosity: verbosity})
}
