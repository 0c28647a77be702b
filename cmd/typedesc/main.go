package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/subcommands"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"go.uber.org/zap"

	"github.com/wippyai/typedesc/descriptor"
	"github.com/wippyai/typedesc/schema"
	"github.com/wippyai/typedesc/witdecl"
)

// colorMode is the -color flag: auto, always or never.
type colorMode string

const (
	colorAuto   colorMode = "auto"
	colorAlways colorMode = "always"
	colorNever  colorMode = "never"
)

func (c *colorMode) String() string { return string(*c) }

func (c *colorMode) Set(v string) error {
	switch m := colorMode(v); m {
	case colorAuto, colorAlways, colorNever:
		*c = m
		return nil
	}
	return fmt.Errorf("invalid color mode %q, want auto, always or never", v)
}

// apply picks the lipgloss profile. In auto mode colour is kept only when
// out is a terminal.
func (c colorMode) apply(out *os.File) {
	switch c {
	case colorAlways:
		lipgloss.SetColorProfile(termenv.TrueColor)
	case colorNever:
		lipgloss.SetColorProfile(termenv.Ascii)
	default:
		if !isatty.IsTerminal(out.Fd()) && !isatty.IsCygwinTerminal(out.Fd()) {
			lipgloss.SetColorProfile(termenv.Ascii)
		}
	}
}

var (
	colors  = colorAuto
	verbose bool
)

func init() {
	flag.Var(&colors, "color", "use color in output, can be never, auto, always")
	flag.BoolVar(&verbose, "v", false, "enable debug logging")

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(&describeCmd{}, "schema")
	subcommands.Register(&checkCmd{}, "schema")
	subcommands.Register(&sizeCmd{}, "schema")
	subcommands.Register(&browseCmd{}, "schema")
	subcommands.Register(&witCmd{}, "wit")
}

func newLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: logger: %v\n", err)
		return zap.NewNop()
	}
	return l
}

func main() {
	flag.Parse()
	colors.apply(os.Stdout)

	log := newLogger(verbose)
	descriptor.SetLogger(log.Named("descriptor"))
	schema.SetLogger(log.Named("schema"))
	witdecl.SetLogger(log.Named("witdecl"))

	status := subcommands.Execute(context.Background())
	_ = log.Sync()
	os.Exit(int(status))
}
