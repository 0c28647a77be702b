package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/subcommands"

	"github.com/wippyai/typedesc/descriptor"
	"github.com/wippyai/typedesc/schema"
	"github.com/wippyai/typedesc/witdecl"
)

func loadSet(path string) (*schema.Set, error) {
	if path == "" {
		return nil, fmt.Errorf("-schema is required")
	}
	f, err := schema.Load(path)
	if err != nil {
		return nil, err
	}
	return f.Build()
}

// parseAssignments reads "k=v,k2=v2" into integer field values.
func parseAssignments(s string) (map[string]int64, error) {
	values := make(map[string]int64)
	if strings.TrimSpace(s) == "" {
		return values, nil
	}
	for _, kv := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(kv, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid assignment %q, want field=value", kv)
		}
		n, err := strconv.ParseInt(strings.TrimSpace(v), 0, 64)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", k, err)
		}
		values[k] = n
	}
	return values, nil
}

type describeCmd struct {
	schemaPath string
	typeName   string
}

func (*describeCmd) Name() string     { return "describe" }
func (*describeCmd) Synopsis() string { return "Print the layout of declared types." }
func (*describeCmd) Usage() string {
	return "typedesc describe -schema <file.yaml> [-type name]\n"
}

func (cmd *describeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.schemaPath, "schema", "", "Path to the declaration file.")
	f.StringVar(&cmd.typeName, "type", "", "Type to describe (default: all).")
}

func (cmd *describeCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := cmd.execute(); err != nil {
		printError(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (cmd *describeCmd) execute() error {
	set, err := loadSet(cmd.schemaPath)
	if err != nil {
		return err
	}
	names := set.Names()
	if cmd.typeName != "" {
		names = []string{cmd.typeName}
	}
	for _, name := range names {
		l, err := set.Layout(name)
		if err != nil {
			return err
		}
		printLayout(os.Stdout, name, l)
	}
	return nil
}

type checkCmd struct {
	schemaPath string
}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "Validate a declaration file." }
func (*checkCmd) Usage() string    { return "typedesc check -schema <file.yaml>\n" }

func (cmd *checkCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.schemaPath, "schema", "", "Path to the declaration file.")
}

func (cmd *checkCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	set, err := loadSet(cmd.schemaPath)
	if err != nil {
		printError(err)
		return subcommands.ExitFailure
	}
	fmt.Println(resultStyle.Render(fmt.Sprintf("ok: %d types", len(set.Names()))))
	return subcommands.ExitSuccess
}

type sizeCmd struct {
	schemaPath string
	typeName   string
	assign     string
}

func (*sizeCmd) Name() string     { return "size" }
func (*sizeCmd) Synopsis() string { return "Compute the size of a type for given parent field values." }
func (*sizeCmd) Usage() string {
	return "typedesc size -schema <file.yaml> -type name [-set field=value,...]\n"
}

func (cmd *sizeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.schemaPath, "schema", "", "Path to the declaration file.")
	f.StringVar(&cmd.typeName, "type", "", "Type to size.")
	f.StringVar(&cmd.assign, "set", "", "Parent field values (field=value,...).")
}

func (cmd *sizeCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	size, err := cmd.execute()
	if err != nil {
		printError(err)
		return subcommands.ExitFailure
	}
	fmt.Println(resultStyle.Render(fmt.Sprintf("%s: %d bytes", cmd.typeName, size)))
	return subcommands.ExitSuccess
}

func (cmd *sizeCmd) execute() (uintptr, error) {
	if cmd.typeName == "" {
		return 0, fmt.Errorf("-type is required")
	}
	values, err := parseAssignments(cmd.assign)
	if err != nil {
		return 0, err
	}
	set, err := loadSet(cmd.schemaPath)
	if err != nil {
		return 0, err
	}
	return set.DynamicSize(cmd.typeName, values)
}

type witCmd struct {
	jsonPath string
}

func (*witCmd) Name() string     { return "wit" }
func (*witCmd) Synopsis() string { return "Print Canonical ABI layouts of WIT types." }
func (*witCmd) Usage() string {
	return "typedesc wit -json <resolve.json>\n" +
		"typedesc wit <type>...  (primitive WIT type names such as u32 or string)\n"
}

func (cmd *witCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.jsonPath, "json", "", "WIT package in JSON form (wasm-tools component wit --json).")
}

func (cmd *witCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := cmd.execute(f.Args()); err != nil {
		printError(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (cmd *witCmd) execute(args []string) error {
	var named []witdecl.Named
	if cmd.jsonPath != "" {
		res, err := witdecl.Load(cmd.jsonPath)
		if err != nil {
			return err
		}
		if named, err = witdecl.ConvertResolve(res); err != nil {
			return err
		}
	}
	for _, arg := range args {
		d, err := witdecl.ConvertName(arg)
		if err != nil {
			return err
		}
		named = append(named, witdecl.Named{Name: arg, Desc: d})
	}
	if len(named) == 0 {
		return fmt.Errorf("nothing to describe: pass -json or type names")
	}

	c := descriptor.NewCompiler()
	for _, n := range named {
		l, err := c.Compile(n.Desc)
		if err != nil {
			return fmt.Errorf("%s: %w", n.Name, err)
		}
		printLayout(os.Stdout, n.Name, l)
	}
	return nil
}
