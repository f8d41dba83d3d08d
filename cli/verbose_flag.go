package cli

import (
	"flag"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"
)

var vFlag = &verboseFlag{
	Name:        "verbose",
	Aliases:     []string{"v"},
	Usage:       "output debug logging, use twice for AWS call tracing",
	Required:    false,
	Hidden:      false,
	Value:       new(boolSlice),
	DefaultText: "standard logging",
}

// A repeatable boolean flag.  Only a Value type of bool causes the help output to indicate
// that no value is required, regardless of IsBoolFlag() in the Value type, so the help text
// around this flag is slightly off and we live with it.
type verboseFlag struct {
	Name        string
	Aliases     []string
	Usage       string
	Required    bool
	Hidden      bool
	Value       *boolSlice
	DefaultText string
}

func (f *verboseFlag) IsRequired() bool {
	return f.Required
}

func (f *verboseFlag) String() string {
	return cli.FlagStringer(f)
}

func (f *verboseFlag) Apply(set *flag.FlagSet) error {
	for _, name := range f.Names() {
		set.Var(f.Value, name, f.Usage)
	}
	return nil
}

func (f *verboseFlag) Names() []string {
	names := []string{f.Name}
	return append(names, f.Aliases...)
}

func (f *verboseFlag) IsSet() bool {
	return f.Value != nil && len(f.Value.val) > 0
}

func (f *verboseFlag) GetUsage() string {
	return f.Usage
}

func (f *verboseFlag) TakesValue() bool {
	return false
}

func (f *verboseFlag) GetValue() string {
	if f.Value != nil {
		return f.Value.String()
	}
	return ""
}

type boolSlice struct {
	val []bool
}

func (a *boolSlice) String() string {
	if a.val == nil {
		a.val = make([]bool, 0)
	}
	return fmt.Sprintf("%v", a.val)
}

func (a *boolSlice) Set(s string) error {
	if a.val == nil {
		a.val = make([]bool, 0)
	}

	b, _ := strconv.ParseBool(s)
	if b {
		a.val = append(a.val, b)
	}

	return nil
}

func (a *boolSlice) Get() interface{} {
	return a.val
}

func (a *boolSlice) IsBoolFlag() bool {
	return true
}
