package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type OptionType int

const (
	TypeString OptionType = iota
	TypeInt
	TypeFloat
	TypeBool
	// repeatable, one value per occurrence
	TypeStrings
	// boolean that takes its value as the next argument: --flag true
	TypeBoolArg
)

// boolArg is a boolean flag value that is never implied by the bare flag.
type boolArg bool

func (b *boolArg) String() string { return strconv.FormatBool(bool(*b)) }

func (b *boolArg) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*b = boolArg(v)
	return nil
}

func (b *boolArg) Type() string { return "boolean" }

// Option declares one flag of a command. Default must match Type and is
// nil when the option has none.
type Option struct {
	Name     string
	Short    string
	Type     OptionType
	Required bool
	Default  any
	Help     string
}

type HandlerFunc func(ctx context.Context, app *App, p Params) error

// Command binds a dot-namespaced name to its options and handler.
type Command struct {
	Name    string
	Short   string
	Options []Option
	// groups of options that cannot be used together
	Exclusive [][]string
	Handler   HandlerFunc
}

func (o Option) define(fs *pflag.FlagSet) {
	switch o.Type {
	case TypeInt:
		def, _ := o.Default.(int)
		fs.IntP(o.Name, o.Short, def, o.Help)
	case TypeFloat:
		def, _ := o.Default.(float64)
		fs.Float64P(o.Name, o.Short, def, o.Help)
	case TypeBool:
		def, _ := o.Default.(bool)
		fs.BoolP(o.Name, o.Short, def, o.Help)
	case TypeBoolArg:
		def, _ := o.Default.(bool)
		v := boolArg(def)
		fs.VarP(&v, o.Name, o.Short, o.Help)
	case TypeStrings:
		def, _ := o.Default.([]string)
		fs.StringArrayP(o.Name, o.Short, def, o.Help)
	default:
		def, _ := o.Default.(string)
		fs.StringP(o.Name, o.Short, def, o.Help)
	}
}

func (a *App) command(def Command) *cobra.Command {
	c := &cobra.Command{
		Use:   def.Name,
		Short: def.Short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := def.Handler(cmd.Context(), a, newParams(cmd.Flags(), def.Options))
			return runtimeError(err)
		},
	}

	fs := c.Flags()
	fs.SortFlags = false
	for _, opt := range def.Options {
		opt.define(fs)
		if opt.Required {
			if err := c.MarkFlagRequired(opt.Name); err != nil {
				panic(fmt.Sprintf("command %s: %v", def.Name, err))
			}
		}
	}
	for _, group := range def.Exclusive {
		c.MarkFlagsMutuallyExclusive(group...)
	}
	return c
}

// Params is the parsed flag values of one command. Optional values that
// were not given and have no default are reported absent (nil).
type Params struct {
	flags *pflag.FlagSet
	opts  map[string]Option
}

func newParams(flags *pflag.FlagSet, options []Option) Params {
	opts := make(map[string]Option, len(options))
	for _, o := range options {
		opts[o.Name] = o
	}
	return Params{flags: flags, opts: opts}
}

func (p Params) Has(name string) bool {
	if p.flags.Changed(name) {
		return true
	}
	o, ok := p.opts[name]
	return ok && o.Default != nil
}

func (p Params) String(name string) string {
	v, _ := p.flags.GetString(name)
	return v
}

func (p Params) StringPtr(name string) *string {
	if !p.Has(name) {
		return nil
	}
	v := p.String(name)
	return &v
}

func (p Params) Int(name string) int {
	v, _ := p.flags.GetInt(name)
	return v
}

func (p Params) IntPtr(name string) *int {
	if !p.Has(name) {
		return nil
	}
	v := p.Int(name)
	return &v
}

func (p Params) Float(name string) float64 {
	v, _ := p.flags.GetFloat64(name)
	return v
}

func (p Params) FloatPtr(name string) *float64 {
	if !p.Has(name) {
		return nil
	}
	v := p.Float(name)
	return &v
}

func (p Params) Bool(name string) bool {
	f := p.flags.Lookup(name)
	if f == nil {
		return false
	}
	v, _ := strconv.ParseBool(f.Value.String())
	return v
}

func (p Params) Strings(name string) []string {
	v, _ := p.flags.GetStringArray(name)
	return v
}
