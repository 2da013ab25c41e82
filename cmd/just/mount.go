package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/just-cli/just/internal/app"
	"github.com/just-cli/just/internal/errors"
	"github.com/just-cli/just/internal/extension"
	"github.com/just-cli/just/internal/registry"
	"github.com/just-cli/just/internal/runner"
)

// mountExtensions adds one cobra command per registered extension, creating
// group commands for namespaces. Existing built-in groups are reused.
func mountExtensions(root *cobra.Command, env *Env) {
	var walk func(parent *cobra.Command, n *registry.Node, path []string)
	walk = func(parent *cobra.Command, n *registry.Node, path []string) {
		for _, child := range n.Children() {
			childPath := append(path[:len(path):len(path)], child.Name)
			cmd := findSubcommand(parent, child.Name)
			switch {
			case child.Builtin:
				// built-in groups may hold extensions; help/completion have no command yet
				if cmd == nil {
					continue
				}
			case child.IsCommand():
				cmd = newExtensionCommand(child, childPath, env)
				parent.AddCommand(cmd)
			case cmd == nil:
				cmd = newNamespaceCommand(child)
				parent.AddCommand(cmd)
			}
			walk(cmd, child, childPath)
		}
	}
	if n, ok := env.Registry.Node(nil); ok {
		walk(root, n, nil)
	}
}

func findSubcommand(parent *cobra.Command, name string) *cobra.Command {
	for _, c := range parent.Commands() {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

func newNamespaceCommand(n *registry.Node) *cobra.Command {
	return &cobra.Command{
		Use:     n.Name,
		Aliases: n.Aliases,
		Short:   "Extension group",
	}
}

func newExtensionCommand(n *registry.Node, path []string, env *Env) *cobra.Command {
	c := n.Command
	values := map[string]*paramValue{}
	own := map[*pflag.Flag]bool{}

	cmd := &cobra.Command{
		Use:     usageLine(n.Name, c),
		Aliases: n.Aliases,
		Short:   "Runs: " + c.Template,
		// Flags are split by hand: leading global flags are not the
		// extension's, and varargs take dash-prefixed words too.
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			args, err := parseExtensionArgs(cmd, c, own, args, env.globalArgs)
			if err != nil {
				return err
			}
			if help, _ := cmd.Flags().GetBool("help"); help {
				return cmd.Help()
			}
			if err := extensionArgs(c)(cmd, args); err != nil {
				return err
			}
			inv, xe := buildInvocation(c, values, args)
			if xe != nil {
				return xe
			}
			r, xe := env.OpenRunner(cmd.Context())
			if xe != nil {
				return xe
			}
			defer r.Close()

			code, xe := app.Invoke(cmd.Context(), r, path, c, inv, runner.Stdio{In: env.Stdin, Out: env.W.Out, Err: env.W.Err}, env.Keyring, env.Logger)
			if xe != nil {
				return xe
			}
			if code != 0 {
				return exitStatus(code)
			}
			return nil
		},
	}

	for _, p := range c.Parameters {
		if p.Kind != extension.KindOption {
			continue
		}
		v := &paramValue{param: p}
		values[p.Name] = v
		f := cmd.Flags().VarPF(v, p.Flag, p.Short, flagUsage(p))
		if p.Type == extension.TypeBool {
			f.NoOptDefVal = "true"
		}
		own[f] = true
	}
	return cmd
}

// parseExtensionArgs drops the leading global flags (cobra hands them over
// when flag parsing is disabled), parses the extension's own flags and
// returns the remaining words. Without varargs an unknown flag is an error.
func parseExtensionArgs(cmd *cobra.Command, c *extension.Compiled, own map[*pflag.Flag]bool, args []string, lead int) ([]string, error) {
	if lead <= len(args) {
		args = args[lead:]
	}
	flagArgs, words, unknown := splitFlags(cmd.Flags(), own, args)
	if c.Varargs == nil && len(unknown) > 0 {
		return nil, errors.New(errors.CodeCfgInvalid, "unknown flag", map[string]any{"flag": unknown[0], "command": cmd.CommandPath()})
	}
	if err := cmd.Flags().Parse(flagArgs); err != nil {
		return nil, errors.Wrap(errors.CodeCfgInvalid, err.Error(), nil, err)
	}
	return words, nil
}

// splitFlags separates the extension's own flags (and -h/--help) from the
// words that bind to positionals and varargs. Other dash-prefixed tokens,
// combined short flags like -la and everything after -- are words; the
// dash-prefixed ones before -- are also reported as unknown.
func splitFlags(fs *pflag.FlagSet, own map[*pflag.Flag]bool, args []string) (flagArgs, words, unknown []string) {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			words = append(words, args[i+1:]...)
			break
		}
		f, inline := lookupFlagToken(fs, a)
		if f == nil || !(own[f] || f.Name == "help") {
			if looksLikeFlag(a) {
				unknown = append(unknown, a)
			}
			words = append(words, a)
			continue
		}
		flagArgs = append(flagArgs, a)
		if !inline && f.NoOptDefVal == "" && i+1 < len(args) {
			i++
			flagArgs = append(flagArgs, args[i])
		}
	}
	return flagArgs, words, unknown
}

// looksLikeFlag is true for -x/--x tokens but not for "-" or negative numbers.
func looksLikeFlag(tok string) bool {
	if len(tok) < 2 || tok[0] != '-' {
		return false
	}
	_, err := strconv.ParseFloat(tok, 64)
	return err != nil
}

// lookupFlagToken resolves --name, --name=value, -x and -xVALUE; inline
// reports whether the token already carries the value.
func lookupFlagToken(fs *pflag.FlagSet, tok string) (*pflag.Flag, bool) {
	switch {
	case strings.HasPrefix(tok, "--") && len(tok) > 2:
		name, _, inline := strings.Cut(tok[2:], "=")
		return fs.Lookup(name), inline
	case strings.HasPrefix(tok, "-") && len(tok) == 2:
		return fs.ShorthandLookup(tok[1:]), false
	case strings.HasPrefix(tok, "-") && len(tok) > 2 && tok[2] != '=':
		// -tVALUE only for flags taking a value; -la stays a word
		if f := fs.ShorthandLookup(tok[1:2]); f != nil && f.NoOptDefVal == "" {
			return f, true
		}
	case strings.HasPrefix(tok, "-") && len(tok) > 2:
		return fs.ShorthandLookup(tok[1:2]), true
	}
	return nil, false
}

// usageLine renders e.g. "logs POD [TAIL] [flags] [ARGS...]".
func usageLine(name string, c *extension.Compiled) string {
	parts := []string{name}
	for _, p := range c.Positionals() {
		arg := strings.ToUpper(p.Name)
		if !p.Required {
			arg = "[" + arg + "]"
		}
		parts = append(parts, arg)
	}
	if c.Varargs != nil {
		parts = append(parts, "["+strings.ToUpper(c.Varargs.Name)+"...]")
	}
	return strings.Join(parts, " ")
}

func flagUsage(p extension.Parameter) string {
	if p.Help != "" {
		return p.Help
	}
	return string(p.Type)
}

func extensionArgs(c *extension.Compiled) cobra.PositionalArgs {
	positionals := len(c.Positionals())
	if c.Varargs != nil {
		return cobra.ArbitraryArgs
	}
	return func(cmd *cobra.Command, args []string) error {
		if len(args) > positionals {
			return errors.New(errors.CodeCfgInvalid, "too many arguments", map[string]any{"expected": positionals, "got": len(args)})
		}
		return nil
	}
}

// buildInvocation binds positional args in parameter order; the rest goes to varargs.
func buildInvocation(c *extension.Compiled, flags map[string]*paramValue, args []string) (extension.Invocation, *errors.XError) {
	inv := extension.Invocation{Values: map[string]any{}, Set: map[string]bool{}}
	positionals := c.Positionals()
	for i, p := range positionals {
		if i >= len(args) {
			break
		}
		v, err := extension.ParseValue(p.Type, args[i])
		if err != nil {
			return inv, errors.Wrap(errors.CodeCfgInvalid, "invalid argument", map[string]any{"argument": p.Name}, err)
		}
		inv.Values[p.Name] = v
		inv.Set[p.Name] = true
	}
	if len(args) > len(positionals) {
		inv.Rest = args[len(positionals):]
	}
	for name, v := range flags {
		if v.set {
			inv.Values[name] = v.value
			inv.Set[name] = true
		}
	}
	return inv, nil
}

// paramValue is a pflag.Value typed by the extension parameter.
type paramValue struct {
	param extension.Parameter
	value any
	set   bool
}

func (v *paramValue) String() string {
	if v == nil {
		return ""
	}
	if v.set {
		return fmt.Sprint(v.value)
	}
	if v.param.Default == nil {
		return ""
	}
	return fmt.Sprint(v.param.Default)
}

func (v *paramValue) Set(s string) error {
	parsed, err := extension.ParseValue(v.param.Type, s)
	if err != nil {
		return err
	}
	v.value, v.set = parsed, true
	return nil
}

func (v *paramValue) Type() string {
	return string(v.param.Type)
}
