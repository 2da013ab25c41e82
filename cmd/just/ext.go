package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"mvdan.cc/sh/v3/syntax"

	"github.com/just-cli/just/internal/app"
	"github.com/just-cli/just/internal/errors"
	"github.com/just-cli/just/internal/extension"
	"github.com/just-cli/just/internal/output"
	"github.com/just-cli/just/internal/registry"
	"github.com/just-cli/just/internal/store"
)

// NewExtCommand creates the ext command group
func NewExtCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ext",
		Short: "Manage extensions",
	}
	cmd.AddCommand(
		newExtAddCommand(env),
		newExtListCommand(env),
		newExtShowCommand(env),
		newExtEditCommand(env),
		newExtRemoveCommand(env),
	)
	return cmd
}

type extAddOptions struct {
	as       string
	template string
	yes      bool
}

func newExtAddCommand(env *Env) *cobra.Command {
	opts := &extAddOptions{}
	cmd := &cobra.Command{
		Use:   "add [flags] [--] <command...>",
		Short: "Add an extension: just ext add --as 'just greet NAME[name:str]' echo Hello NAME",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtAdd(cmd, args, opts, env)
		},
	}
	// the template command's own flags must not be parsed as ours
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().StringVar(&opts.as, "as", "", "Extension declaration, e.g. 'just k logs POD[pod:str] --tail N[n:int=100]'")
	cmd.Flags().StringVar(&opts.template, "template", "", "Command template (default: the trailing words, shell-quoted)")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Overwrite an existing extension without confirmation")
	return cmd
}

func runExtAdd(cmd *cobra.Command, args []string, opts *extAddOptions, env *Env) error {
	format, err := parseOutputFormat(GlobalConfig.FormatStr)
	if err != nil {
		return err
	}

	template := opts.template
	if template == "" {
		if len(args) == 0 {
			return errors.New(errors.CodeCfgInvalid, "command template is required", nil)
		}
		if template, err = joinCommand(args); err != nil {
			return err
		}
	}

	decl := opts.as
	if decl == "" {
		if !env.Prompt.Interactive {
			return errors.New(errors.CodeCfgInvalid, "declaration is required; pass --as", nil)
		}
		if decl, err = env.Prompt.Ask("Declaration (e.g. just greet NAME[name:str])", ""); err != nil {
			return errors.Wrap(errors.CodeCfgInvalid, "failed to read declaration", nil, err)
		}
	}

	rawPath, c, xe := app.Compile(decl, template)
	if xe != nil {
		return xe
	}
	_, warnings := registry.SanitizePath(rawPath)
	for _, w := range warnings {
		env.Logger.Warn("extension name", "segment", w.Segment, "note", w.Message)
	}

	loc, err := env.Registry.Register(rawPath, c, opts.yes)
	if errors.HasCode(err, errors.CodeExtExists) && !opts.yes && env.Prompt.Interactive {
		if _, ok := env.Registry.Lookup(rawPath); ok &&
			env.Prompt.Confirm(fmt.Sprintf("Extension '%s' already exists. Overwrite?", strings.Join(rawPath, " "))) {
			loc, err = env.Registry.Register(rawPath, c, true)
		}
	}
	if err != nil {
		return err
	}

	if err := env.Store.Save(cmd.Context(), store.Record{Path: loc.Path, Declaration: decl, Compiled: c}); err != nil {
		return err
	}
	env.Logger.Info("extension added", "path", loc.String(), "replaced", loc.Replaced)

	v := newExtensionView(loc.Path, decl, c)
	v.Created = loc.Created
	v.Replaced = loc.Replaced
	v.Warnings = warnings
	return env.W.WriteOK(format, v)
}

// joinCommand shell-quotes each word so the template reproduces the words as typed.
func joinCommand(args []string) (string, error) {
	words := make([]string, len(args))
	for i, a := range args {
		q, err := syntax.Quote(a, syntax.LangBash)
		if err != nil {
			return "", errors.Wrap(errors.CodeCfgInvalid, "cannot quote command word", map[string]any{"word": a}, err)
		}
		words[i] = q
	}
	return strings.Join(words, " "), nil
}

func newExtListCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show the extension tree",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(GlobalConfig.FormatStr)
			if err != nil {
				return err
			}
			return env.W.WriteOK(format, extensionTree(env.Registry))
		},
	}
}

func extensionTree(reg *registry.Registry) output.Tree {
	var convert func(prefix []string, nodes []*registry.TreeNode) []output.TreeNode
	convert = func(prefix []string, nodes []*registry.TreeNode) []output.TreeNode {
		out := make([]output.TreeNode, 0, len(nodes))
		for _, n := range nodes {
			path := append(prefix[:len(prefix):len(prefix)], n.Name)
			tn := output.TreeNode{Name: n.Name, Leaf: n.Command, Children: convert(path, n.Children)}
			if c, ok := reg.Lookup(path); ok {
				tn.Detail = c.Template
			}
			out = append(out, tn)
		}
		return out
	}
	return output.Tree{Root: "just", Nodes: convert(nil, reg.Tree())}
}

func newExtShowCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "show <path...>",
		Short: "Show an extension's declaration, parameters and substitution plan",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(GlobalConfig.FormatStr)
			if err != nil {
				return err
			}
			path, c, xe := lookupExtension(env, args)
			if xe != nil {
				return xe
			}
			v := newExtensionView(path, "", c)
			v.Plan = c.Plan
			if rec, err := env.Store.Get(cmd.Context(), path); err == nil {
				v.withRecord(rec)
			} else {
				env.Logger.Warn("extension record unavailable", "path", strings.Join(path, " "), "err", err)
			}
			return env.W.WriteOK(format, v)
		},
	}
}

// lookupExtension returns the sanitized path and the compiled extension.
func lookupExtension(env *Env, args []string) ([]string, *extension.Compiled, *errors.XError) {
	path, _ := registry.SanitizePath(args)
	c, ok := env.Registry.Lookup(path)
	if !ok {
		return nil, nil, errors.New(errors.CodeExtNotFound, "extension not found", map[string]any{"path": strings.Join(path, " ")})
	}
	return path, c, nil
}

type extEditOptions struct {
	as       string
	template string
}

func newExtEditCommand(env *Env) *cobra.Command {
	opts := &extEditOptions{}
	cmd := &cobra.Command{
		Use:   "edit <path...>",
		Short: "Edit an extension's declaration or template",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtEdit(cmd, args, opts, env)
		},
	}
	cmd.Flags().StringVar(&opts.as, "as", "", "New declaration")
	cmd.Flags().StringVar(&opts.template, "template", "", "New command template")
	return cmd
}

func runExtEdit(cmd *cobra.Command, args []string, opts *extEditOptions, env *Env) error {
	format, err := parseOutputFormat(GlobalConfig.FormatStr)
	if err != nil {
		return err
	}
	path, _, xe := lookupExtension(env, args)
	if xe != nil {
		return xe
	}
	rec, err := env.Store.Get(cmd.Context(), path)
	if err != nil {
		return err
	}

	decl, template := opts.as, opts.template
	if decl == "" && template == "" {
		if !env.Prompt.Interactive {
			return errors.New(errors.CodeCfgInvalid, "nothing to edit; pass --as or --template", nil)
		}
		if decl, err = env.Prompt.Ask("Declaration", rec.Declaration); err != nil {
			return errors.Wrap(errors.CodeCfgInvalid, "failed to read declaration", nil, err)
		}
		if template, err = env.Prompt.Ask("Template", rec.Compiled.Template); err != nil {
			return errors.Wrap(errors.CodeCfgInvalid, "failed to read template", nil, err)
		}
	}
	if decl == "" {
		decl = rec.Declaration
	}
	if template == "" {
		template = rec.Compiled.Template
	}

	rawPath, c, xe := app.Compile(decl, template)
	if xe != nil {
		return xe
	}
	newPath, warnings := registry.SanitizePath(rawPath)
	renamed := store.Key(newPath) != store.Key(path)

	loc, err := env.Registry.Register(rawPath, c, !renamed)
	if err != nil {
		return err
	}
	if err := env.Store.Save(cmd.Context(), store.Record{Path: loc.Path, Declaration: decl, Compiled: c, CreatedAt: rec.CreatedAt}); err != nil {
		return err
	}
	v := newExtensionView(loc.Path, decl, c)
	v.Warnings = warnings
	v.Created = loc.Created
	v.Replaced = loc.Replaced
	if renamed {
		if err := env.Store.Delete(cmd.Context(), path); err != nil {
			return err
		}
		if _, err := env.Registry.Remove(path); err != nil {
			return err
		}
		v.RenamedFrom = strings.Join(path, " ")
	}
	env.Logger.Info("extension edited", "path", loc.String(), "renamed_from", v.RenamedFrom)
	return env.W.WriteOK(format, v)
}

type extRemoveOptions struct {
	yes bool
}

func newExtRemoveCommand(env *Env) *cobra.Command {
	opts := &extRemoveOptions{}
	cmd := &cobra.Command{
		Use:     "remove <path...>",
		Aliases: []string{"rm"},
		Short:   "Remove an extension and prune empty namespaces",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtRemove(cmd, args, opts, env)
		},
	}
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Remove without confirmation")
	return cmd
}

func runExtRemove(cmd *cobra.Command, args []string, opts *extRemoveOptions, env *Env) error {
	format, err := parseOutputFormat(GlobalConfig.FormatStr)
	if err != nil {
		return err
	}
	path, _, xe := lookupExtension(env, args)
	if xe != nil {
		return xe
	}
	name := strings.Join(path, " ")
	if !opts.yes {
		if !env.Prompt.Interactive {
			return errors.New(errors.CodeCfgInvalid, "confirmation required; pass -y", map[string]any{"path": name})
		}
		if !env.Prompt.Confirm(fmt.Sprintf("Remove extension '%s'?", name)) {
			return env.W.WriteOK(format, removeView{Path: name})
		}
	}

	if err := env.Store.Delete(cmd.Context(), path); err != nil {
		return err
	}
	pruned, err := env.Registry.Remove(path)
	if err != nil {
		return err
	}
	env.Logger.Info("extension removed", "path", name, "pruned", pruned)
	return env.W.WriteOK(format, removeView{Path: name, Removed: true, Pruned: pruned})
}
