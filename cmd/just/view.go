package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/just-cli/just/internal/extension"
	"github.com/just-cli/just/internal/registry"
	"github.com/just-cli/just/internal/store"
)

// extensionView is the output of ext add/show/edit.
type extensionView struct {
	Path        string                   `json:"path" yaml:"path"`
	Declaration string                   `json:"declaration,omitempty" yaml:"declaration,omitempty"`
	Template    string                   `json:"template" yaml:"template"`
	Usage       string                   `json:"usage" yaml:"usage"`
	Parameters  []extension.Parameter    `json:"parameters" yaml:"parameters"`
	Varargs     *extension.Parameter     `json:"varargs,omitempty" yaml:"varargs,omitempty"`
	Plan        []extension.Substitution `json:"plan,omitempty" yaml:"plan,omitempty"`
	Created     []string                 `json:"created_namespaces,omitempty" yaml:"created_namespaces,omitempty"`
	Replaced    bool                     `json:"replaced,omitempty" yaml:"replaced,omitempty"`
	RenamedFrom string                   `json:"renamed_from,omitempty" yaml:"renamed_from,omitempty"`
	Warnings    []registry.Warning       `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	CreatedAt   *time.Time               `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt   *time.Time               `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

func newExtensionView(path []string, declaration string, c *extension.Compiled) extensionView {
	return extensionView{
		Path:        strings.Join(path, " "),
		Declaration: declaration,
		Template:    c.Template,
		Usage:       usageFor(path, c),
		Parameters:  c.Parameters,
		Varargs:     c.Varargs,
	}
}

func (v *extensionView) withRecord(rec store.Record) {
	if v.Declaration == "" {
		v.Declaration = rec.Declaration
	}
	if !rec.CreatedAt.IsZero() {
		v.CreatedAt = &rec.CreatedAt
	}
	if !rec.UpdatedAt.IsZero() {
		v.UpdatedAt = &rec.UpdatedAt
	}
}

// usageFor renders the full invocation line, e.g. "just k logs POD [flags]".
func usageFor(path []string, c *extension.Compiled) string {
	parts := append([]string{"just"}, path[:len(path)-1]...)
	parts = append(parts, usageLine(path[len(path)-1], c))
	for _, p := range c.Parameters {
		if p.Kind == extension.KindOption {
			parts = append(parts, "[flags]")
			break
		}
	}
	return strings.Join(parts, " ")
}

func (v extensionView) RenderText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	row := func(k, val string) {
		if val != "" {
			_, _ = fmt.Fprintf(tw, "%s\t%s\n", k, val)
		}
	}
	row("path", v.Path)
	row("declaration", v.Declaration)
	row("template", v.Template)
	row("usage", v.Usage)
	if v.RenamedFrom != "" {
		row("renamed from", v.RenamedFrom)
	}
	for _, c := range v.Created {
		row("created", c)
	}
	if v.Replaced {
		row("replaced", "true")
	}
	for _, warn := range v.Warnings {
		row("note", warn.Message)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	params := v.Parameters
	if v.Varargs != nil {
		params = append(params[:len(params):len(params)], *v.Varargs)
	}
	if len(params) == 0 {
		return nil
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(tw, "NAME\tKIND\tTYPE\tREQUIRED\tDEFAULT\tFLAG\tHELP")
	for _, p := range params {
		flag := ""
		if p.Flag != "" {
			flag = "--" + p.Flag
			if p.Short != "" {
				flag = "-" + p.Short + ", " + flag
			}
		}
		def := ""
		if p.Default != nil {
			def = fmt.Sprint(p.Default)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\t%s\t%s\n", p.Name, p.Kind, p.Type, p.Required, def, flag, p.Help)
	}
	return tw.Flush()
}

// removeView is the output of ext remove.
type removeView struct {
	Path    string   `json:"path" yaml:"path"`
	Removed bool     `json:"removed" yaml:"removed"`
	Pruned  []string `json:"pruned_namespaces,omitempty" yaml:"pruned_namespaces,omitempty"`
}

func (v removeView) RenderText(w io.Writer) error {
	if !v.Removed {
		_, err := fmt.Fprintf(w, "kept %s\n", v.Path)
		return err
	}
	if _, err := fmt.Fprintf(w, "removed %s\n", v.Path); err != nil {
		return err
	}
	for _, p := range v.Pruned {
		if _, err := fmt.Fprintf(w, "pruned empty namespace %s\n", p); err != nil {
			return err
		}
	}
	return nil
}
