package app

import (
	"fmt"
	"strings"

	"github.com/just-cli/just/internal/errors"
	"github.com/just-cli/just/internal/output"
	"github.com/just-cli/just/internal/registry"
	"github.com/just-cli/just/internal/spec"
)

type App struct {
	Version string
	Commit  string
	Date    string
}

func New(version, commit, date string) App {
	return App{Version: version, Commit: commit, Date: date}
}

// BuildSpec 导出内置命令与当前已挂载的扩展命令。
func (a App) BuildSpec(entries []registry.Entry) spec.Spec {
	globalFlags := []spec.FlagSpec{
		{Name: "config", Default: "", Description: "Config file path (YAML); default: ./just.yaml or $HOME/.config/just/just.yaml"},
		{Name: "format", Env: "JUST_FORMAT", Default: "auto", Description: "Output format: json|yaml|table|csv|auto"},
		{Name: "ssh", Env: "JUST_SSH_HOST", Default: "", Description: "Run extensions on a configured SSH host (config: ssh_hosts.<name>)"},
		{Name: "log-level", Env: "JUST_LOG_LEVEL", Default: "info", Description: "Log level: debug|info|warn|error"},
	}
	cmds := []spec.CommandSpec{
		{Name: "spec", Description: "Export tool spec for AI/agents", Flags: globalFlags},
		{Name: "version", Description: "Print version information", Flags: globalFlags},
		{
			Name:        "ext add",
			Description: "Add an extension from a declaration and a command template",
			Flags: append(globalFlags,
				spec.FlagSpec{Name: "as", Description: "Extension declaration, e.g. 'just k logs POD[pod:str]'"},
				spec.FlagSpec{Name: "template", Description: "Command template (default: the trailing words)"},
				spec.FlagSpec{Name: "yes", Shorthand: "y", Default: "false", Description: "Overwrite without confirmation"},
			),
		},
		{Name: "ext list", Description: "Show the extension tree", Flags: globalFlags},
		{Name: "ext show", Description: "Show an extension's declaration, parameters and plan", Flags: globalFlags},
		{
			Name:        "ext edit",
			Description: "Edit an extension's declaration or template",
			Flags: append(globalFlags,
				spec.FlagSpec{Name: "as", Description: "New declaration"},
				spec.FlagSpec{Name: "template", Description: "New command template"},
			),
		},
		{
			Name:        "ext remove",
			Description: "Remove an extension",
			Flags:       append(globalFlags, spec.FlagSpec{Name: "yes", Shorthand: "y", Default: "false", Description: "Remove without confirmation"}),
		},
		{Name: "mcp server", Description: "Serve extensions as MCP tools", Flags: globalFlags},
	}
	for _, e := range entries {
		cmds = append(cmds, extensionSpec(e))
	}
	return spec.Spec{
		SchemaVersion: output.SchemaVersion,
		Commands:      cmds,
		ErrorCodes:    errors.AllCodes(),
	}
}

func extensionSpec(e registry.Entry) spec.CommandSpec {
	c := e.Command
	cs := spec.CommandSpec{
		Name:        strings.Join(e.Path, " "),
		Description: fmt.Sprintf("Runs: %s", c.Template),
		Extension:   true,
		Template:    c.Template,
	}
	params := c.Parameters
	if c.Varargs != nil {
		params = append(params[:len(params):len(params)], *c.Varargs)
	}
	for _, p := range params {
		cs.Args = append(cs.Args, spec.ArgSpec{
			Name:     p.Name,
			Kind:     string(p.Kind),
			Type:     string(p.Type),
			Required: p.Required,
			Default:  p.Default,
			Flag:     p.Flag,
			Short:    p.Short,
			Help:     p.Help,
		})
	}
	return cs
}

type VersionInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit" yaml:"commit"`
	Date    string `json:"date" yaml:"date"`
}

func (a App) VersionInfo() VersionInfo {
	return VersionInfo{Version: a.Version, Commit: a.Commit, Date: a.Date}
}
