package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/just-cli/just/internal/app"
	"github.com/just-cli/just/internal/errors"
	"github.com/just-cli/just/internal/extension"
	"github.com/just-cli/just/internal/output"
	"github.com/just-cli/just/internal/registry"
	"github.com/just-cli/just/internal/runner"
	"github.com/just-cli/just/internal/secret"
)

// ListToolName 是列出全部扩展的工具名。
const ListToolName = "ext_list"

// toolSep 连接路径段组成工具名；清洗后的路径段不含连续下划线，因此不会混淆。
const toolSep = "__"

// OpenRunner 为一次工具调用准备执行器（本地或 SSH）。
type OpenRunner func(ctx context.Context) (runner.Runner, *errors.XError)

// ToolHandler 把已注册的扩展暴露为 MCP 工具。
type ToolHandler struct {
	reg     *registry.Registry
	open    OpenRunner
	keyring secret.KeyringAPI
	logger  *slog.Logger
}

func NewToolHandler(reg *registry.Registry, open OpenRunner, kr secret.KeyringAPI, logger *slog.Logger) *ToolHandler {
	return &ToolHandler{reg: reg, open: open, keyring: kr, logger: logger}
}

// ToolName 返回扩展对应的工具名，例如 k8s__logs。
func ToolName(path []string) string {
	return strings.Join(path, toolSep)
}

// RegisterTools 注册 ext_list 以及每个扩展一个工具。
func (h *ToolHandler) RegisterTools(server *mcp.Server) {
	mcp.AddTool[struct{}, any](server, &mcp.Tool{
		Name:        ListToolName,
		Description: "List all user-defined extensions with their command templates",
	}, h.ListExtensions)

	for _, e := range h.reg.Extensions() {
		server.AddTool(&mcp.Tool{
			Name:        ToolName(e.Path),
			Description: fmt.Sprintf("just %s (runs: %s)", strings.Join(e.Path, " "), e.Command.Template),
			InputSchema: InputSchema(e.Command),
		}, h.extensionHandler(e))
	}
}

// InputSchema 由参数表生成工具的 JSON Schema。
func InputSchema(c *extension.Compiled) *jsonschema.Schema {
	s := &jsonschema.Schema{
		Type:       "object",
		Properties: map[string]*jsonschema.Schema{},
	}
	for _, p := range c.Parameters {
		s.Properties[p.Name] = &jsonschema.Schema{
			Type:        jsonType(p.Type),
			Description: describe(p),
		}
		if p.Required {
			s.Required = append(s.Required, p.Name)
		}
	}
	if va := c.Varargs; va != nil {
		s.Properties[va.Name] = &jsonschema.Schema{
			Type:        "array",
			Items:       &jsonschema.Schema{Type: "string"},
			Description: describe(*va),
		}
	}
	return s
}

func jsonType(t extension.ValueType) string {
	switch t {
	case extension.TypeInt:
		return "integer"
	case extension.TypeFloat:
		return "number"
	case extension.TypeBool:
		return "boolean"
	case extension.TypeList:
		return "array"
	default:
		return "string"
	}
}

func describe(p extension.Parameter) string {
	var parts []string
	if p.Help != "" {
		parts = append(parts, p.Help)
	}
	switch {
	case p.Kind == extension.KindVarargs:
		parts = append(parts, "extra arguments appended verbatim")
	case p.Flag != "":
		parts = append(parts, "option --"+p.Flag)
	}
	if !p.Required && p.Default != nil {
		parts = append(parts, fmt.Sprintf("default: %v", p.Default))
	}
	return strings.Join(parts, "; ")
}

func (h *ToolHandler) extensionHandler(e registry.Entry) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := map[string]any{}
		if req != nil && req.Params != nil && len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
				return errorResult(errors.Wrap(errors.CodeCfgInvalid, "invalid input", nil, err)), nil
			}
		}
		return h.Call(ctx, e, args), nil
	}
}

// CallResult 是扩展工具调用的结果。
type CallResult struct {
	Path     string `json:"path"`
	ExitCode int    `json:"exit_code"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
}

// Call 把工具参数转换为一次调用，执行并捕获输出。非零退出码标记为 IsError。
func (h *ToolHandler) Call(ctx context.Context, e registry.Entry, args map[string]any) *mcp.CallToolResult {
	name := strings.Join(e.Path, " ")
	h.logger.Info("mcp tool call", "path", name)

	inv, xe := Invocation(e.Command, args)
	if xe != nil {
		return errorResult(xe)
	}
	r, xe := h.open(ctx)
	if xe != nil {
		return errorResult(xe)
	}
	defer r.Close()

	var stdout, stderr bytes.Buffer
	code, xe := app.Invoke(ctx, r, e.Path, e.Command, inv, runner.Stdio{Out: &stdout, Err: &stderr}, h.keyring, h.logger)
	if xe != nil {
		return errorResult(xe)
	}
	res := okResult(CallResult{Path: name, ExitCode: code, Stdout: stdout.String(), Stderr: stderr.String()})
	res.IsError = code != 0
	return res
}

// Invocation 把 JSON 参数转换为 extension.Invocation，按参数类型做转换。
func Invocation(c *extension.Compiled, args map[string]any) (extension.Invocation, *errors.XError) {
	inv := extension.Invocation{Values: map[string]any{}, Set: map[string]bool{}}
	for name, raw := range args {
		if raw == nil {
			continue
		}
		p, ok := c.Param(name)
		if !ok {
			return inv, errors.New(errors.CodeCfgInvalid, "unknown argument", map[string]any{"argument": name})
		}
		if p.Kind == extension.KindVarargs {
			rest, xe := toStrings(name, raw)
			if xe != nil {
				return inv, xe
			}
			inv.Rest = rest
			continue
		}
		v, xe := coerce(p, raw)
		if xe != nil {
			return inv, xe
		}
		inv.Values[name] = v
		inv.Set[name] = true
	}
	return inv, nil
}

func coerce(p extension.Parameter, raw any) (any, *errors.XError) {
	invalid := func() *errors.XError {
		return errors.New(errors.CodeCfgInvalid, "invalid argument value", map[string]any{"argument": p.Name, "type": string(p.Type), "value": raw})
	}
	switch x := raw.(type) {
	case string:
		v, err := extension.ParseValue(p.Type, x)
		if err != nil {
			return nil, invalid()
		}
		return v, nil
	case float64:
		switch p.Type {
		case extension.TypeInt:
			if x != float64(int64(x)) {
				return nil, invalid()
			}
			return int64(x), nil
		case extension.TypeFloat:
			return x, nil
		case extension.TypeBool:
			return nil, invalid()
		}
		return fmt.Sprint(x), nil
	case bool:
		if p.Type == extension.TypeBool {
			return x, nil
		}
		if p.Type == extension.TypeStr {
			return fmt.Sprint(x), nil
		}
	}
	return nil, invalid()
}

func toStrings(name string, raw any) ([]string, *errors.XError) {
	switch x := raw.(type) {
	case string:
		return []string{x}, nil
	case []any:
		out := make([]string, 0, len(x))
		for _, v := range x {
			out = append(out, fmt.Sprint(v))
		}
		return out, nil
	}
	return nil, errors.New(errors.CodeCfgInvalid, "varargs must be an array of strings", map[string]any{"argument": name})
}

type extensionInfo struct {
	Tool     string `json:"tool"`
	Path     string `json:"path"`
	Template string `json:"template"`
}

// ListExtensions 列出全部扩展及其工具名。
func (h *ToolHandler) ListExtensions(ctx context.Context, req *mcp.CallToolRequest, input struct{}) (*mcp.CallToolResult, any, error) {
	entries := h.reg.Extensions()
	list := make([]extensionInfo, 0, len(entries))
	for _, e := range entries {
		list = append(list, extensionInfo{
			Tool:     ToolName(e.Path),
			Path:     strings.Join(e.Path, " "),
			Template: e.Command.Template,
		})
	}
	return okResult(map[string]any{"extensions": list}), nil, nil
}

func okResult(data any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(output.Envelope{OK: true, SchemaVersion: output.SchemaVersion, Data: data}, "", "  ")
	if err != nil {
		return errorResult(errors.Wrap(errors.CodeInternal, "failed to marshal result", nil, err))
	}
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: string(out)}}}
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: formatError(err)}},
	}
}

// formatError 把错误格式化为与 CLI 一致的错误信封。
func formatError(err error) string {
	var xe *errors.XError
	if err != nil {
		xe = errors.AsOrWrap(err)
	} else {
		xe = errors.New(errors.CodeInternal, "unknown error", nil)
	}
	out, _ := json.MarshalIndent(output.Envelope{
		OK:            false,
		SchemaVersion: output.SchemaVersion,
		Error:         &output.ErrorObject{Code: xe.Code, Message: xe.Message, Details: xe.Details},
	}, "", "  ")
	return string(out)
}

// CreateServer 创建 MCP server 并注册扩展工具。
func CreateServer(version string, h *ToolHandler) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "just",
		Version: version,
	}, nil)
	h.RegisterTools(server)
	return server
}
