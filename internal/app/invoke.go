package app

import (
	"context"
	"log/slog"
	"maps"
	"strings"

	"github.com/just-cli/just/internal/errors"
	"github.com/just-cli/just/internal/extension"
	"github.com/just-cli/just/internal/runner"
	"github.com/just-cli/just/internal/secret"
)

// Render 补齐 keyring 默认值后渲染命令行。
// redacted 表示命令行中含有来自 keyring 的值，不应写入日志。
func Render(c *extension.Compiled, inv extension.Invocation, kr secret.KeyringAPI) (cmdline string, redacted bool, xe *errors.XError) {
	values := maps.Clone(inv.Values)
	if values == nil {
		values = map[string]any{}
	}
	for _, p := range c.Parameters {
		if v, ok := values[p.Name]; ok && v != nil {
			continue
		}
		s, ok := p.Default.(string)
		if !ok || !secret.IsKeyringRef(s) {
			continue
		}
		v, xe := secret.ResolveDefault(s, kr)
		if xe != nil {
			return "", false, xe
		}
		values[p.Name] = v
		redacted = true
	}
	inv.Values = values

	out, err := c.Render(inv)
	if err != nil {
		return "", false, errors.AsOrWrap(err)
	}
	return out, redacted, nil
}

// Invoke 渲染并执行扩展，返回子命令的退出码。
func Invoke(ctx context.Context, r runner.Runner, path []string, c *extension.Compiled, inv extension.Invocation, stdio runner.Stdio, kr secret.KeyringAPI, logger *slog.Logger) (int, *errors.XError) {
	cmdline, redacted, xe := Render(c, inv, kr)
	if xe != nil {
		return -1, xe
	}
	name := strings.Join(path, " ")
	if redacted {
		logger.Debug("running extension", "path", name, "command", "<redacted>")
	} else {
		logger.Debug("running extension", "path", name, "command", cmdline)
	}
	code, xe := r.Run(ctx, cmdline, stdio)
	if xe != nil {
		return code, xe
	}
	logger.Debug("extension finished", "path", name, "exit", code)
	return code, nil
}
