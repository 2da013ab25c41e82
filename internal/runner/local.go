package runner

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/just-cli/just/internal/errors"
)

// Local 用内置的 bash 解释器执行命令行，不依赖系统 shell。
type Local struct {
	Dir string   // 为空则使用当前工作目录
	Env []string // 追加到进程环境之后的 KEY=VALUE
}

func NewLocal(dir string) *Local {
	return &Local{Dir: dir}
}

func (l *Local) Run(ctx context.Context, cmdline string, stdio Stdio) (int, *errors.XError) {
	prog, err := syntax.NewParser(syntax.Variant(syntax.LangBash)).Parse(strings.NewReader(cmdline), "")
	if err != nil {
		return -1, errors.Wrap(errors.CodeExecFailed, "failed to parse command line", map[string]any{"command": cmdline}, err)
	}

	dir := l.Dir
	if dir == "" {
		if dir, err = os.Getwd(); err != nil {
			return -1, errors.Wrap(errors.CodeExecFailed, "failed to get working directory", nil, err)
		}
	}
	r, err := interp.New(
		interp.StdIO(stdio.In, stdio.Out, stdio.Err),
		interp.Env(expand.ListEnviron(append(os.Environ(), l.Env...)...)),
		interp.Dir(dir),
	)
	if err != nil {
		return -1, errors.Wrap(errors.CodeExecFailed, "failed to create shell runner", nil, err)
	}

	err = r.Run(ctx, prog)
	if err == nil {
		return 0, nil
	}
	var status interp.ExitStatus
	if stderrors.As(err, &status) {
		return int(status), nil
	}
	return -1, errors.Wrap(errors.CodeExecFailed, "command failed", map[string]any{"command": cmdline}, err)
}

func (l *Local) Close() error { return nil }
