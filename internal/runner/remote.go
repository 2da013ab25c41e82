package runner

import (
	"context"
	"io"

	"github.com/just-cli/just/internal/errors"
)

// sessionRunner 是 ssh.Client 的执行面，便于测试替换。
type sessionRunner interface {
	Run(ctx context.Context, cmdline string, stdin io.Reader, stdout, stderr io.Writer) (int, *errors.XError)
	Close() error
}

// Remote 在 SSH 主机上执行命令行，命令行由远端 shell 解释。
type Remote struct {
	client sessionRunner
}

func NewRemote(client sessionRunner) *Remote {
	return &Remote{client: client}
}

func (r *Remote) Run(ctx context.Context, cmdline string, stdio Stdio) (int, *errors.XError) {
	return r.client.Run(ctx, cmdline, stdio.In, stdio.Out, stdio.Err)
}

func (r *Remote) Close() error {
	return r.client.Close()
}
