// Package runner 执行渲染后的扩展命令行：本地经 mvdan/sh 解释执行，
// 或通过 SSH 在远端主机执行。两者都返回子命令的退出码。
package runner

import (
	"context"
	"io"

	"github.com/just-cli/just/internal/config"
	"github.com/just-cli/just/internal/errors"
	"github.com/just-cli/just/internal/secret"
	"github.com/just-cli/just/internal/ssh"
)

// Stdio 是子命令的标准流；nil 的 In 表示无输入。
type Stdio struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Runner 执行一条命令行并返回其退出码。
// 非零退出码不是错误；XError 只表示命令没能运行起来。
type Runner interface {
	Run(ctx context.Context, cmdline string, stdio Stdio) (int, *errors.XError)
	Close() error
}

// Open 根据解析后的配置选择执行方式：配置了 ssh host 则远端执行，否则本地。
func Open(ctx context.Context, cfg config.Resolved, kr secret.KeyringAPI) (Runner, *errors.XError) {
	if cfg.SSHHost == nil {
		return NewLocal(""), nil
	}
	opts, xe := ssh.OptionsFromHost(*cfg.SSHHost, kr)
	if xe != nil {
		return nil, xe
	}
	client, xe := ssh.Connect(ctx, opts)
	if xe != nil {
		return nil, xe
	}
	return NewRemote(client), nil
}
