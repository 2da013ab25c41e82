package errors

// ExitCode 是进程退出码（稳定契约）。
// 调用扩展命令时，进程直接以子命令的退出码退出，不经过这里。
type ExitCode int

const (
	ExitOK ExitCode = 0

	// 2: 参数/配置/声明语法错误
	ExitConfig ExitCode = 2

	// 3: 存储或 SSH 连接错误
	ExitConnect ExitCode = 3

	// 4: 命名空间冲突或扩展不存在
	ExitRegistry ExitCode = 4

	// 5: 命令执行失败（无法启动）
	ExitExec ExitCode = 5

	// 10: 内部错误
	ExitInternal ExitCode = 10
)

func ExitCodeFor(code Code) ExitCode {
	switch code {
	case CodeCfgNotFound, CodeCfgInvalid, CodeSecretNotFound,
		CodeDeclSyntax, CodeDeclEmpty:
		return ExitConfig
	case CodeStoreUnsupported, CodeStoreFailed,
		CodeSSHAuthFailed, CodeSSHHostKeyMismatch, CodeSSHDialFailed:
		return ExitConnect
	case CodeExtExists, CodeExtBuiltinConflict, CodeExtNotFound:
		return ExitRegistry
	case CodeExecFailed:
		return ExitExec
	case CodeInternal:
		fallthrough
	default:
		return ExitInternal
	}
}
