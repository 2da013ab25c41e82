package errors

// Code 是稳定错误码（字符串），供脚本与 agent 判断。
// 只增不改、不复用旧含义。
type Code string

const (
	// Config / args
	CodeCfgNotFound    Code = "JUST_CFG_NOT_FOUND"
	CodeCfgInvalid     Code = "JUST_CFG_INVALID"
	CodeSecretNotFound Code = "JUST_SECRET_NOT_FOUND"

	// Declaration
	CodeDeclSyntax Code = "JUST_DECL_SYNTAX"
	CodeDeclEmpty  Code = "JUST_DECL_EMPTY"

	// Registry
	CodeExtExists          Code = "JUST_EXT_EXISTS"
	CodeExtBuiltinConflict Code = "JUST_EXT_BUILTIN_CONFLICT"
	CodeExtNotFound        Code = "JUST_EXT_NOT_FOUND"

	// Store
	CodeStoreUnsupported Code = "JUST_STORE_UNSUPPORTED"
	CodeStoreFailed      Code = "JUST_STORE_FAILED"

	// SSH
	CodeSSHAuthFailed      Code = "JUST_SSH_AUTH_FAILED"
	CodeSSHHostKeyMismatch Code = "JUST_SSH_HOSTKEY_MISMATCH"
	CodeSSHDialFailed      Code = "JUST_SSH_DIAL_FAILED"

	// Execution
	CodeExecFailed Code = "JUST_EXEC_FAILED"

	// Internal
	CodeInternal Code = "JUST_INTERNAL"
)

func AllCodes() []Code {
	return []Code{
		CodeCfgNotFound,
		CodeCfgInvalid,
		CodeSecretNotFound,
		CodeDeclSyntax,
		CodeDeclEmpty,
		CodeExtExists,
		CodeExtBuiltinConflict,
		CodeExtNotFound,
		CodeStoreUnsupported,
		CodeStoreFailed,
		CodeSSHAuthFailed,
		CodeSSHHostKeyMismatch,
		CodeSSHDialFailed,
		CodeExecFailed,
		CodeInternal,
	}
}
