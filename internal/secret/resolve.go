package secret

import (
	"strings"

	"github.com/just-cli/just/internal/errors"
)

const keyringPrefix = "keyring:"

// Options 控制 secret 解析行为。
type Options struct {
	AllowPlaintext bool       // 是否允许明文（默认 false）
	Keyring        KeyringAPI // nil 则用 OS keyring
}

// Resolve 解析配置中的 secret（store dsn、ssh passphrase、mcp token）：
//  1. keyring:xxx → 从 keyring 读取
//  2. 空值原样返回
//  3. 明文仅在 AllowPlaintext 时放行
func Resolve(raw string, opts Options) (string, *errors.XError) {
	if IsKeyringRef(raw) {
		return lookup(strings.TrimPrefix(raw, keyringPrefix), opts.Keyring)
	}
	if raw == "" || opts.AllowPlaintext {
		return raw, nil
	}
	return "", errors.New(errors.CodeCfgInvalid, "plaintext secret not allowed; use a keyring: reference or set allow_plaintext", nil)
}

// ResolveDefault 解析扩展参数的默认值：keyring:xxx 读取 keyring，
// 其余值不是 secret，原样返回。
func ResolveDefault(v any, kr KeyringAPI) (any, *errors.XError) {
	s, ok := v.(string)
	if !ok || !IsKeyringRef(s) {
		return v, nil
	}
	return lookup(strings.TrimPrefix(s, keyringPrefix), kr)
}

// IsKeyringRef 判断值是否为 keyring 引用。
func IsKeyringRef(s string) bool {
	return strings.HasPrefix(s, keyringPrefix)
}

func lookup(account string, kr KeyringAPI) (string, *errors.XError) {
	if account == "" {
		return "", errors.New(errors.CodeCfgInvalid, "empty keyring reference", nil)
	}
	if kr == nil {
		kr = defaultKeyring()
	}
	val, err := kr.Get(ServiceName, account)
	if err != nil {
		return "", errors.Wrap(errors.CodeSecretNotFound, "failed to read secret from keyring", map[string]any{"account": account}, err)
	}
	return val, nil
}
