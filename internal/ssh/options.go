package ssh

import (
	"github.com/just-cli/just/internal/config"
	"github.com/just-cli/just/internal/errors"
	"github.com/just-cli/just/internal/secret"
)

// Options 包含 SSH 连接所需参数。
type Options struct {
	Host           string
	Port           int
	User           string
	IdentityFile   string // 私钥路径
	Passphrase     string // 已解析的私钥 passphrase（若有）
	KnownHostsFile string // 默认 ~/.ssh/known_hosts

	// SkipKnownHostsCheck 跳过 known_hosts 校验（极不推荐！）
	SkipKnownHostsCheck bool
}

func DefaultKnownHostsPath() string {
	return "~/.ssh/known_hosts"
}

// OptionsFromHost 把 ssh_hosts 中的一项转换为连接参数；
// passphrase 按 secret 规则解析（keyring: 或显式允许的明文）。
func OptionsFromHost(h config.SSHHost, kr secret.KeyringAPI) (Options, *errors.XError) {
	passphrase, xe := secret.Resolve(h.Passphrase, secret.Options{AllowPlaintext: h.AllowPlaintext, Keyring: kr})
	if xe != nil {
		return Options{}, xe
	}
	return Options{
		Host:                h.Host,
		Port:                h.Port,
		User:                h.User,
		IdentityFile:        h.IdentityFile,
		Passphrase:          passphrase,
		KnownHostsFile:      h.KnownHostsFile,
		SkipKnownHostsCheck: h.SkipHostKey,
	}, nil
}
