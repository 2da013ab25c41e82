package config

// File 表示 just.yaml 的配置结构。
// 约束：配置优先级为 CLI > ENV > Config。
type File struct {
	Format   string             `yaml:"format"`
	Store    Store              `yaml:"store"`
	Log      Log                `yaml:"log"`
	SSHHosts map[string]SSHHost `yaml:"ssh_hosts"`
	MCP      MCP                `yaml:"mcp"`
}

// Store 描述扩展的持久化位置。
type Store struct {
	Driver         string `yaml:"driver"` // file | sqlite | mysql | pg
	Dir            string `yaml:"dir"`    // file 驱动的根目录
	DSN            string `yaml:"dsn"`    // SQL 驱动；支持 keyring:xxx 引用
	AllowPlaintext bool   `yaml:"allow_plaintext"`
}

type Log struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// SSHHost 是可通过 --ssh <name> 选择的远程执行目标。
type SSHHost struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	User           string `yaml:"user"`
	IdentityFile   string `yaml:"identity_file"`
	Passphrase     string `yaml:"passphrase"` // 支持 keyring:xxx 引用
	KnownHostsFile string `yaml:"known_hosts_file"`
	SkipHostKey    bool   `yaml:"skip_host_key"` // 极不推荐
	AllowPlaintext bool   `yaml:"allow_plaintext"`
}

type MCP struct {
	Transport string  `yaml:"transport"`
	HTTP      MCPHTTP `yaml:"http"`
}

type MCPHTTP struct {
	Addr                string `yaml:"addr"`
	AuthToken           string `yaml:"auth_token"`
	AllowPlaintextToken bool   `yaml:"allow_plaintext_token"`
}

type Resolved struct {
	ConfigPath string
	Format     string
	Store      Store
	Log        Log

	// SSHHostName 为空表示本地执行。
	SSHHostName string
	SSHHost     *SSHHost

	File File
}

type Options struct {
	// ConfigPath: 若非空，则只读取该文件（不存在报错）。
	ConfigPath string

	// CLI
	CLIFormat      string
	CLIFormatSet   bool
	CLISSHHost     string
	CLISSHHostSet  bool
	CLILogLevel    string
	CLILogLevelSet bool

	// ENV（由调用方注入，便于测试）
	EnvFormat      string
	EnvStoreDriver string
	EnvStoreDSN    string
	EnvSSHHost     string
	EnvLogLevel    string

	// HomeDir 用于默认路径计算（为空则自动探测）。
	HomeDir string

	// WorkDir 用于默认路径（为空则使用进程当前工作目录）。
	WorkDir string
}

// OptionsFromEnv 用 getenv 填充 ENV 字段。
func OptionsFromEnv(opts Options, getenv func(string) string) Options {
	opts.EnvFormat = getenv("JUST_FORMAT")
	opts.EnvStoreDriver = getenv("JUST_STORE_DRIVER")
	opts.EnvStoreDSN = getenv("JUST_STORE_DSN")
	opts.EnvSSHHost = getenv("JUST_SSH_HOST")
	opts.EnvLogLevel = getenv("JUST_LOG_LEVEL")
	return opts
}
