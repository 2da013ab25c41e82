package config

import (
	"os"
	"path/filepath"

	"github.com/just-cli/just/internal/errors"
)

const (
	DefaultStoreDriver = "file"
	DefaultFormat      = "auto"
)

// Resolve 合并 config/format/store/ssh/log：CLI > ENV > Config > 默认值。
func Resolve(opts Options) (Resolved, *errors.XError) {
	if opts.HomeDir == "" {
		if hd, err := os.UserHomeDir(); err == nil {
			opts.HomeDir = hd
		}
	}

	cfg, cfgPath, xe := LoadConfig(opts)
	if xe != nil {
		return Resolved{}, xe
	}

	// format：--format > JUST_FORMAT > format > auto
	format := firstNonEmpty(valueIfSet(opts.CLIFormatSet, opts.CLIFormat), opts.EnvFormat, cfg.Format, DefaultFormat)

	// store：JUST_STORE_* > store.*
	store := cfg.Store
	store.Driver = firstNonEmpty(opts.EnvStoreDriver, store.Driver, DefaultStoreDriver)
	store.DSN = firstNonEmpty(opts.EnvStoreDSN, store.DSN)
	if store.Driver == DefaultStoreDriver {
		dir := firstNonEmpty(store.Dir, filepath.Join(opts.HomeDir, ".just", "extensions"))
		store.Dir = ExpandHome(dir, opts.HomeDir)
	}

	logCfg := cfg.Log
	logCfg.Level = firstNonEmpty(valueIfSet(opts.CLILogLevelSet, opts.CLILogLevel), opts.EnvLogLevel, logCfg.Level)
	logCfg.File = ExpandHome(logCfg.File, opts.HomeDir)

	r := Resolved{
		ConfigPath: cfgPath,
		Format:     format,
		Store:      store,
		Log:        logCfg,
		File:       cfg,
	}

	// ssh：--ssh > JUST_SSH_HOST；名称必须在 ssh_hosts 中定义
	hostName := firstNonEmpty(valueIfSet(opts.CLISSHHostSet, opts.CLISSHHost), opts.EnvSSHHost)
	if hostName != "" {
		h, ok := cfg.SSHHosts[hostName]
		if !ok {
			return Resolved{}, errors.New(errors.CodeCfgInvalid, "ssh host not found in config", map[string]any{"name": hostName})
		}
		if h.Port == 0 {
			h.Port = 22
		}
		h.IdentityFile = ExpandHome(h.IdentityFile, opts.HomeDir)
		h.KnownHostsFile = ExpandHome(h.KnownHostsFile, opts.HomeDir)
		r.SSHHostName = hostName
		r.SSHHost = &h
	}

	return r, nil
}

func valueIfSet(set bool, value string) string {
	if !set {
		return ""
	}
	return value
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
