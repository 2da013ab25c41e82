package app

import (
	"context"
	"log/slog"
	"strings"

	"github.com/just-cli/just/internal/config"
	"github.com/just-cli/just/internal/errors"
	"github.com/just-cli/just/internal/extension"
	"github.com/just-cli/just/internal/registry"
	"github.com/just-cli/just/internal/secret"
	"github.com/just-cli/just/internal/store"
	_ "github.com/just-cli/just/internal/store/file"
	_ "github.com/just-cli/just/internal/store/mysql"
	_ "github.com/just-cli/just/internal/store/pg"
	_ "github.com/just-cli/just/internal/store/sqlite"
)

// networkDrivers 的 DSN 通常带密码，按 secret 规则解析。
var networkDrivers = map[string]bool{"mysql": true, "pg": true}

// OpenStore 按配置打开扩展存储；DSN 支持 keyring:xxx 引用。
func OpenStore(ctx context.Context, cfg config.Store, kr secret.KeyringAPI) (store.Store, *errors.XError) {
	dsn := cfg.DSN
	if secret.IsKeyringRef(dsn) || networkDrivers[cfg.Driver] {
		resolved, xe := secret.Resolve(dsn, secret.Options{AllowPlaintext: cfg.AllowPlaintext, Keyring: kr})
		if xe != nil {
			return nil, xe
		}
		dsn = resolved
	}
	return store.Open(ctx, cfg.Driver, store.Options{Dir: cfg.Dir, DSN: dsn})
}

// Compile 解析声明并编译模板，返回声明中的原始路径。
func Compile(declaration, template string) ([]string, *extension.Compiled, *errors.XError) {
	cs, err := extension.Analyze(extension.Parse(declaration))
	if err != nil {
		return nil, nil, errors.AsOrWrap(err)
	}
	c, err := extension.Compile(cs, template)
	if err != nil {
		return nil, nil, errors.AsOrWrap(err)
	}
	return cs.Path, c, nil
}

// Mount 把存储中的记录挂到 reg 上，返回成功挂载的数量。
// 单条记录冲突或损坏时记录告警并跳过，不影响其他扩展。
func Mount(reg *registry.Registry, recs []store.Record, logger *slog.Logger) int {
	n := 0
	for _, rec := range recs {
		if rec.Compiled == nil {
			logger.Warn("skipping extension without compiled form", "path", rec.Key())
			continue
		}
		if _, err := reg.Register(rawPath(rec), rec.Compiled, false); err != nil {
			logger.Warn("skipping extension", "path", rec.Key(), "err", err)
			continue
		}
		n++
	}
	logger.Debug("extensions mounted", "count", n, "records", len(recs))
	return n
}

// rawPath 从声明恢复用户写下的路径，清洗后与记录一致时才使用，
// 这样命令树能保留原始写法作为别名。
func rawPath(rec store.Record) []string {
	cs, err := extension.Analyze(extension.Parse(rec.Declaration))
	if err != nil {
		return rec.Path
	}
	clean, _ := registry.SanitizePath(cs.Path)
	if strings.Join(clean, "/") != rec.Key() {
		return rec.Path
	}
	return cs.Path
}
