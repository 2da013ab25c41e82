// Package sqlite 以单文件 SQLite（纯 Go 驱动）保存扩展。
package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/just-cli/just/internal/errors"
	"github.com/just-cli/just/internal/store"
	"github.com/just-cli/just/internal/store/sqlstore"
)

func init() {
	store.Register("sqlite", &Driver{})
}

var dialect = sqlstore.Dialect{
	Name:        "sqlite",
	Placeholder: sqlstore.Question,
	KeyType:     "TEXT",
	Upsert:      sqlstore.OnConflict,
}

type Driver struct{}

// Open 的 DSN 是数据库文件路径（或 :memory:）；为空时使用 <dir>/extensions.db。
func (d *Driver) Open(ctx context.Context, opts store.Options) (store.Store, *errors.XError) {
	dsn := opts.DSN
	if dsn == "" {
		if opts.Dir == "" {
			return nil, errors.New(errors.CodeCfgInvalid, "sqlite store requires store.dsn or store.dir", nil)
		}
		dsn = filepath.Join(opts.Dir, "extensions.db")
	}
	if dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, errors.Wrap(errors.CodeStoreFailed, "failed to create sqlite directory", map[string]any{"dsn": dsn}, err)
		}
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(errors.CodeStoreFailed, "failed to open sqlite database", map[string]any{"dsn": dsn}, err)
	}
	// :memory: 每个连接是独立数据库
	conn.SetMaxOpenConns(1)
	if _, err := conn.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(errors.CodeStoreFailed, "failed to configure sqlite", map[string]any{"dsn": dsn}, err)
	}
	s, xe := sqlstore.New(ctx, conn, dialect)
	if xe != nil {
		_ = conn.Close()
		return nil, xe
	}
	return s, nil
}
