package pg

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/just-cli/just/internal/errors"
	"github.com/just-cli/just/internal/store"
	"github.com/just-cli/just/internal/store/sqlstore"
)

func init() {
	store.Register("pg", &Driver{})
}

var dialect = sqlstore.Dialect{
	Name:        "pg",
	Placeholder: sqlstore.Dollar,
	KeyType:     "TEXT",
	Upsert:      sqlstore.OnConflict,
}

type Driver struct{}

// Open 接受 URL（postgres://...）或 key=value 形式的 DSN。
func (d *Driver) Open(ctx context.Context, opts store.Options) (store.Store, *errors.XError) {
	if opts.DSN == "" {
		return nil, errors.New(errors.CodeCfgInvalid, "pg store requires store.dsn", nil)
	}
	config, err := pgx.ParseConfig(opts.DSN)
	if err != nil {
		return nil, errors.Wrap(errors.CodeCfgInvalid, "invalid pg dsn", nil, err)
	}
	conn := stdlib.OpenDB(*config)
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(errors.CodeStoreFailed, "failed to ping pg", nil, err)
	}
	s, xe := sqlstore.New(ctx, conn, dialect)
	if xe != nil {
		_ = conn.Close()
		return nil, xe
	}
	return s, nil
}
