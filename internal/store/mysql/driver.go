package mysql

import (
	"context"
	"database/sql"

	"github.com/go-sql-driver/mysql"

	"github.com/just-cli/just/internal/errors"
	"github.com/just-cli/just/internal/store"
	"github.com/just-cli/just/internal/store/sqlstore"
)

func init() {
	store.Register("mysql", &Driver{})
}

var dialect = sqlstore.Dialect{
	Name:        "mysql",
	Placeholder: sqlstore.Question,
	KeyType:     "VARCHAR(512)",
	Upsert:      sqlstore.OnDuplicateKey,
}

type Driver struct{}

func (d *Driver) Open(ctx context.Context, opts store.Options) (store.Store, *errors.XError) {
	cfg, xe := parseDSN(opts.DSN)
	if xe != nil {
		return nil, xe
	}
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, errors.Wrap(errors.CodeCfgInvalid, "invalid mysql dsn", nil, err)
	}
	conn := sql.OpenDB(connector)
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(errors.CodeStoreFailed, "failed to ping mysql", nil, err)
	}
	s, xe := sqlstore.New(ctx, conn, dialect)
	if xe != nil {
		_ = conn.Close()
		return nil, xe
	}
	return s, nil
}

func parseDSN(dsn string) (*mysql.Config, *errors.XError) {
	if dsn == "" {
		return nil, errors.New(errors.CodeCfgInvalid, "mysql store requires store.dsn", nil)
	}
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, errors.Wrap(errors.CodeCfgInvalid, "invalid mysql dsn", nil, err)
	}
	cfg.ParseTime = true
	return cfg, nil
}
