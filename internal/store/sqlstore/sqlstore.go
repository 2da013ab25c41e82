// Package sqlstore 是 SQL 后端的公共实现，各驱动只提供方言差异。
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/just-cli/just/internal/errors"
	"github.com/just-cli/just/internal/extension"
	"github.com/just-cli/just/internal/store"
)

// Table 是扩展记录表名。
const Table = "just_extensions"

// Dialect 描述各数据库的 SQL 差异。
type Dialect struct {
	Name string
	// Placeholder 返回第 n 个（从 1 开始）参数占位符。
	Placeholder func(n int) string
	// KeyType 是主键列类型（MySQL 的 TEXT 不能直接做主键）。
	KeyType string
	// Upsert 返回插入或更新语句。
	Upsert func(d Dialect) string
}

// Question 用于 sqlite/mysql 的 ? 占位符。
func Question(int) string { return "?" }

// Dollar 用于 PostgreSQL 的 $n 占位符。
func Dollar(n int) string { return fmt.Sprintf("$%d", n) }

// OnConflict 生成 sqlite/pg 的 upsert。
func OnConflict(d Dialect) string {
	return fmt.Sprintf(`INSERT INTO %s (path, declaration, compiled, created_at, updated_at) VALUES (%s)
ON CONFLICT (path) DO UPDATE SET declaration = excluded.declaration, compiled = excluded.compiled, updated_at = excluded.updated_at`,
		Table, placeholders(d, 5))
}

// OnDuplicateKey 生成 MySQL 的 upsert。
func OnDuplicateKey(d Dialect) string {
	return fmt.Sprintf(`INSERT INTO %s (path, declaration, compiled, created_at, updated_at) VALUES (%s)
ON DUPLICATE KEY UPDATE declaration = VALUES(declaration), compiled = VALUES(compiled), updated_at = VALUES(updated_at)`,
		Table, placeholders(d, 5))
}

func placeholders(d Dialect, n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = d.Placeholder(i + 1)
	}
	return strings.Join(ps, ", ")
}

// Store 是 store.Store 的 database/sql 实现。
type Store struct {
	db  *sql.DB
	d   Dialect
	now func() time.Time
}

// New 建表并返回 Store；失败时不关闭 db，由调用方处理。
func New(ctx context.Context, db *sql.DB, d Dialect) (*Store, *errors.XError) {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	path %s PRIMARY KEY,
	declaration TEXT NOT NULL,
	compiled TEXT NOT NULL,
	created_at BIGINT NOT NULL,
	updated_at BIGINT NOT NULL
)`, Table, d.KeyType)
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return nil, errors.Wrap(errors.CodeStoreFailed, "failed to create extensions table", map[string]any{"driver": d.Name}, err)
	}
	return &Store{db: db, d: d, now: time.Now}, nil
}

// SetClock 替换时间源（测试用）。
func (s *Store) SetClock(now func() time.Time) { s.now = now }

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (store.Record, error) {
	var (
		key, decl, compiled  string
		createdAt, updatedAt int64
	)
	if err := row.Scan(&key, &decl, &compiled, &createdAt, &updatedAt); err != nil {
		return store.Record{}, err
	}
	var c extension.Compiled
	if err := json.Unmarshal([]byte(compiled), &c); err != nil {
		return store.Record{}, errors.Wrap(errors.CodeStoreFailed, "invalid compiled command", map[string]any{"path": key}, err)
	}
	c.Normalize()
	return store.Record{
		Path:        store.SplitKey(key),
		Declaration: decl,
		Compiled:    &c,
		CreatedAt:   time.Unix(0, createdAt).UTC(),
		UpdatedAt:   time.Unix(0, updatedAt).UTC(),
	}, nil
}

const selectColumns = "path, declaration, compiled, created_at, updated_at"

func (s *Store) Load(ctx context.Context) ([]store.Record, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT %s FROM %s ORDER BY path", selectColumns, Table))
	if err != nil {
		return nil, errors.Wrap(errors.CodeStoreFailed, "failed to load extensions", map[string]any{"driver": s.d.Name}, err)
	}
	defer rows.Close()

	var recs []store.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, errors.AsOrWrap(err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.CodeStoreFailed, "failed to load extensions", map[string]any{"driver": s.d.Name}, err)
	}
	// 不同数据库的排序规则不同，统一按键排序
	store.SortRecords(recs)
	return recs, nil
}

func (s *Store) Get(ctx context.Context, path []string) (store.Record, error) {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE path = %s", selectColumns, Table, s.d.Placeholder(1))
	rec, err := scanRecord(s.db.QueryRowContext(ctx, q, store.Key(path)))
	if stderrors.Is(err, sql.ErrNoRows) {
		return store.Record{}, store.NotFound(path)
	}
	if err != nil {
		if xe, ok := errors.As(err); ok {
			return store.Record{}, xe
		}
		return store.Record{}, errors.Wrap(errors.CodeStoreFailed, "failed to read extension", map[string]any{"driver": s.d.Name}, err)
	}
	return rec, nil
}

func (s *Store) Save(ctx context.Context, rec store.Record) error {
	store.Touch(&rec, s.now())
	b, err := json.Marshal(rec.Compiled)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, "failed to encode extension", nil, err)
	}
	// created_at 只在插入时生效，更新语句不覆盖它
	_, err = s.db.ExecContext(ctx, s.d.Upsert(s.d),
		rec.Key(), rec.Declaration, string(b), rec.CreatedAt.UnixNano(), rec.UpdatedAt.UnixNano())
	if err != nil {
		return errors.Wrap(errors.CodeStoreFailed, "failed to save extension", map[string]any{"driver": s.d.Name, "path": rec.Key()}, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, path []string) error {
	res, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE path = %s", Table, s.d.Placeholder(1)), store.Key(path))
	if err != nil {
		return errors.Wrap(errors.CodeStoreFailed, "failed to delete extension", map[string]any{"driver": s.d.Name}, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.NotFound(path)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
