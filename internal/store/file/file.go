// Package file 把每个扩展存为一个 YAML 文件：<dir>/<seg>/.../<leaf>.yaml。
package file

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/just-cli/just/internal/errors"
	"github.com/just-cli/just/internal/store"
)

const ext = ".yaml"

func init() {
	store.Register("file", &Driver{})
}

type Driver struct{}

func (d *Driver) Open(ctx context.Context, opts store.Options) (store.Store, *errors.XError) {
	dir := opts.Dir
	if dir == "" {
		dir = opts.DSN
	}
	if dir == "" {
		return nil, errors.New(errors.CodeCfgInvalid, "file store requires store.dir", nil)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.CodeStoreFailed, "failed to create store directory", map[string]any{"dir": dir}, err)
	}
	return &Store{root: dir, now: time.Now}, nil
}

// Store 是基于目录树的实现。
type Store struct {
	root string
	now  func() time.Time
}

func (s *Store) filename(path []string) string {
	parts := append([]string{s.root}, path...)
	return filepath.Join(parts...) + ext
}

func (s *Store) Load(ctx context.Context) ([]store.Record, error) {
	var recs []store.Record
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ext) {
			return nil
		}
		rec, xe := readRecord(p)
		if xe != nil {
			return xe
		}
		// 路径以文件位置为准
		rel, _ := filepath.Rel(s.root, strings.TrimSuffix(p, ext))
		rec.Path = strings.Split(filepath.ToSlash(rel), "/")
		recs = append(recs, rec)
		return nil
	})
	if err != nil {
		if xe, ok := errors.As(err); ok {
			return nil, xe
		}
		return nil, errors.Wrap(errors.CodeStoreFailed, "failed to load extensions", map[string]any{"dir": s.root}, err)
	}
	store.SortRecords(recs)
	return recs, nil
}

func readRecord(p string) (store.Record, *errors.XError) {
	b, err := os.ReadFile(p)
	if err != nil {
		return store.Record{}, errors.Wrap(errors.CodeStoreFailed, "failed to read extension", map[string]any{"file": p}, err)
	}
	var rec store.Record
	if err := yaml.Unmarshal(b, &rec); err != nil {
		return store.Record{}, errors.Wrap(errors.CodeStoreFailed, "invalid extension file", map[string]any{"file": p}, err)
	}
	if rec.Compiled == nil {
		return store.Record{}, errors.New(errors.CodeStoreFailed, "extension file has no compiled command", map[string]any{"file": p})
	}
	rec.Compiled.Normalize()
	return rec, nil
}

func (s *Store) Get(ctx context.Context, path []string) (store.Record, error) {
	p := s.filename(path)
	if _, err := os.Stat(p); os.IsNotExist(err) {
		return store.Record{}, store.NotFound(path)
	}
	rec, xe := readRecord(p)
	if xe != nil {
		return store.Record{}, xe
	}
	rec.Path = path
	return rec, nil
}

func (s *Store) Save(ctx context.Context, rec store.Record) error {
	p := s.filename(rec.Path)
	if prev, err := s.Get(ctx, rec.Path); err == nil && rec.CreatedAt.IsZero() {
		rec.CreatedAt = prev.CreatedAt
	}
	store.Touch(&rec, s.now())

	b, err := yaml.Marshal(rec)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, "failed to encode extension", nil, err)
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return errors.Wrap(errors.CodeStoreFailed, "failed to create namespace directory", map[string]any{"file": p}, err)
	}
	// 先写临时文件再改名，避免留下半截文件
	tmp, err := os.CreateTemp(filepath.Dir(p), ".just-*")
	if err != nil {
		return errors.Wrap(errors.CodeStoreFailed, "failed to write extension", map[string]any{"file": p}, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return errors.Wrap(errors.CodeStoreFailed, "failed to write extension", map[string]any{"file": p}, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.CodeStoreFailed, "failed to write extension", map[string]any{"file": p}, err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return errors.Wrap(errors.CodeStoreFailed, "failed to write extension", map[string]any{"file": p}, err)
	}
	return nil
}

// Delete 删除文件，并向上清理空目录（不删除根目录）。
func (s *Store) Delete(ctx context.Context, path []string) error {
	p := s.filename(path)
	if err := os.Remove(p); err != nil {
		if os.IsNotExist(err) {
			return store.NotFound(path)
		}
		return errors.Wrap(errors.CodeStoreFailed, "failed to delete extension", map[string]any{"file": p}, err)
	}
	for dir := filepath.Dir(p); dir != s.root && strings.HasPrefix(dir, s.root); dir = filepath.Dir(dir) {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			break
		}
		if err := os.Remove(dir); err != nil {
			break
		}
	}
	return nil
}

func (s *Store) Close() error { return nil }
