package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/just-cli/just/internal/errors"
	"github.com/just-cli/just/internal/extension"
)

// Record 是一条持久化的扩展：清洗后的路径、原始声明与编译结果。
type Record struct {
	Path        []string            `json:"path" yaml:"path"`
	Declaration string              `json:"declaration" yaml:"declaration"`
	Compiled    *extension.Compiled `json:"compiled" yaml:"compiled"`
	CreatedAt   time.Time           `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at" yaml:"updated_at"`
}

// Key 返回记录的存储键。
func (r Record) Key() string {
	return Key(r.Path)
}

// Key 把路径段拼接为存储键；路径段已清洗，不含 /。
func Key(path []string) string {
	return strings.Join(path, "/")
}

// SplitKey 是 Key 的逆操作。
func SplitKey(key string) []string {
	if key == "" {
		return nil
	}
	return strings.Split(key, "/")
}

// Store 是扩展的持久化后端。单次写入要么完整成功，要么返回错误。
type Store interface {
	// Load 返回全部记录，按路径排序。
	Load(ctx context.Context) ([]Record, error)
	// Get 读取单条记录；不存在时返回 JUST_EXT_NOT_FOUND。
	Get(ctx context.Context, path []string) (Record, error)
	// Save 新增或覆盖记录。
	Save(ctx context.Context, rec Record) error
	// Delete 删除记录；不存在时返回 JUST_EXT_NOT_FOUND。
	Delete(ctx context.Context, path []string) error
	Close() error
}

// Options 是打开存储所需的参数（来自 config.Store）。
type Options struct {
	Dir string
	DSN string
}

// Driver 由各存储实现，在 init() 中注册。
type Driver interface {
	Open(ctx context.Context, opts Options) (Store, *errors.XError)
}

var (
	mu      sync.RWMutex
	drivers = map[string]Driver{}
)

func Register(name string, d Driver) {
	mu.Lock()
	defer mu.Unlock()
	if name == "" {
		panic("store.Register: empty name")
	}
	if d == nil {
		panic("store.Register: nil driver")
	}
	if _, exists := drivers[name]; exists {
		panic("store.Register: duplicate driver: " + name)
	}
	drivers[name] = d
}

func Get(name string) (Driver, bool) {
	mu.RLock()
	defer mu.RUnlock()
	d, ok := drivers[name]
	return d, ok
}

func RegisteredNames() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(drivers))
	for k := range drivers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Open 按驱动名打开存储。
func Open(ctx context.Context, name string, opts Options) (Store, *errors.XError) {
	d, ok := Get(name)
	if !ok {
		return nil, errors.New(errors.CodeStoreUnsupported, "unsupported store driver",
			map[string]any{"driver": name, "supported": RegisteredNames()})
	}
	return d.Open(ctx, opts)
}

// NotFound 构造统一的记录不存在错误。
func NotFound(path []string) *errors.XError {
	return errors.New(errors.CodeExtNotFound, "extension not found", map[string]any{"path": strings.Join(path, " ")})
}

// SortRecords 按路径字典序排序。
func SortRecords(recs []Record) {
	sort.Slice(recs, func(i, j int) bool { return recs[i].Key() < recs[j].Key() })
}

// Touch 在保存前补齐时间戳：新记录设置 CreatedAt，每次保存刷新 UpdatedAt。
func Touch(rec *Record, now time.Time) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
}
