package store

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/just-cli/just/internal/errors"
)

type mockDriver struct{}

func (m *mockDriver) Open(ctx context.Context, opts Options) (Store, *errors.XError) {
	return nil, errors.New(errors.CodeStoreFailed, "mock", nil)
}

func TestRegistry(t *testing.T) {
	name := "test_store_mock"
	Register(name, &mockDriver{})
	if _, ok := Get(name); !ok {
		t.Fatalf("expected driver")
	}
	found := false
	for _, n := range RegisteredNames() {
		if n == name {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected %s in RegisteredNames", name)
	}
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	name := "test_store_dup"
	Register(name, &mockDriver{})
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic for duplicate driver")
		}
	}()
	Register(name, &mockDriver{})
}

func TestRegistry_InvalidArgsPanics(t *testing.T) {
	t.Run("empty name", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Fatal("expected panic for empty name")
			}
		}()
		Register("", &mockDriver{})
	})
	t.Run("nil driver", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Fatal("expected panic for nil driver")
			}
		}()
		Register("test_store_nil", nil)
	})
}

func TestOpen_Unsupported(t *testing.T) {
	_, xe := Open(context.Background(), "no_such_driver", Options{})
	if xe == nil || xe.Code != errors.CodeStoreUnsupported {
		t.Fatalf("expected JUST_STORE_UNSUPPORTED, got %v", xe)
	}
}

func TestKey(t *testing.T) {
	path := []string{"docker", "container", "ip"}
	if Key(path) != "docker/container/ip" {
		t.Fatalf("key=%q", Key(path))
	}
	if !reflect.DeepEqual(SplitKey(Key(path)), path) {
		t.Fatalf("SplitKey mismatch")
	}
	if SplitKey("") != nil {
		t.Fatal("empty key should split to nil")
	}
}

func TestTouch(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)
	var rec Record
	Touch(&rec, t0)
	Touch(&rec, t1)
	if !rec.CreatedAt.Equal(t0) || !rec.UpdatedAt.Equal(t1) {
		t.Fatalf("unexpected timestamps: %+v", rec)
	}
}

func TestSortRecords(t *testing.T) {
	recs := []Record{{Path: []string{"z"}}, {Path: []string{"a", "b"}}, {Path: []string{"a"}}}
	SortRecords(recs)
	if recs[0].Key() != "a" || recs[1].Key() != "a/b" || recs[2].Key() != "z" {
		t.Fatalf("unexpected order: %v", recs)
	}
}
