package file

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/just-cli/just/internal/errors"
	"github.com/just-cli/just/internal/extension"
	"github.com/just-cli/just/internal/store"
)

func openStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "extensions")
	s, xe := store.Open(context.Background(), "file", store.Options{Dir: dir})
	if xe != nil {
		t.Fatal(xe)
	}
	fs := s.(*Store)
	return fs, dir
}

func sampleRecord(t *testing.T, path []string) store.Record {
	t.Helper()
	spec, err := extension.Analyze(extension.Parse("just greet NAME[name:str=world#who] --count N[n:int=2] -v[verbose:bool]"))
	if err != nil {
		t.Fatal(err)
	}
	c, err := extension.Compile(spec, "echo hello NAME -v N")
	if err != nil {
		t.Fatal(err)
	}
	return store.Record{Path: path, Declaration: "just greet NAME[name:str=world#who]", Compiled: c}
}

func TestDriver_Registered(t *testing.T) {
	if _, ok := store.Get("file"); !ok {
		t.Fatal("file driver not registered")
	}
}

func TestDriver_RequiresDir(t *testing.T) {
	_, xe := (&Driver{}).Open(context.Background(), store.Options{})
	if xe == nil || xe.Code != errors.CodeCfgInvalid {
		t.Fatalf("expected JUST_CFG_INVALID, got %v", xe)
	}
}

func TestStore_SaveGetLoad(t *testing.T) {
	s, dir := openStore(t)
	ctx := context.Background()
	rec := sampleRecord(t, []string{"greet", "hello"})
	if err := s.Save(ctx, rec); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "greet", "hello.yaml")); err != nil {
		t.Fatalf("expected file on disk: %v", err)
	}

	got, err := s.Get(ctx, []string{"greet", "hello"})
	if err != nil {
		t.Fatal(err)
	}
	if got.Declaration != rec.Declaration || got.Compiled.Template != rec.Compiled.Template {
		t.Fatalf("unexpected record: %+v", got)
	}
	if !reflect.DeepEqual(got.Compiled.Parameters, rec.Compiled.Parameters) {
		t.Fatalf("parameters changed after round trip:\n%+v\n%+v", got.Compiled.Parameters, rec.Compiled.Parameters)
	}
	if !reflect.DeepEqual(got.Compiled.Plan, rec.Compiled.Plan) {
		t.Fatalf("plan changed after round trip")
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Fatal("timestamps not set")
	}

	recs, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || !reflect.DeepEqual(recs[0].Path, []string{"greet", "hello"}) {
		t.Fatalf("unexpected load: %+v", recs)
	}
}

func TestStore_SaveKeepsCreatedAt(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return t0 }
	if err := s.Save(ctx, sampleRecord(t, []string{"x"})); err != nil {
		t.Fatal(err)
	}
	s.now = func() time.Time { return t0.Add(time.Hour) }
	if err := s.Save(ctx, sampleRecord(t, []string{"x"})); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, []string{"x"})
	if err != nil {
		t.Fatal(err)
	}
	if !got.CreatedAt.Equal(t0) || !got.UpdatedAt.Equal(t0.Add(time.Hour)) {
		t.Fatalf("unexpected timestamps: created=%v updated=%v", got.CreatedAt, got.UpdatedAt)
	}
}

func TestStore_DeletePrunesEmptyDirs(t *testing.T) {
	s, dir := openStore(t)
	ctx := context.Background()
	_ = s.Save(ctx, sampleRecord(t, []string{"a", "b", "c"}))
	_ = s.Save(ctx, sampleRecord(t, []string{"a", "d"}))

	if err := s.Delete(ctx, []string{"a", "b", "c"}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "a", "b")); !os.IsNotExist(err) {
		t.Fatal("expected empty namespace dir to be removed")
	}
	if _, err := os.Stat(filepath.Join(dir, "a")); err != nil {
		t.Fatal("namespace with remaining extensions must stay")
	}
	if err := s.Delete(ctx, []string{"a", "d"}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatal("store root must never be removed")
	}
}

func TestStore_NotFound(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()
	if _, err := s.Get(ctx, []string{"nope"}); !errors.HasCode(err, errors.CodeExtNotFound) {
		t.Fatalf("Get: expected not found, got %v", err)
	}
	if err := s.Delete(ctx, []string{"nope"}); !errors.HasCode(err, errors.CodeExtNotFound) {
		t.Fatalf("Delete: expected not found, got %v", err)
	}
}

func TestStore_LoadInvalidFile(t *testing.T) {
	s, dir := openStore(t)
	if err := os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("compiled: [\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(context.Background()); !errors.HasCode(err, errors.CodeStoreFailed) {
		t.Fatalf("expected JUST_STORE_FAILED, got %v", err)
	}
}
