package config

import (
	"path/filepath"
	"testing"
)

func TestResolve_Defaults(t *testing.T) {
	tmp := t.TempDir()
	got, xe := Resolve(Options{WorkDir: tmp, HomeDir: tmp})
	if xe != nil {
		t.Fatalf("unexpected err: %v", xe)
	}
	if got.ConfigPath != "" {
		t.Fatalf("expected empty config path")
	}
	if got.Format != "auto" {
		t.Fatalf("format=%q want auto", got.Format)
	}
	if got.Store.Driver != "file" {
		t.Fatalf("store.driver=%q want file", got.Store.Driver)
	}
	if want := filepath.Join(tmp, ".just", "extensions"); got.Store.Dir != want {
		t.Fatalf("store.dir=%q want %q", got.Store.Dir, want)
	}
	if got.SSHHost != nil {
		t.Fatal("expected local execution by default")
	}
}

func TestResolve_FormatPrecedence(t *testing.T) {
	tmp := t.TempDir()
	writeConfig(t, filepath.Join(tmp, "just.yaml"), "format: yaml\n")

	got, xe := Resolve(Options{WorkDir: tmp, HomeDir: tmp})
	if xe != nil {
		t.Fatal(xe)
	}
	if got.Format != "yaml" {
		t.Fatalf("format=%q want yaml", got.Format)
	}

	// ENV overrides config
	got, xe = Resolve(Options{WorkDir: tmp, HomeDir: tmp, EnvFormat: "json"})
	if xe != nil {
		t.Fatal(xe)
	}
	if got.Format != "json" {
		t.Fatalf("format=%q want json", got.Format)
	}

	// CLI overrides ENV
	got, xe = Resolve(Options{WorkDir: tmp, HomeDir: tmp, EnvFormat: "yaml", CLIFormat: "table", CLIFormatSet: true})
	if xe != nil {
		t.Fatal(xe)
	}
	if got.Format != "table" {
		t.Fatalf("format=%q want table", got.Format)
	}
}

func TestResolve_StoreFromEnv(t *testing.T) {
	tmp := t.TempDir()
	writeConfig(t, filepath.Join(tmp, "just.yaml"), "store:\n  driver: mysql\n  dsn: cfg-dsn\n")

	got, xe := Resolve(Options{WorkDir: tmp, HomeDir: tmp, EnvStoreDriver: "pg", EnvStoreDSN: "postgres://x"})
	if xe != nil {
		t.Fatal(xe)
	}
	if got.Store.Driver != "pg" || got.Store.DSN != "postgres://x" {
		t.Fatalf("unexpected store: %+v", got.Store)
	}
	if got.Store.Dir != "" {
		t.Fatalf("sql drivers should not get a default dir, got %q", got.Store.Dir)
	}
}

func TestResolve_StoreDirExpandsHome(t *testing.T) {
	tmp := t.TempDir()
	writeConfig(t, filepath.Join(tmp, "just.yaml"), "store:\n  dir: ~/exts\n")

	got, xe := Resolve(Options{WorkDir: tmp, HomeDir: tmp})
	if xe != nil {
		t.Fatal(xe)
	}
	if want := filepath.Join(tmp, "exts"); got.Store.Dir != want {
		t.Fatalf("store.dir=%q want %q", got.Store.Dir, want)
	}
}

func TestResolve_SSHHost(t *testing.T) {
	tmp := t.TempDir()
	writeConfig(t, filepath.Join(tmp, "just.yaml"), `ssh_hosts:
  build:
    host: build.internal
    user: ci
    identity_file: ~/.ssh/id_ed25519
`)

	got, xe := Resolve(Options{WorkDir: tmp, HomeDir: tmp, CLISSHHost: "build", CLISSHHostSet: true})
	if xe != nil {
		t.Fatalf("unexpected error: %v", xe)
	}
	if got.SSHHost == nil || got.SSHHostName != "build" {
		t.Fatal("expected ssh host to be resolved")
	}
	if got.SSHHost.Port != 22 {
		t.Errorf("expected default port 22, got %d", got.SSHHost.Port)
	}
	if want := filepath.Join(tmp, ".ssh", "id_ed25519"); got.SSHHost.IdentityFile != want {
		t.Errorf("identity_file=%q want %q", got.SSHHost.IdentityFile, want)
	}
}

func TestResolve_SSHHostNotFound(t *testing.T) {
	tmp := t.TempDir()
	_, xe := Resolve(Options{WorkDir: tmp, HomeDir: tmp, EnvSSHHost: "nope"})
	if xe == nil {
		t.Fatal("expected error for unknown ssh host")
	}
	if xe.Code != "JUST_CFG_INVALID" {
		t.Errorf("expected code=JUST_CFG_INVALID, got %s", xe.Code)
	}
}

func TestResolve_LogLevelPrecedence(t *testing.T) {
	tmp := t.TempDir()
	writeConfig(t, filepath.Join(tmp, "just.yaml"), "log:\n  level: warn\n")

	got, xe := Resolve(Options{WorkDir: tmp, HomeDir: tmp, EnvLogLevel: "error"})
	if xe != nil {
		t.Fatal(xe)
	}
	if got.Log.Level != "error" {
		t.Fatalf("log.level=%q want error", got.Log.Level)
	}

	got, xe = Resolve(Options{WorkDir: tmp, HomeDir: tmp, EnvLogLevel: "error", CLILogLevel: "debug", CLILogLevelSet: true})
	if xe != nil {
		t.Fatal(xe)
	}
	if got.Log.Level != "debug" {
		t.Fatalf("log.level=%q want debug", got.Log.Level)
	}
}

func TestOptionsFromEnv(t *testing.T) {
	env := map[string]string{
		"JUST_FORMAT":       "json",
		"JUST_STORE_DRIVER": "sqlite",
		"JUST_STORE_DSN":    "x.db",
		"JUST_SSH_HOST":     "build",
		"JUST_LOG_LEVEL":    "debug",
	}
	opts := OptionsFromEnv(Options{}, func(k string) string { return env[k] })
	if opts.EnvFormat != "json" || opts.EnvStoreDriver != "sqlite" || opts.EnvStoreDSN != "x.db" ||
		opts.EnvSSHHost != "build" || opts.EnvLogLevel != "debug" {
		t.Fatalf("unexpected options: %+v", opts)
	}
}
