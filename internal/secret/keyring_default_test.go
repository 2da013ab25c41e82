//go:build !windows

package secret

import (
	"testing"

	"github.com/zalando/go-keyring"
)

func TestDefaultKeyringCRUD(t *testing.T) {
	keyring.MockInit()

	kr := defaultKeyring()
	if err := kr.Set(ServiceName, "acct", "value"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := kr.Get(ServiceName, "acct")
	if err != nil || got != "value" {
		t.Fatalf("Get = %q, %v", got, err)
	}
	if err := kr.Delete(ServiceName, "acct"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := kr.Get(ServiceName, "acct"); err == nil {
		t.Fatal("expected error after Delete")
	}
}

func TestResolve_DefaultKeyring(t *testing.T) {
	keyring.MockInit()
	if err := keyring.Set(ServiceName, "dsn", "file:x.db"); err != nil {
		t.Fatal(err)
	}
	got, xe := Resolve("keyring:dsn", Options{})
	if xe != nil || got != "file:x.db" {
		t.Fatalf("got %q, %v", got, xe)
	}
}
