package ssh

import (
	"fmt"
	"testing"

	"github.com/just-cli/just/internal/config"
	"github.com/just-cli/just/internal/errors"
)

type fakeKeyring map[string]string

func (f fakeKeyring) Get(service, account string) (string, error) {
	if v, ok := f[service+"/"+account]; ok {
		return v, nil
	}
	return "", fmt.Errorf("not found")
}
func (f fakeKeyring) Set(service, account, value string) error { f[service+"/"+account] = value; return nil }
func (f fakeKeyring) Delete(service, account string) error     { delete(f, service+"/"+account); return nil }

func TestOptionsFromHost(t *testing.T) {
	kr := fakeKeyring{"just/build-key": "pp"}
	h := config.SSHHost{
		Host:           "build.internal",
		Port:           2222,
		User:           "ci",
		IdentityFile:   "/keys/id",
		Passphrase:     "keyring:build-key",
		KnownHostsFile: "/keys/known_hosts",
		SkipHostKey:    true,
	}
	opts, xe := OptionsFromHost(h, kr)
	if xe != nil {
		t.Fatal(xe)
	}
	want := Options{
		Host:                "build.internal",
		Port:                2222,
		User:                "ci",
		IdentityFile:        "/keys/id",
		Passphrase:          "pp",
		KnownHostsFile:      "/keys/known_hosts",
		SkipKnownHostsCheck: true,
	}
	if opts != want {
		t.Fatalf("got %+v, want %+v", opts, want)
	}
}

func TestOptionsFromHost_PlaintextPassphrase(t *testing.T) {
	h := config.SSHHost{Host: "h", Passphrase: "clear"}
	if _, xe := OptionsFromHost(h, fakeKeyring{}); xe == nil || xe.Code != errors.CodeCfgInvalid {
		t.Fatalf("expected JUST_CFG_INVALID, got %v", xe)
	}
	h.AllowPlaintext = true
	opts, xe := OptionsFromHost(h, fakeKeyring{})
	if xe != nil || opts.Passphrase != "clear" {
		t.Fatalf("got %+v, %v", opts, xe)
	}
}

func TestDefaultKnownHostsPath(t *testing.T) {
	if p := DefaultKnownHostsPath(); p != "~/.ssh/known_hosts" {
		t.Fatalf("unexpected: %q", p)
	}
}
