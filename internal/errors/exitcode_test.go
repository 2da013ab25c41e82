package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestExitCodeFor(t *testing.T) {
	cases := []struct {
		code Code
		want ExitCode
	}{
		{CodeCfgNotFound, ExitConfig},
		{CodeCfgInvalid, ExitConfig},
		{CodeSecretNotFound, ExitConfig},
		{CodeDeclSyntax, ExitConfig},
		{CodeDeclEmpty, ExitConfig},
		{CodeStoreUnsupported, ExitConnect},
		{CodeStoreFailed, ExitConnect},
		{CodeSSHDialFailed, ExitConnect},
		{CodeSSHAuthFailed, ExitConnect},
		{CodeSSHHostKeyMismatch, ExitConnect},
		{CodeExtExists, ExitRegistry},
		{CodeExtBuiltinConflict, ExitRegistry},
		{CodeExtNotFound, ExitRegistry},
		{CodeExecFailed, ExitExec},
		{CodeInternal, ExitInternal},
		{Code("UNKNOWN_CODE"), ExitInternal}, // unknown code
	}
	for _, tc := range cases {
		if got := ExitCodeFor(tc.code); got != tc.want {
			t.Errorf("ExitCodeFor(%s)=%d want %d", tc.code, got, tc.want)
		}
	}
}

func TestXError_Error(t *testing.T) {
	// Without cause
	xe := New(CodeDeclSyntax, "unknown type", nil)
	expected := "JUST_DECL_SYNTAX: unknown type"
	if xe.Error() != expected {
		t.Errorf("Error()=%q, want %q", xe.Error(), expected)
	}

	// With cause
	cause := stderrors.New("disk full")
	xe = Wrap(CodeStoreFailed, "failed to save extension", nil, cause)
	expected = "JUST_STORE_FAILED: failed to save extension: disk full"
	if xe.Error() != expected {
		t.Errorf("Error()=%q, want %q", xe.Error(), expected)
	}

	// Nil error
	var nilErr *XError
	if nilErr.Error() != "" {
		t.Errorf("nil XError.Error() should return empty string")
	}
}

func TestXError_Unwrap(t *testing.T) {
	cause := stderrors.New("cause")
	xe := Wrap(CodeExecFailed, "msg", nil, cause)
	if xe.Unwrap() != cause {
		t.Error("Unwrap should return cause")
	}

	xe2 := New(CodeCfgInvalid, "msg", nil)
	if xe2.Unwrap() != nil {
		t.Error("Unwrap should return nil when no cause")
	}
}

func TestAs(t *testing.T) {
	xe := New(CodeExtExists, "test", nil)
	got, ok := As(xe)
	if !ok || got != xe {
		t.Error("As should return XError")
	}

	wrapped := fmt.Errorf("register: %w", xe)
	got, ok = As(wrapped)
	if !ok || got != xe {
		t.Error("As should unwrap to find XError")
	}

	_, ok = As(stderrors.New("plain error"))
	if ok {
		t.Error("As should return false for non-XError")
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeExtExists, "exists", nil))
	if !HasCode(err, CodeExtExists) {
		t.Error("HasCode should find wrapped code")
	}
	if HasCode(err, CodeExtNotFound) {
		t.Error("HasCode should not match a different code")
	}
	if HasCode(stderrors.New("plain"), CodeInternal) {
		t.Error("HasCode should be false for non-XError")
	}
}

func TestAsOrWrap(t *testing.T) {
	plain := stderrors.New("boom")
	xe := AsOrWrap(plain)
	if xe.Code != CodeInternal {
		t.Errorf("code=%s want %s", xe.Code, CodeInternal)
	}
	if !stderrors.Is(xe, plain) {
		t.Error("wrapped error should keep its cause")
	}
}

func TestAllCodes(t *testing.T) {
	codes := AllCodes()
	if len(codes) != 15 {
		t.Errorf("AllCodes() should return 15 codes, got %d", len(codes))
	}

	seen := make(map[Code]bool)
	for _, c := range codes {
		if seen[c] {
			t.Errorf("Duplicate code: %s", c)
		}
		seen[c] = true
	}
}
