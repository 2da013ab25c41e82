package main

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// isolatedCommand 在临时 HOME 下运行二进制，避免读取用户的配置与扩展。
func isolatedCommand(t *testing.T, binary string, args ...string) *exec.Cmd {
	t.Helper()
	tmpDir := t.TempDir()
	cmd := exec.Command(binary, args...)
	cmd.Dir = tmpDir
	cmd.Env = append(os.Environ(), "HOME="+tmpDir, "USERPROFILE="+tmpDir,
		"JUST_FORMAT=", "JUST_STORE_DRIVER=", "JUST_STORE_DSN=", "JUST_SSH_HOST=")
	return cmd
}

// TestMain_SpecCommand 测试 spec 命令输出
func TestMain_SpecCommand(t *testing.T) {
	binary := buildTestBinary(t)

	out, err := isolatedCommand(t, binary, "spec", "--format", "json").Output()
	if err != nil {
		t.Fatalf("spec command failed: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(out, &resp); err != nil {
		t.Fatalf("failed to parse JSON: %v\noutput: %s", err, out)
	}
	if ok, _ := resp["ok"].(bool); !ok {
		t.Errorf("expected ok=true, got %v", resp["ok"])
	}
	if v, _ := resp["schema_version"].(float64); v != 1 {
		t.Errorf("expected schema_version=1, got %v", v)
	}
}

// TestMain_ExtensionRoundTrip 测试 ext add 后在新进程中调用扩展
func TestMain_ExtensionRoundTrip(t *testing.T) {
	binary := buildTestBinary(t)
	home := t.TempDir()
	env := append(os.Environ(), "HOME="+home, "USERPROFILE="+home, "JUST_FORMAT=json", "JUST_STORE_DRIVER=", "JUST_STORE_DSN=")

	add := exec.Command(binary, "ext", "add", "--as", "just greet NAME[name:str]", "--template", "echo hello NAME")
	add.Dir, add.Env = home, env
	if out, err := add.CombinedOutput(); err != nil {
		t.Fatalf("ext add failed: %v\n%s", err, out)
	}
	if _, err := os.Stat(filepath.Join(home, ".just", "extensions")); err != nil {
		t.Fatalf("default store dir not created: %v", err)
	}

	greet := exec.Command(binary, "greet", "world")
	greet.Dir, greet.Env = home, env
	out, err := greet.Output()
	if err != nil {
		t.Fatalf("greet failed: %v", err)
	}
	if string(out) != "hello world\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

// TestMain_ExitCodePropagation 测试扩展退出码透传
func TestMain_ExitCodePropagation(t *testing.T) {
	binary := buildTestBinary(t)
	home := t.TempDir()
	env := append(os.Environ(), "HOME="+home, "USERPROFILE="+home, "JUST_STORE_DRIVER=", "JUST_STORE_DSN=")

	add := exec.Command(binary, "ext", "add", "--as", "just boom", "--template", "exit 42", "--format", "json")
	add.Dir, add.Env = home, env
	if out, err := add.CombinedOutput(); err != nil {
		t.Fatalf("ext add failed: %v\n%s", err, out)
	}

	boom := exec.Command(binary, "boom")
	boom.Dir, boom.Env = home, env
	err := boom.Run()
	exitErr, ok := err.(*exec.ExitError)
	if !ok || exitErr.ExitCode() != 42 {
		t.Fatalf("expected exit 42, got %v", err)
	}
}

// TestMain_InvalidFormat 测试无效格式
func TestMain_InvalidFormat(t *testing.T) {
	binary := buildTestBinary(t)

	cmd := isolatedCommand(t, binary, "spec", "--format", "invalid")
	out, err := cmd.Output()
	exitErr, ok := err.(*exec.ExitError)
	if !ok || exitErr.ExitCode() != 2 {
		t.Fatalf("expected exit 2, got %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(out, &resp); err == nil {
		if ok, _ := resp["ok"].(bool); ok {
			t.Error("expected ok=false for invalid format")
		}
	}
}

// TestMain_Help 测试帮助
func TestMain_Help(t *testing.T) {
	binary := buildTestBinary(t)

	var stderr bytes.Buffer
	cmd := isolatedCommand(t, binary, "--help")
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("help command failed: %v\n%s", err, stderr.String())
	}
	if !strings.Contains(string(out), "just") || !strings.Contains(string(out), "ext") {
		t.Errorf("unexpected help output: %s", out)
	}
}

func buildTestBinary(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "just_test_binary")
	if isWindows() {
		tmpFile += ".exe"
	}

	cmd := exec.Command("go", "build", "-o", tmpFile, ".")
	cmd.Dir = "."
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("failed to build test binary: %v\n%s", err, out)
	}

	return tmpFile
}

func isWindows() bool {
	return os.PathSeparator == '\\'
}
