package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args []string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigInitWritesSample(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "config.toml")

	out, err := runCLI(t, []string{"config", "init", "--path", target})
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "Wrote sample configuration") {
		t.Fatalf("unexpected output: %s", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, err := runCLI(t, []string{"config", "init", "--path", target}); err == nil {
		t.Fatal("second init without --overwrite must fail")
	}
	if _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}); err != nil {
		t.Fatalf("init --overwrite: %v", err)
	}
}

func TestInspectRejectsMissingFile(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := writeTestConfig(t, tmp)

	_, err := runCLI(t, []string{"--config", cfgPath, "inspect", filepath.Join(tmp, "missing.pdf")})
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func writeTestConfig(t *testing.T, base string) string {
	t.Helper()
	root := filepath.Join(base, "pdfs")
	logs := filepath.Join(base, "logs")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	content := "[paths]\nroot_dir = \"" + root + "\"\nlog_dir = \"" + logs + "\"\n\n[engine]\napi_key = \"test\"\n\n[probe]\napi_key = \"test\"\n"
	path := filepath.Join(base, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
