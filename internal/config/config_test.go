package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	cfg.Paths.RootDir = t.TempDir()
	cfg.Engine.APIKey = "test-key"
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Probe.APIKey != "test-key" {
		t.Fatalf("probe api key should fall back to engine key, got %q", cfg.Probe.APIKey)
	}
}

func TestLoadParsesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
root_dir = "` + dir + `"

[engine]
lang_in = "en"
lang_out = "zh"
service = "siliconflow_pro"
model = "deepseek-ai/DeepSeek-V3"
api_key = "secret"
qps_limit = 7

[skip]
keywords = ["Slides", " slides ", "", "notes"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be detected")
	}
	if resolved != path {
		t.Fatalf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Engine.QPSLimit != 7 {
		t.Fatalf("qps_limit = %d, want 7", cfg.Engine.QPSLimit)
	}
	if cfg.Engine.Service != ServicePro {
		t.Fatalf("service = %q, want %q", cfg.Engine.Service, ServicePro)
	}
	want := []string{"slides", "notes"}
	if len(cfg.Skip.Keywords) != len(want) {
		t.Fatalf("keywords = %v, want %v", cfg.Skip.Keywords, want)
	}
	for i, keyword := range want {
		if cfg.Skip.Keywords[i] != keyword {
			t.Fatalf("keywords[%d] = %q, want %q", i, cfg.Skip.Keywords[i], keyword)
		}
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{
			name:    "bad lang tag",
			mutate:  func(c *Config) { c.Engine.LangIn = "not a tag" },
			wantSub: "engine.lang_in",
		},
		{
			name:    "unknown service",
			mutate:  func(c *Config) { c.Engine.Service = "acme" },
			wantSub: "engine.service",
		},
		{
			name:    "pro tier without model",
			mutate:  func(c *Config) { c.Engine.Service = ServicePro; c.Engine.Model = "" },
			wantSub: "engine.model",
		},
		{
			name:    "negative gap",
			mutate:  func(c *Config) { c.Merge.GapPt = -1 },
			wantSub: "merge.gap_pt",
		},
		{
			name:    "probe without key",
			mutate:  func(c *Config) { c.Engine.APIKey = ""; c.Probe.APIKey = "" },
			wantSub: "probe.api_key",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			cfg.Paths.RootDir = t.TempDir()
			cfg.Engine.APIKey = "test-key"
			cfg.Probe.APIKey = "test-key"
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantSub) {
				t.Fatalf("error %q does not mention %q", err, tc.wantSub)
			}
		})
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := WriteSample(path, false); err != nil {
		t.Fatalf("first WriteSample: %v", err)
	}
	if err := WriteSample(path, false); err == nil {
		t.Fatal("expected overwrite refusal")
	}
	if err := WriteSample(path, true); err != nil {
		t.Fatalf("forced WriteSample: %v", err)
	}
}

func TestExpandPathTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	got, err := expandPath("~/duplex-test")
	if err != nil {
		t.Fatalf("expandPath: %v", err)
	}
	if got != filepath.Join(home, "duplex-test") {
		t.Fatalf("expandPath = %q", got)
	}
}
