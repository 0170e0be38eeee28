package pdf2zh

import (
	"slices"
	"strings"
	"testing"

	"duplex/internal/config"
)

func baseEngineConfig() config.Engine {
	return config.Engine{
		Binary:        "pdf2zh",
		LangIn:        "en",
		LangOut:       "zh",
		Service:       config.ServiceFree,
		WatermarkMode: "no_watermark",
		QPSLimit:      4,
	}
}

func TestBuildArgsFreeTier(t *testing.T) {
	cli := NewCLI(baseEngineConfig())
	args := cli.buildArgs(Request{InputPath: "/pdfs/in.pdf", OutputDir: "/pdfs"})

	wantPrefix := []string{
		"--no-dual",
		"--lang-in", "en",
		"--lang-out", "zh",
		"--watermark-output-mode", "no_watermark",
		"--qps", "4",
		"--no-auto-extract-glossary",
		"--output", "/pdfs",
	}
	if !slices.Equal(args[:len(wantPrefix)], wantPrefix) {
		t.Fatalf("args prefix = %v, want %v", args[:len(wantPrefix)], wantPrefix)
	}
	if !slices.Contains(args, "--siliconflowfree") {
		t.Fatal("free tier flag missing")
	}
	if slices.Contains(args, "--siliconflow") {
		t.Fatal("pro tier group present alongside free tier")
	}
	if args[len(args)-1] != "/pdfs/in.pdf" {
		t.Fatalf("input path must be last arg, got %v", args)
	}
	if slices.Contains(args, "--ocr-workaround") {
		t.Fatal("OCR flag present on first attempt")
	}
}

func TestBuildArgsProTier(t *testing.T) {
	cfg := baseEngineConfig()
	cfg.Service = config.ServicePro
	cfg.Model = "deepseek-ai/DeepSeek-V3"
	cfg.APIKey = "secret"
	cfg.BaseURL = "https://api.example.com"
	cli := NewCLI(cfg)

	args := cli.buildArgs(Request{InputPath: "in.pdf", OutputDir: "/out", OCRFallback: true})

	for _, pair := range [][2]string{
		{"--siliconflow-model", "deepseek-ai/DeepSeek-V3"},
		{"--siliconflow-api-key", "secret"},
		{"--siliconflow-base", "https://api.example.com"},
	} {
		idx := slices.Index(args, pair[0])
		if idx < 0 || idx+1 >= len(args) || args[idx+1] != pair[1] {
			t.Fatalf("args %v missing %v", args, pair)
		}
	}
	if slices.Contains(args, "--siliconflowfree") {
		t.Fatal("free tier flag present alongside pro tier")
	}
	if !slices.Contains(args, "--ocr-workaround") {
		t.Fatal("OCR fallback flag missing on retry request")
	}
}

func TestBuildArgsExactlyOneTierGroup(t *testing.T) {
	for _, service := range []string{config.ServiceFree, config.ServicePro} {
		cfg := baseEngineConfig()
		cfg.Service = service
		cfg.Model = "m"
		args := NewCLI(cfg).buildArgs(Request{InputPath: "a.pdf", OutputDir: "."})

		joined := strings.Join(args, " ")
		free := strings.Contains(joined, "--siliconflowfree")
		pro := strings.Contains(joined, "--siliconflow ")
		if free == pro {
			t.Fatalf("service %s: exactly one tier group required, args %v", service, args)
		}
	}
}

func TestTranslateValidatesRequest(t *testing.T) {
	cli := NewCLI(baseEngineConfig())
	if err := cli.Translate(t.Context(), Request{OutputDir: "/out"}); err == nil {
		t.Fatal("expected error for missing input path")
	}
	if err := cli.Translate(t.Context(), Request{InputPath: "in.pdf"}); err == nil {
		t.Fatal("expected error for missing output dir")
	}
}
