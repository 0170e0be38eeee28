package pdf2zh

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"

	"duplex/internal/config"
)

var commandContext = exec.CommandContext

// Request describes one engine invocation.
type Request struct {
	InputPath   string
	OutputDir   string
	OCRFallback bool
}

// Engine defines the external translation engine behaviour.
type Engine interface {
	Translate(ctx context.Context, req Request) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the configured binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the pdf2zh command-line translation engine.
type CLI struct {
	binary        string
	langIn        string
	langOut       string
	watermarkMode string
	service       string
	model         string
	apiKey        string
	baseURL       string
	qps           int
}

// NewCLI constructs a CLI client from engine configuration.
func NewCLI(cfg config.Engine, opts ...Option) *CLI {
	cli := &CLI{
		binary:        cfg.Binary,
		langIn:        cfg.LangIn,
		langOut:       cfg.LangOut,
		watermarkMode: cfg.WatermarkMode,
		service:       cfg.Service,
		model:         cfg.Model,
		apiKey:        cfg.APIKey,
		baseURL:       cfg.BaseURL,
		qps:           cfg.QPSLimit,
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Translate launches the engine synchronously, discarding its output. The
// caller owns retry policy and output discovery.
func (c *CLI) Translate(ctx context.Context, req Request) error {
	if req.InputPath == "" {
		return errors.New("input path required")
	}
	if req.OutputDir == "" {
		return errors.New("output directory required")
	}

	args := c.buildArgs(req)
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	cmd.Dir = req.OutputDir
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("pdf2zh translate: %w", ctx.Err())
		}
		return fmt.Errorf("pdf2zh translate: %w", err)
	}
	return nil
}

// buildArgs assembles the fixed engine argument contract: mono-only output,
// explicit language pair, watermark mode, rate limit, glossary extraction
// disabled, and exactly one backend-selection group per the service tier.
func (c *CLI) buildArgs(req Request) []string {
	args := []string{
		"--no-dual",
		"--lang-in", c.langIn,
		"--lang-out", c.langOut,
		"--watermark-output-mode", c.watermarkMode,
		"--qps", strconv.Itoa(c.qps),
		"--no-auto-extract-glossary",
		"--output", req.OutputDir,
	}
	if req.OCRFallback {
		args = append(args, "--ocr-workaround")
	}
	switch c.service {
	case config.ServicePro:
		args = append(args, "--siliconflow", "--siliconflow-model", c.model)
		if c.apiKey != "" {
			args = append(args, "--siliconflow-api-key", c.apiKey)
		}
		if c.baseURL != "" {
			args = append(args, "--siliconflow-base", c.baseURL)
		}
	default:
		args = append(args, "--siliconflowfree")
	}
	args = append(args, req.InputPath)
	return args
}

var _ Engine = (*CLI)(nil)
