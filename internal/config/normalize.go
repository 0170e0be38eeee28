package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeEngine()
	c.normalizeProbe()
	c.normalizeSkip()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.RootDir, err = expandPath(c.Paths.RootDir); err != nil {
		return fmt.Errorf("paths.root_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeEngine() {
	c.Engine.Binary = strings.TrimSpace(c.Engine.Binary)
	if c.Engine.Binary == "" {
		c.Engine.Binary = defaultEngineBinary
	}
	c.Engine.LangIn = strings.ToLower(strings.TrimSpace(c.Engine.LangIn))
	c.Engine.LangOut = strings.TrimSpace(c.Engine.LangOut)
	c.Engine.Service = strings.ToLower(strings.TrimSpace(c.Engine.Service))
	if c.Engine.Service == "" {
		c.Engine.Service = defaultService
	}
	c.Engine.WatermarkMode = strings.TrimSpace(c.Engine.WatermarkMode)
	if c.Engine.WatermarkMode == "" {
		c.Engine.WatermarkMode = defaultWatermarkMode
	}
	c.Engine.Model = strings.TrimSpace(c.Engine.Model)
	c.Engine.BaseURL = strings.TrimSpace(c.Engine.BaseURL)
	c.Engine.APIKey = strings.TrimSpace(c.Engine.APIKey)
	if c.Engine.APIKey == "" {
		if value, ok := os.LookupEnv("SILICONFLOW_API_KEY"); ok {
			c.Engine.APIKey = strings.TrimSpace(value)
		}
	}
	if c.Engine.QPSLimit <= 0 {
		c.Engine.QPSLimit = defaultQPSLimit
	}
	if c.Engine.PaceSeconds < 0 {
		c.Engine.PaceSeconds = 0
	}
	if c.Engine.TimeoutSeconds <= 0 {
		c.Engine.TimeoutSeconds = defaultEngineTimeout
	}
}

func (c *Config) normalizeProbe() {
	c.Probe.APIKey = strings.TrimSpace(c.Probe.APIKey)
	if c.Probe.APIKey == "" {
		// The classification service shares the engine credential by default.
		c.Probe.APIKey = c.Engine.APIKey
	}
	c.Probe.Model = strings.TrimSpace(c.Probe.Model)
	if c.Probe.Model == "" {
		c.Probe.Model = defaultProbeModel
	}
	c.Probe.BaseURL = strings.TrimSpace(c.Probe.BaseURL)
	if c.Probe.BaseURL == "" {
		c.Probe.BaseURL = defaultProbeBaseURL
	}
	if c.Probe.SamplePages <= 0 {
		c.Probe.SamplePages = defaultProbeSamplePages
	}
	if c.Probe.DPI <= 0 {
		c.Probe.DPI = defaultProbeDPI
	}
	c.Probe.Detail = strings.ToLower(strings.TrimSpace(c.Probe.Detail))
	switch c.Probe.Detail {
	case "low", "high", "auto":
	default:
		c.Probe.Detail = defaultProbeDetail
	}
	if c.Probe.TimeoutSeconds <= 0 {
		c.Probe.TimeoutSeconds = defaultProbeTimeout
	}
	c.Probe.RendererBinary = strings.TrimSpace(c.Probe.RendererBinary)
	if c.Probe.RendererBinary == "" {
		c.Probe.RendererBinary = defaultRendererBinary
	}
}

func (c *Config) normalizeSkip() {
	if c.Skip.MaxSizeBytes <= 0 {
		c.Skip.MaxSizeBytes = defaultMaxSizeBytes
	}
	if c.Skip.PageCeiling <= 0 {
		c.Skip.PageCeiling = defaultPageCeiling
	}
	keywords := make([]string, 0, len(c.Skip.Keywords))
	seen := make(map[string]struct{}, len(c.Skip.Keywords))
	for _, keyword := range c.Skip.Keywords {
		normalized := strings.ToLower(strings.TrimSpace(keyword))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		keywords = append(keywords, normalized)
	}
	c.Skip.Keywords = keywords
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// ExpandPath resolves ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			trimmed = home
		} else {
			trimmed = filepath.Join(home, trimmed[2:])
		}
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return abs, nil
}
