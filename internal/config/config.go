package config

import (
	_ "embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	RootDir string `toml:"root_dir"`
	LogDir  string `toml:"log_dir"`
}

// Engine contains configuration for the external translation engine.
type Engine struct {
	Binary         string `toml:"binary"`
	LangIn         string `toml:"lang_in"`
	LangOut        string `toml:"lang_out"`
	Service        string `toml:"service"`
	Model          string `toml:"model"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	WatermarkMode  string `toml:"watermark_mode"`
	QPSLimit       int    `toml:"qps_limit"`
	PaceSeconds    int    `toml:"pace_seconds"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Probe contains configuration for the visual language classification service.
type Probe struct {
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	BaseURL        string `toml:"base_url"`
	SamplePages    int    `toml:"sample_pages"`
	DPI            int    `toml:"dpi"`
	Detail         string `toml:"detail"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	RendererBinary string `toml:"renderer_binary"`
}

// Skip contains the per-rule toggles and parameters for the skip-rule engine.
type Skip struct {
	TranslatedMetadata bool     `toml:"translated_metadata"`
	MaxFileSize        bool     `toml:"max_file_size"`
	MaxSizeBytes       int64    `toml:"max_size_bytes"`
	MaxPages           bool     `toml:"max_pages"`
	PageCeiling        int      `toml:"page_ceiling"`
	FilenameFormat     bool     `toml:"filename_format"`
	FilenameScript     bool     `toml:"filename_script"`
	KeywordFilter      bool     `toml:"keyword_filter"`
	Keywords           []string `toml:"keywords"`
	LanguageProbe      bool     `toml:"language_probe"`
}

// Merge contains configuration for the page composer.
type Merge struct {
	GapPt float64 `toml:"gap_pt"`
}

// Cleanup contains post-processing configuration.
type Cleanup struct {
	DeleteMono           bool `toml:"delete_mono"`
	DeleteAllExceptFinal bool `toml:"delete_all_except_final"`
	SuppressSkipped      bool `toml:"suppress_skipped"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for duplex.
//
// Configuration sections by subsystem:
//   - Paths: scan root and log/state directory
//   - Engine: external translation engine contract and service tier
//   - Probe: visual language classification service
//   - Skip: skip-rule toggles and thresholds
//   - Merge: side-by-side composition parameters
//   - Cleanup: intermediate/backup artifact removal
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Engine  Engine  `toml:"engine"`
	Probe   Probe   `toml:"probe"`
	Skip    Skip    `toml:"skip"`
	Merge   Merge   `toml:"merge"`
	Cleanup Cleanup `toml:"cleanup"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/duplex/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if os.IsNotExist(err) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if _, err := os.Stat(defaultPath); err != nil {
		if os.IsNotExist(err) {
			return defaultPath, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	return defaultPath, true, nil
}

// WriteSample writes the embedded sample configuration to path, refusing to
// clobber an existing file unless force is set.
func WriteSample(path string, force bool) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if !force {
		if _, err := os.Stat(expanded); err == nil {
			return fmt.Errorf("config file already exists at %s (use --force to overwrite)", expanded)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("stat config: %w", err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("ensure config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), fs.FileMode(0o644)); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// EnsureDirectories creates the directories the pipeline relies on.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}
