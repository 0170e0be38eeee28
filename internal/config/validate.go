package config

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"
)

// ServiceFree and ServicePro are the two supported engine service tiers.
// Exactly one backend-selection argument group is derived from this value.
const (
	ServiceFree = "siliconflow_free"
	ServicePro  = "siliconflow_pro"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateEngine(); err != nil {
		return err
	}
	if err := c.validateProbe(); err != nil {
		return err
	}
	if err := c.validateMerge(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.RootDir == "" {
		return errors.New("paths.root_dir must be set")
	}
	return nil
}

func (c *Config) validateEngine() error {
	if _, err := language.Parse(c.Engine.LangIn); err != nil {
		return fmt.Errorf("engine.lang_in %q: %w", c.Engine.LangIn, err)
	}
	if _, err := language.Parse(c.Engine.LangOut); err != nil {
		return fmt.Errorf("engine.lang_out %q: %w", c.Engine.LangOut, err)
	}
	switch c.Engine.Service {
	case ServiceFree:
	case ServicePro:
		if c.Engine.Model == "" {
			return errors.New("engine.model must be set when engine.service is siliconflow_pro")
		}
	default:
		return fmt.Errorf("engine.service must be %q or %q, got %q", ServiceFree, ServicePro, c.Engine.Service)
	}
	if err := ensurePositiveMap(map[string]int{
		"engine.qps_limit":       c.Engine.QPSLimit,
		"engine.timeout_seconds": c.Engine.TimeoutSeconds,
	}); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateProbe() error {
	if !c.Skip.LanguageProbe {
		return nil
	}
	if c.Probe.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/duplex/config.toml"
		}
		return fmt.Errorf("probe.api_key is required when skip.language_probe is enabled. Set SILICONFLOW_API_KEY env var or edit %s (create with 'duplex config init')", defaultPath)
	}
	return ensurePositiveMap(map[string]int{
		"probe.sample_pages":    c.Probe.SamplePages,
		"probe.dpi":             c.Probe.DPI,
		"probe.timeout_seconds": c.Probe.TimeoutSeconds,
	})
}

func (c *Config) validateMerge() error {
	if c.Merge.GapPt < 0 {
		return errors.New("merge.gap_pt must not be negative")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for name, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}
