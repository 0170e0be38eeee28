// Package deps checks the availability of the external binaries a run
// depends on before any document is touched.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"duplex/internal/config"
)

// Requirement defines an external binary duplex relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// ForConfig returns the requirements implied by cfg. The renderer is only
// required while the language probe rule is enabled; without the probe it
// is reported as optional so a missing pdftoppm does not block a run.
func ForConfig(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "Translation engine",
			Command:     cfg.Engine.Binary,
			Description: "produces the translated document",
		},
		{
			Name:        "Page renderer",
			Command:     cfg.Probe.RendererBinary,
			Description: "rasterizes sample pages for language classification",
			Optional:    !cfg.Skip.LanguageProbe,
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// MissingRequired filters statuses down to unavailable, non-optional entries.
func MissingRequired(statuses []Status) []Status {
	var missing []Status
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status)
		}
	}
	return missing
}
