package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors classifying per-file failures. The orchestrator matches on
// these with errors.Is to pick an outcome; only an exhausted engine invocation
// (ErrExternalTool after the retry) mutates the failure ledger.
var (
	ErrExternalTool    = errors.New("external tool error")
	ErrStructural      = errors.New("structural mismatch")
	ErrLockedTarget    = errors.New("locked target")
	ErrUnreadableInput = errors.New("unreadable input")
	ErrValidation      = errors.New("validation error")
	ErrConfiguration   = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later outcome classification. The marker should
// be one of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
