package document

import (
	"path/filepath"
	"strings"
)

// MetaAttachmentName is the embedded-file name carrying provenance metadata.
const MetaAttachmentName = "duplex.meta.json"

const (
	backupSuffix  = "_original.pdf"
	sidecarSuffix = ".merged-sidecar.pdf"
)

// BackupPath returns the sibling backup filename for path:
// Paper.pdf -> Paper_original.pdf.
func BackupPath(path string) string {
	return filepath.Join(filepath.Dir(path), stem(path)+"_original.pdf")
}

// MonoPath returns the engine's expected single-language output for path:
// Paper.pdf -> Paper.no_watermark.zh.mono.pdf.
func MonoPath(path, langOut string) string {
	return filepath.Join(filepath.Dir(path), stem(path)+".no_watermark."+langOut+".mono.pdf")
}

// MonoGlob returns a glob matching any mono rendering of path, regardless of
// how the engine spelled the infix.
func MonoGlob(path string) string {
	return filepath.Join(filepath.Dir(path), stem(path)+"*mono.pdf")
}

// SidecarPath returns the degraded output filename used when the canonical
// target cannot be overwritten: Paper.pdf -> Paper.merged-sidecar.pdf.
func SidecarPath(path string) string {
	return filepath.Join(filepath.Dir(path), stem(path)+".merged-sidecar.pdf")
}

// IsArtifact reports whether name matches one of the pipeline's own output
// conventions (backups, intermediate mono/dual renderings, sidecars). Such
// files never re-enter the pipeline as inputs.
func IsArtifact(name string) bool {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, backupSuffix):
		return true
	case strings.HasSuffix(lower, ".mono.pdf"):
		return true
	case strings.HasSuffix(lower, ".dual.pdf"):
		return true
	case strings.HasSuffix(lower, sidecarSuffix):
		return true
	}
	return false
}

func stem(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
