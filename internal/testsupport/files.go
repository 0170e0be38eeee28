package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates a file with the given content under dir, creating parent
// directories as needed, and returns its path.
func WriteFile(t testing.TB, dir, name string, content []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WritePDFStub creates a placeholder file standing in for a PDF input. The
// bytes are arbitrary; tests exercising real parsing use a fake store instead.
func WritePDFStub(t testing.TB, dir, name string) string {
	t.Helper()
	return WriteFile(t, dir, name, []byte("%PDF-1.7\nstub\n%%EOF\n"))
}
