package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Document is a read-only snapshot of a PDF taken at scan time. External
// processes mutate the filesystem between pipeline stages, so anything beyond
// these fields is re-read on demand through a Store.
type Document struct {
	Path      string
	SizeBytes int64
	ModTime   time.Time
}

// Snapshot stats path and captures the scan-time view of the file.
func Snapshot(path string) (Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Document{}, fmt.Errorf("stat %s: %w", path, err)
	}
	return Document{
		Path:      path,
		SizeBytes: info.Size(),
		ModTime:   info.ModTime(),
	}, nil
}

// Name returns the base filename.
func (d Document) Name() string {
	return filepath.Base(d.Path)
}

// Stem returns the base filename without its extension.
func (d Document) Stem() string {
	name := d.Name()
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Dir returns the containing directory.
func (d Document) Dir() string {
	return filepath.Dir(d.Path)
}
