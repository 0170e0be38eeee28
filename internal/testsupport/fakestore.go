package testsupport

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"duplex/internal/document"
)

// FakeStore is an in-memory document.Store for tests. Page counts and
// embedded files are keyed by path; compose writes a real file so downstream
// rename logic can run against the filesystem.
type FakeStore struct {
	mu sync.Mutex

	PageCounts map[string]int
	Dims       map[string][]document.PageDim
	Embedded   map[string]map[string][]byte

	// Errors injected per operation, keyed by path.
	PageCountErr map[string]error
	ComposeErr   error

	ComposeCalls []ComposeCall
	Attached     []AttachCall
	Regions      []string
}

// ComposeCall records one ComposeSideBySide invocation.
type ComposeCall struct {
	Left, Right, Out string
	Gap              float64
}

// AttachCall records one attachment write.
type AttachCall struct {
	Path, Name string
	Bytes      int
}

// NewFakeStore returns an empty fake store.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		PageCounts:   map[string]int{},
		Dims:         map[string][]document.PageDim{},
		Embedded:     map[string]map[string][]byte{},
		PageCountErr: map[string]error{},
	}
}

func (f *FakeStore) PageCount(_ context.Context, path string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.PageCountErr[path]; ok {
		return 0, err
	}
	count, ok := f.PageCounts[path]
	if !ok {
		return 0, fmt.Errorf("fake store: no page count for %s", path)
	}
	return count, nil
}

func (f *FakeStore) PageDims(_ context.Context, path string) ([]document.PageDim, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if dims, ok := f.Dims[path]; ok {
		return dims, nil
	}
	count := f.PageCounts[path]
	dims := make([]document.PageDim, count)
	for i := range dims {
		dims[i] = document.PageDim{Width: 612, Height: 792}
	}
	return dims, nil
}

func (f *FakeStore) ReadEmbeddedFile(_ context.Context, path, name string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	files, ok := f.Embedded[path]
	if !ok {
		return nil, false, nil
	}
	data, ok := files[name]
	return data, ok, nil
}

func (f *FakeStore) AttachBytes(_ context.Context, path, name string, data []byte, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Embedded[path] == nil {
		f.Embedded[path] = map[string][]byte{}
	}
	f.Embedded[path][name] = append([]byte(nil), data...)
	f.Attached = append(f.Attached, AttachCall{Path: path, Name: name, Bytes: len(data)})
	return nil
}

func (f *FakeStore) AttachFile(ctx context.Context, path, srcPath, desc string) error {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return err
	}
	return f.AttachBytes(ctx, path, filepath.Base(srcPath), data, desc)
}

func (f *FakeStore) AddOpenAttachmentRegion(_ context.Context, path, attachmentName, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Regions = append(f.Regions, path+"#"+attachmentName)
	return nil
}

func (f *FakeStore) ComposeSideBySide(_ context.Context, leftPath, rightPath, outPath string, gap float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ComposeCalls = append(f.ComposeCalls, ComposeCall{Left: leftPath, Right: rightPath, Out: outPath, Gap: gap})
	if f.ComposeErr != nil {
		return f.ComposeErr
	}
	if err := os.WriteFile(outPath, []byte("%PDF-1.7\nmerged\n%%EOF\n"), 0o644); err != nil {
		return err
	}
	left := f.PageCounts[leftPath]
	f.PageCounts[outPath] = left
	return nil
}

var _ document.Store = (*FakeStore)(nil)

// SetEmbedded seeds an embedded file on a path.
func (f *FakeStore) SetEmbedded(path, name string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Embedded[path] == nil {
		f.Embedded[path] = map[string][]byte{}
	}
	f.Embedded[path][name] = data
}
