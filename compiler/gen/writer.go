package gen

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
)

// FileWriter is the file system surface used by the pipeline.
type FileWriter interface {
	// EnsureDir creates a directory and all missing parents.
	EnsureDir(dir string) error
	// WriteFile creates or replaces a file.
	WriteFile(path string, data []byte) error
	// DeleteFile removes a file.
	DeleteFile(path string) error
	// ListFiles returns all regular files under root whose name ends with
	// one of the suffixes, in lexical order. A missing root yields nothing.
	ListFiles(root string, suffixes ...string) ([]string, error)
}

// FSWriter implements FileWriter on an afero file system.
type FSWriter struct {
	fs afero.Fs

	// Metrics for performance monitoring
	mu      sync.Mutex
	metrics WriterMetrics
}

// WriterMetrics tracks file system activity.
type WriterMetrics struct {
	FilesWritten int
	FilesDeleted int
	TotalBytes   int64
	WriteTime    int64 // nanoseconds
}

// Since returns the activity recorded after prev was taken.
func (m WriterMetrics) Since(prev WriterMetrics) WriterMetrics {
	return WriterMetrics{
		FilesWritten: m.FilesWritten - prev.FilesWritten,
		FilesDeleted: m.FilesDeleted - prev.FilesDeleted,
		TotalBytes:   m.TotalBytes - prev.TotalBytes,
		WriteTime:    m.WriteTime - prev.WriteTime,
	}
}

var _ FileWriter = (*FSWriter)(nil)

// NewFSWriter creates a writer on fs.
func NewFSWriter(fs afero.Fs) *FSWriter {
	return &FSWriter{fs: fs}
}

// Metrics returns a snapshot of the writer metrics.
func (w *FSWriter) Metrics() WriterMetrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.metrics
}

// EnsureDir implements FileWriter.
func (w *FSWriter) EnsureDir(dir string) error {
	if err := w.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}

// WriteFile implements FileWriter.
func (w *FSWriter) WriteFile(path string, data []byte) error {
	start := time.Now()
	if err := afero.WriteFile(w.fs, path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	w.mu.Lock()
	w.metrics.FilesWritten++
	w.metrics.TotalBytes += int64(len(data))
	w.metrics.WriteTime += int64(time.Since(start))
	w.mu.Unlock()
	return nil
}

// DeleteFile implements FileWriter.
func (w *FSWriter) DeleteFile(path string) error {
	if err := w.fs.Remove(path); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	w.mu.Lock()
	w.metrics.FilesDeleted++
	w.mu.Unlock()
	return nil
}

// ListFiles implements FileWriter.
func (w *FSWriter) ListFiles(root string, suffixes ...string) ([]string, error) {
	var files []string
	err := afero.Walk(w.fs, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			if path == root && errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if info.IsDir() || !hasSuffix(info.Name(), suffixes) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("list %s: %w", root, err)
	}
	slices.Sort(files)
	return files, nil
}

func hasSuffix(name string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}
