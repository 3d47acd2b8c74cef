package filesystem

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

// RasterFileMode is the permission every written raster ends up with.
const RasterFileMode os.FileMode = 0o644

// RasterStore implements ports.RasterSink on an afero filesystem.
// Writes go to a temporary file in the target directory and are renamed
// into place, so readers never observe a partial raster and a failed write
// leaves the previous file untouched.
type RasterStore struct {
	fs afero.Fs
	mu sync.Mutex
}

// NewRasterStore wraps fs; a nil fs means the OS filesystem.
func NewRasterStore(fs afero.Fs) *RasterStore {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &RasterStore{fs: fs}
}

// WriteRaster replaces the file at path with data.
func (s *RasterStore) WriteRaster(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(path)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := afero.TempFile(s.fs, dir, ".raster-*.tmp")
	if err != nil {
		return fmt.Errorf("temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	// temp files are created 0600
	if err := s.fs.Chmod(tmpName, RasterFileMode); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := s.fs.Rename(tmpName, path); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}

// OpenRaster opens the raster at path for reading along with its size.
func (s *RasterStore) OpenRaster(path string) (io.ReadCloser, int64, error) {
	f, err := s.fs.Open(path)
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, err
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, 0, &os.PathError{Op: "open", Path: path, Err: os.ErrInvalid}
	}
	return f, info.Size(), nil
}
