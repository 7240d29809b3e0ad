package file

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/strider/pkg/domain"
)

// DefaultJPEGQuality is used for .jpg and .jpeg artifacts.
const DefaultJPEGQuality = 90

// Store implements ports.ArtifactStore on the local filesystem.
// The encoding follows the path's extension: .png (default), .jpg or .jpeg.
type Store struct {
	// BasePath is prepended to relative artifact paths. Empty means the working directory.
	BasePath    string
	JPEGQuality int
}

// New creates a new Store rooted at basePath.
func New(basePath string) *Store {
	return &Store{BasePath: basePath, JPEGQuality: DefaultJPEGQuality}
}

func (s *Store) resolve(path string) string {
	if filepath.IsAbs(path) || s.BasePath == "" {
		return path
	}
	return filepath.Join(s.BasePath, path)
}

func (s *Store) encoder(path string) (func(io.Writer, image.Image) error, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", "":
		return png.Encode, nil
	case ".jpg", ".jpeg":
		q := s.JPEGQuality
		if q <= 0 {
			q = DefaultJPEGQuality
		}
		return func(w io.Writer, img image.Image) error {
			return jpeg.Encode(w, img, &jpeg.Options{Quality: q})
		}, nil
	default:
		return nil, fmt.Errorf("%w: artifact extension %q", domain.ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Save encodes img and writes it to path atomically.
// It writes to a temporary file in the destination directory, syncs, and then renames it.
// Parent directories are created as needed.
func (s *Store) Save(ctx context.Context, path string, img image.Image) error {
	if path == "" {
		return fmt.Errorf("artifact path cannot be empty")
	}
	encode, err := s.encoder(path)
	if err != nil {
		return err
	}

	destPath := s.resolve(path)
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure artifact directory: %w", err)
	}

	// Same directory as the destination so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(dir, "tmp-*"+filepath.Ext(destPath))
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if err := encode(tmpFile, img); err != nil {
		return fmt.Errorf("failed to encode artifact: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing artifact for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to artifact: %w", err)
	}
	return nil
}

// Load decodes the artifact at path.
func (s *Store) Load(ctx context.Context, path string) (image.Image, error) {
	f, err := os.Open(s.resolve(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDecodeFailed, err)
	}
	return img, nil
}

// List returns the artifact paths under dir, relative to BasePath.
func (s *Store) List(ctx context.Context, dir string) ([]string, error) {
	entries, err := os.ReadDir(s.resolve(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), "tmp-") {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".png", ".jpg", ".jpeg":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	return paths, nil
}
