package ports

import (
	"context"
	"image"
)

// ArtifactStore persists output images.
type ArtifactStore interface {
	// Save writes img to path, creating parent directories as needed.
	// The encoding is chosen from the path extension.
	Save(ctx context.Context, path string, img image.Image) error
}
