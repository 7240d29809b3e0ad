package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/aretw0/strider/pkg/adapters/file"
)

// artifactDirs are the sub-directories a mission writes images into, relative to its output dir.
var artifactDirs = []string{".", "from_source", "depth_images"}

// ArtifactsOptions configures the artifact listing.
type ArtifactsOptions struct {
	Dir string
	// Out receives the table. Nil means stdout.
	Out io.Writer
}

// Artifacts lists the images saved under a mission output directory with their dimensions.
// Files that no longer decode are listed as unreadable.
func Artifacts(ctx context.Context, opts ArtifactsOptions) error {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	store := file.New(opts.Dir)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PATH\tSIZE")
	count := 0
	for _, dir := range artifactDirs {
		paths, err := store.List(ctx, dir)
		if err != nil {
			return err
		}
		for _, p := range paths {
			count++
			img, err := store.Load(ctx, p)
			if err != nil {
				fmt.Fprintf(w, "%s\tunreadable\n", p)
				continue
			}
			b := img.Bounds()
			fmt.Fprintf(w, "%s\t%dx%d\n", p, b.Dx(), b.Dy())
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	printSystemMessage(out, "%d artifact(s) in %s", count, opts.Dir)
	return nil
}
