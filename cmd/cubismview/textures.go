package main

import (
	"context"
	"fmt"
	"image"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

// maxParallelDecodes bounds concurrent texture decodes.
const maxParallelDecodes = 4

// loadImages decodes every path concurrently and returns the images in
// argument order. The first failure cancels the remaining decodes.
func loadImages(ctx context.Context, paths []string) ([]image.Image, error) {
	imgs := make([]image.Image, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelDecodes)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := decodeFile(path)
			if err != nil {
				return err
			}
			imgs[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return imgs, nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode texture %s: %w", path, err)
	}
	return img, nil
}

// mergeImages overlays the loaded images onto the procedural defaults.
func mergeImages(defaults, loaded []image.Image) []image.Image {
	out := append([]image.Image(nil), defaults...)
	for i, img := range loaded {
		if i < len(out) {
			out[i] = img
		}
	}
	return out
}
