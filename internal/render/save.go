package render

import (
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	"github.com/htrskmiku/solabot/internal/harvest"
)

// SaveOptions selects the output encoding.
type SaveOptions struct {
	Format      string // "png" or "jpeg"
	JPEGQuality int
}

// Save writes an image to path, creating parent directories as needed.
// JPEG output is flattened onto a white background since JPEG carries no
// alpha channel.
func Save(path string, img image.Image, opts SaveOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &harvest.IOError{Op: "mkdir", Path: filepath.Dir(path), Err: err}
	}

	f, err := os.Create(path)
	if err != nil {
		return &harvest.IOError{Op: "create", Path: path, Err: err}
	}
	defer f.Close()

	switch opts.Format {
	case "", "png":
		err = png.Encode(f, img)
	case "jpg", "jpeg":
		quality := opts.JPEGQuality
		if quality <= 0 || quality > 100 {
			quality = jpeg.DefaultQuality
		}
		err = jpeg.Encode(f, flatten(img), &jpeg.Options{Quality: quality})
	default:
		err = fmt.Errorf("unsupported image format %q", opts.Format)
	}
	if err != nil {
		return &harvest.IOError{Op: "encode", Path: path, Err: err}
	}

	if err := f.Close(); err != nil {
		return &harvest.IOError{Op: "close", Path: path, Err: err}
	}
	return nil
}

func flatten(img image.Image) *image.RGBA {
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), image.NewUniform(white), image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Over)
	return out
}
