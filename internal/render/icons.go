package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"

	"github.com/dgraph-io/ristretto/v2"
	xdraw "golang.org/x/image/draw"

	"github.com/htrskmiku/solabot/internal/refdata"
)

// IconSize is the edge length every item icon is scaled to.
const IconSize = 40

// IconSet resolves and caches item icons at display size. A broken or
// missing texture yields a flat placeholder; icon lookup never fails.
type IconSet struct {
	bundle *refdata.Bundle
	cache  *ristretto.Cache[string, *image.RGBA]
}

// NewIconSet creates an IconSet over the reference bundle.
func NewIconSet(bundle *refdata.Bundle) (*IconSet, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, *image.RGBA]{
		NumCounters: 10000,
		MaxCost:     32 * 1024 * 1024,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("creating icon cache: %w", err)
	}
	return &IconSet{bundle: bundle, cache: cache}, nil
}

// Icon returns the display-size icon for an item, never nil.
func (s *IconSet) Icon(resourceType string, resourceID int) *image.RGBA {
	ref := s.bundle.TextureRef(resourceType, resourceID)
	path := s.bundle.ResolveTexture(ref)
	if path == "" {
		return placeholderIcon()
	}

	if icon, ok := s.cache.Get(path); ok {
		return icon
	}

	icon, err := loadScaledIcon(path)
	if err != nil {
		slog.Debug("icon load failed, using placeholder", "path", path, "err", err)
		icon = placeholderIcon()
	}
	s.cache.Set(path, icon, int64(IconSize*IconSize*4))
	s.cache.Wait()
	return icon
}

func loadScaledIcon(path string) (*image.RGBA, error) {
	src, err := loadImage(path)
	if err != nil {
		return nil, err
	}
	dst := image.NewRGBA(image.Rect(0, 0, IconSize, IconSize))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	return dst, nil
}

// loadImage decodes a PNG or JPEG file into an RGBA image.
func loadImage(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image %s: %w", path, err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding image %s: %w", path, err)
	}

	if rgba, ok := src.(*image.RGBA); ok {
		return rgba, nil
	}
	rgba := image.NewRGBA(src.Bounds())
	draw.Draw(rgba, rgba.Bounds(), src, src.Bounds().Min, draw.Src)
	return rgba, nil
}

func placeholderIcon() *image.RGBA {
	icon := image.NewRGBA(image.Rect(0, 0, IconSize, IconSize))
	draw.Draw(icon, icon.Bounds(), image.NewUniform(color.RGBA{R: 200, G: 200, B: 200, A: 255}), image.Point{}, draw.Src)
	return icon
}
