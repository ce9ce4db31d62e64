// render draws the composite map and resource overview from a parsed
// inventory file, without running the full service.
//
// Usage:
//
//	go run ./cmd/render -in dynamic/mysekai/parsed/jp_42.json
//	go run ./cmd/render -in jp_42.json -only-rare -out-map map.png -out-overview overview.png
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/htrskmiku/solabot/internal/harvest"
	"github.com/htrskmiku/solabot/internal/refdata"
	"github.com/htrskmiku/solabot/internal/render"
)

func main() {
	in := flag.String("in", "", "parsed inventory JSON file (required)")
	outMap := flag.String("out-map", "", "composite map output (default <in>_map.png)")
	outOverview := flag.String("out-overview", "", "overview output (default <in>_overview.png)")
	bundleDir := flag.String("bundle", "bundle", "reference bundle directory")
	onlyRare := flag.Bool("only-rare", false, "show only rare and super-rare items")
	maxWidth := flag.Int("max-width", 1000, "overview max width in pixels")
	format := flag.String("format", "png", "output format: png or jpeg")
	quality := flag.Int("quality", 90, "jpeg quality")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*in, *outMap, *outOverview, *bundleDir, *onlyRare, *maxWidth, *format, *quality); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(in, outMap, outOverview, bundleDir string, onlyRare bool, maxWidth int, format string, quality int) error {
	inv, err := harvest.LoadInventory(in)
	if err != nil {
		return fmt.Errorf("loading inventory: %w", err)
	}

	bundle, err := refdata.Load(bundleDir)
	if err != nil {
		return fmt.Errorf("loading reference bundle: %w", err)
	}
	r, err := render.NewRenderer(bundle)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	ext := ".png"
	if format == "jpg" || format == "jpeg" {
		ext = ".jpg"
	}
	stem := strings.TrimSuffix(in, filepath.Ext(in))
	if outMap == "" {
		outMap = stem + "_map" + ext
	}
	if outOverview == "" {
		outOverview = stem + "_overview" + ext
	}

	opts := render.SaveOptions{Format: format, JPEGQuality: quality}
	if err := render.Save(outMap, r.Composite(inv, onlyRare), opts); err != nil {
		return fmt.Errorf("saving map: %w", err)
	}
	if err := render.Save(outOverview, r.Overview(inv, onlyRare, maxWidth), opts); err != nil {
		return fmt.Errorf("saving overview: %w", err)
	}

	fmt.Printf("map:      %s\n", outMap)
	fmt.Printf("overview: %s\n", outOverview)
	return nil
}
