package refdata

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writeBundle(t *testing.T, dir, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, BundleFile), []byte(body), 0o644); err != nil {
		t.Fatalf("writing bundle: %v", err)
	}
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
}

const sampleBundle = `
scenes:
  scene1:
    image_path: ./img/scene1.png
    physical_width: 24
    offset_x: 10
    offset_y: -5
    x_direction: x-
    y_direction: y+
    reverse_xy: true
fixture_colors:
  100: "#ff8800"
item_textures:
  material:
    1: ./icon/material_1.png
rare_items:
  material: [2]
super_rare_items:
  material: [3]
`

func TestLoad_ParsesBundle(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, sampleBundle)

	b, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	scene := b.Scene("scene1")
	if scene.PhysicalWidth != 24 || scene.XDirection != XNegative || !scene.ReverseXY {
		t.Fatalf("scene1 = %+v", scene)
	}
	if c, ok := b.FixtureColor(100); !ok || c != "#ff8800" {
		t.Fatalf("FixtureColor(100) = %q, %v", c, ok)
	}
	if _, ok := b.FixtureColor(999); ok {
		t.Fatal("unexpected color for unmapped fixture")
	}
}

func TestLoad_AbsentBundleDegrades(t *testing.T) {
	b, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if b.IsRare("material", 2) {
		t.Fatal("empty bundle must not rank anything rare")
	}
	if got := b.LabelForScene("scene1"); got != "さいしょの原っぱ" {
		t.Fatalf("default scene1 label = %q", got)
	}
	if got := b.LabelForScene("scene4"); got != "忘れ去られた場所" {
		t.Fatalf("default scene4 label = %q", got)
	}
}

func TestItemRarity_TierPriority(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, sampleBundle)
	b, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := b.ItemRarity("material", 1); got != Common {
		t.Fatalf("material/1 rarity = %v, want Common", got)
	}
	if got := b.ItemRarity("material", 2); got != Rare {
		t.Fatalf("material/2 rarity = %v, want Rare", got)
	}
	if got := b.ItemRarity("material", 3); got != SuperRare {
		t.Fatalf("material/3 rarity = %v, want SuperRare", got)
	}
	if b.IsRare("unknown_category", 1) {
		t.Fatal("unknown category must not be rare")
	}
}

func TestTextureRef_MusicRecordAndMissing(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, sampleBundle)
	b, _ := Load(dir)

	if got := b.TextureRef("material", 1); got != "./icon/material_1.png" {
		t.Fatalf("TextureRef(material,1) = %q", got)
	}
	// Every music record shares one texture under the Texture2D subdir.
	if got := b.TextureRef("mysekai_music_record", 77); got != "./icon/Texture2D/item_surplus_music_record.png" {
		t.Fatalf("music record ref = %q", got)
	}

	writePNG(t, filepath.Join(dir, "icon", "Texture2D", "item_surplus_music_record.png"))
	ref := b.TextureRef("mysekai_music_record", 77)
	if got := b.ResolveTexture(ref); got != filepath.Join(dir, "icon", "Texture2D", "item_surplus_music_record.png") {
		t.Fatalf("music record did not resolve inside the bundle: %q", got)
	}
	if got := b.TextureRef("material", 404); got != "./missing.png" {
		t.Fatalf("unmapped ref = %q", got)
	}
}

func TestResolveTexture_FallbackChain(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, sampleBundle)
	writePNG(t, filepath.Join(dir, "icon", "material_1.png"))
	writePNG(t, filepath.Join(dir, "missing.png"))
	b, _ := Load(dir)

	// Bundle-relative reference resolves.
	if got := b.ResolveTexture("./icon/material_1.png"); got != filepath.Join(dir, "icon", "material_1.png") {
		t.Fatalf("bundle-relative resolve = %q", got)
	}
	// Base-name lookup in the icon dir.
	if got := b.ResolveTexture("./somewhere/else/material_1.png"); got != filepath.Join(dir, "icon", "material_1.png") {
		t.Fatalf("basename resolve = %q", got)
	}
	// Nothing matches: missing.png.
	if got := b.ResolveTexture("./nope.png"); got != filepath.Join(dir, "missing.png") {
		t.Fatalf("missing fallback = %q", got)
	}

	// No missing.png either: empty result, caller draws a placeholder.
	bare, _ := Load(t.TempDir())
	if got := bare.ResolveTexture("./nope.png"); got != "" {
		t.Fatalf("bare bundle resolve = %q", got)
	}
}

func TestBackgroundImage_Fallback(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, sampleBundle)
	b, _ := Load(dir)

	// Configured image absent, img dir holds another PNG.
	writePNG(t, filepath.Join(dir, "img", "other.png"))
	if got := b.BackgroundImage("scene1"); got != filepath.Join(dir, "img", "other.png") {
		t.Fatalf("img-dir fallback = %q", got)
	}

	// Configured image present wins.
	writePNG(t, filepath.Join(dir, "img", "scene1.png"))
	if got := b.BackgroundImage("scene1"); got != filepath.Join(dir, "img", "scene1.png") {
		t.Fatalf("configured background = %q", got)
	}

	// Nothing at all: empty, renderer blanks the canvas.
	bare, _ := Load(t.TempDir())
	if got := bare.BackgroundImage("scene1"); got != "" {
		t.Fatalf("bare background = %q", got)
	}
}
