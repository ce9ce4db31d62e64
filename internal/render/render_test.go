package render

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/htrskmiku/solabot/internal/harvest"
	"github.com/htrskmiku/solabot/internal/refdata"
)

func newTestRenderer(t *testing.T, bundle *refdata.Bundle) *Renderer {
	t.Helper()
	if bundle == nil {
		bundle = &refdata.Bundle{Dir: t.TempDir()}
	}
	if bundle.Dir == "" {
		bundle.Dir = t.TempDir()
	}
	r, err := NewRenderer(bundle)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return r
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

func TestSceneBlankCanvasAndMarker(t *testing.T) {
	r := newTestRenderer(t, &refdata.Bundle{
		FixtureColors: map[int]string{100: "#112233"},
	})

	entries := []harvest.LocationEntry{{
		Location:  harvest.Location{X: 2, Z: 3},
		FixtureID: 100,
		Reward:    harvest.Reward{"material": {7: 4}},
	}}
	img := r.Scene("scene1", entries, false)

	if img.Bounds().Dx() != defaultCanvasW || img.Bounds().Dy() != defaultCanvasH {
		t.Fatalf("canvas = %v, want %dx%d", img.Bounds(), defaultCanvasW, defaultCanvasH)
	}

	// Unit scale 10 on a 1920-wide canvas puts grid (2, 3) at (980, 570).
	if got := img.RGBAAt(980, 570); got != (color.RGBA{R: 0x11, G: 0x22, B: 0x33, A: 255}) {
		t.Errorf("marker center = %v, want fixture color", got)
	}

	// The badge panel sits above the marker and darkens the white canvas.
	if got := img.RGBAAt(980, 530); got == (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("expected a badge panel above the marker, pixel still white")
	}
}

func TestSceneOnlyRareSuppressesCommonBadges(t *testing.T) {
	r := newTestRenderer(t, &refdata.Bundle{
		FixtureColors: map[int]string{100: "#112233"},
	})

	entries := []harvest.LocationEntry{{
		Location:  harvest.Location{X: 2, Z: 3},
		FixtureID: 100,
		Reward:    harvest.Reward{"material": {7: 4}},
	}}
	img := r.Scene("scene1", entries, true)

	// No rare items means no panel, only the marker.
	if got := img.RGBAAt(980, 530); got != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("panel pixel = %v, want untouched white", got)
	}
	if got := img.RGBAAt(980, 570); got != (color.RGBA{R: 0x11, G: 0x22, B: 0x33, A: 255}) {
		t.Errorf("marker center = %v, want fixture color", got)
	}
}

func TestCompositeDefaultSize(t *testing.T) {
	r := newTestRenderer(t, nil)
	img := r.Composite(harvest.SiteInventory{}, false)
	if img.Bounds().Dx() != 2*defaultCanvasW || img.Bounds().Dy() != 2*defaultCanvasH {
		t.Fatalf("composite = %v, want %dx%d", img.Bounds(), 2*defaultCanvasW, 2*defaultCanvasH)
	}
}

func TestCompositeTileSizeFromBackground(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "img", "scene.png"), 100, 80)

	r := newTestRenderer(t, &refdata.Bundle{Dir: dir})
	img := r.Composite(harvest.SiteInventory{}, false)
	if img.Bounds().Dx() != 200 || img.Bounds().Dy() != 160 {
		t.Fatalf("composite = %v, want 200x160", img.Bounds())
	}
}

func TestRewardEntriesDeterministic(t *testing.T) {
	r := newTestRenderer(t, &refdata.Bundle{
		RareItems: map[string][]int{"material": {3}},
	})

	reward := harvest.Reward{
		"material":             {7: 4, 3: 1},
		"mysekai_music_record": {2: 1},
	}

	got := r.rewardEntries(reward, false)
	want := []itemEntry{
		{Type: "material", ID: 3, Qty: 1},
		{Type: "material", ID: 7, Qty: 4},
		{Type: "mysekai_music_record", ID: 2, Qty: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	rare := r.rewardEntries(reward, true)
	if len(rare) != 1 || rare[0] != (itemEntry{Type: "material", ID: 3, Qty: 1}) {
		t.Fatalf("rare-only entries = %+v, want only material/3", rare)
	}
}

func TestTallyOrdersByGlobalTotal(t *testing.T) {
	r := newTestRenderer(t, nil)

	inv := harvest.SiteInventory{
		"scene1": {
			{FixtureID: 1, Reward: harvest.Reward{"material": {7: 5, 3: 2}}},
		},
		"scene2": {
			{FixtureID: 2, Reward: harvest.Reward{"material": {7: 1, 9: 0}}},
		},
	}

	items, perScene := r.tally(inv, false)

	want := []overviewItem{
		{Type: "material", ID: 7, Total: 6},
		{Type: "material", ID: 3, Total: 2},
	}
	if len(items) != len(want) {
		t.Fatalf("got %d items, want %d: %+v", len(items), len(want), items)
	}
	for i := range want {
		if items[i] != want[i] {
			t.Errorf("item %d = %+v, want %+v", i, items[i], want[i])
		}
	}

	if got := perScene["scene1"][itemKey{"material", 7}]; got != 5 {
		t.Errorf("scene1 material/7 = %d, want 5", got)
	}
	if got := perScene["scene2"][itemKey{"material", 7}]; got != 1 {
		t.Errorf("scene2 material/7 = %d, want 1", got)
	}
}

func TestOverviewRespectsMaxWidth(t *testing.T) {
	r := newTestRenderer(t, nil)
	inv := harvest.SiteInventory{
		"scene1": {{FixtureID: 1, Reward: harvest.Reward{"material": {7: 5}}}},
	}

	img := r.Overview(inv, false, 600)
	if img.Bounds().Dx() != 600 {
		t.Fatalf("overview width = %d, want 600", img.Bounds().Dx())
	}
	if img.Bounds().Dy() <= 0 {
		t.Fatalf("overview height = %d, want positive", img.Bounds().Dy())
	}
}

func TestOverviewEmptyInventory(t *testing.T) {
	r := newTestRenderer(t, nil)

	if img := r.Overview(nil, false, 1000); img.Bounds().Dx() != 800 || img.Bounds().Dy() != 200 {
		t.Fatalf("empty overview = %v, want 800x200", img.Bounds())
	}
	if img := r.Overview(nil, false, 300); img.Bounds().Dx() != 400 || img.Bounds().Dy() != 200 {
		t.Fatalf("narrow empty overview = %v, want 400x200", img.Bounds())
	}
}

func TestOverviewOnlyRareFiltersEverything(t *testing.T) {
	r := newTestRenderer(t, &refdata.Bundle{
		RareItems: map[string][]int{"material": {3}},
	})
	inv := harvest.SiteInventory{
		"scene1": {{FixtureID: 1, Reward: harvest.Reward{"material": {7: 5}}}},
	}

	// Only common drops under a rare-only filter: the empty placeholder.
	if img := r.Overview(inv, true, 1000); img.Bounds().Dy() != 200 {
		t.Fatalf("overview = %v, want the empty placeholder", img.Bounds())
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := image.NewRGBA(image.Rect(0, 0, 8, 8))

	pngPath := filepath.Join(dir, "nested", "out.png")
	if err := Save(pngPath, src, SaveOptions{Format: "png"}); err != nil {
		t.Fatalf("Save png: %v", err)
	}
	f, err := os.Open(pngPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	decoded, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Bounds() != src.Bounds() {
		t.Fatalf("decoded bounds = %v, want %v", decoded.Bounds(), src.Bounds())
	}

	if err := Save(filepath.Join(dir, "out.jpg"), src, SaveOptions{Format: "jpeg", JPEGQuality: 85}); err != nil {
		t.Fatalf("Save jpeg: %v", err)
	}

	err = Save(filepath.Join(dir, "out.bmp"), src, SaveOptions{Format: "bmp"})
	if err == nil {
		t.Fatal("expected an error for an unsupported format")
	}
	var ioErr *harvest.IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("error = %T, want *harvest.IOError", err)
	}
}
