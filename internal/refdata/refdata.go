// Package refdata loads the bundled description of scenes, fixture colors,
// item textures and rarity tables, and resolves texture references to image
// files. The bundle is loaded once at startup and read-only afterwards.
package refdata

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/htrskmiku/solabot/internal/harvest"
)

// BundleFile is the description file expected inside the bundle directory.
const BundleFile = "bundle.yaml"

// Axis direction flags of a scene's coordinate system.
const (
	XPositive = "x+"
	XNegative = "x-"
	YPositive = "y+"
	YNegative = "y-"
)

// SceneConfig describes one scene's background image and coordinate space.
type SceneConfig struct {
	// ImagePath is relative to the bundle directory.
	ImagePath string `yaml:"image_path"`

	// PhysicalWidth is the pixel span of one grid unit at ReferenceWidth.
	PhysicalWidth float64 `yaml:"physical_width"`

	// ReferenceWidth is the canvas width PhysicalWidth was measured against.
	// Zero means "the background's own width", a 1:1 ratio.
	ReferenceWidth int `yaml:"reference_width"`

	// Pixel origin offsets from the canvas center.
	OffsetX float64 `yaml:"offset_x"`
	OffsetY float64 `yaml:"offset_y"`

	// Axis direction flags ("x+"/"x-", "y+"/"y-").
	XDirection string `yaml:"x_direction"`
	YDirection string `yaml:"y_direction"`

	// ReverseXY swaps the two grid components before the transform.
	ReverseXY bool `yaml:"reverse_xy"`
}

// Rarity is the three-tier visual priority of an item.
type Rarity int

const (
	Common Rarity = iota
	Rare
	SuperRare
)

// Bundle is the loaded reference data. The zero value (plus Dir) is a valid
// bundle where every lookup falls back gracefully.
type Bundle struct {
	Dir string `yaml:"-"`

	Scenes         map[string]SceneConfig    `yaml:"scenes"`
	SceneLabels    map[string]string         `yaml:"scene_labels"` // sceneKey -> site label
	FixtureColors  map[int]string            `yaml:"fixture_colors"`
	ItemTextures   map[string]map[int]string `yaml:"item_textures"`
	RareItems      map[string][]int          `yaml:"rare_items"`
	SuperRareItems map[string][]int          `yaml:"super_rare_items"`
}

// SceneOrder is the fixed 2x2 composite tiling order.
var SceneOrder = []string{"scene1", "scene2", "scene3", "scene4"}

// Load reads the bundle description from dir. A missing description file is
// not an error: lookups on the returned bundle degrade to fallbacks so the
// pipeline keeps rendering.
func Load(dir string) (*Bundle, error) {
	b := &Bundle{Dir: dir}

	data, err := os.ReadFile(filepath.Join(dir, BundleFile))
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("reference bundle absent, rendering with fallbacks", "dir", dir)
			b.SceneLabels = defaultSceneLabels()
			return b, nil
		}
		return nil, fmt.Errorf("reading bundle %s: %w", dir, err)
	}

	if err := yaml.Unmarshal(data, b); err != nil {
		return nil, fmt.Errorf("parsing bundle %s: %w", dir, err)
	}
	b.Dir = dir
	if len(b.SceneLabels) == 0 {
		b.SceneLabels = defaultSceneLabels()
	}

	slog.Info("reference bundle loaded",
		"scenes", len(b.Scenes),
		"fixture_colors", len(b.FixtureColors),
		"texture_categories", len(b.ItemTextures),
	)
	return b, nil
}

// defaultSceneLabels ties the four composite tiles to the harvest areas.
func defaultSceneLabels() map[string]string {
	labels := make(map[string]string, len(SceneOrder))
	for i, key := range SceneOrder {
		labels[key] = harvest.SiteName(harvest.HarvestSiteIDs[i])
	}
	return labels
}

// Scene returns the config for a scene key, or a zero config.
func (b *Bundle) Scene(key string) SceneConfig {
	return b.Scenes[key]
}

// LabelForScene returns the site label rendered into a composite tile.
func (b *Bundle) LabelForScene(key string) string {
	return b.SceneLabels[key]
}

// FixtureColor returns the marker color hex ("#RRGGBB") for a fixture id.
func (b *Bundle) FixtureColor(fixtureID int) (string, bool) {
	c, ok := b.FixtureColors[fixtureID]
	return c, ok
}

// IsRare reports whether an item is in the rare or super-rare tables.
func (b *Bundle) IsRare(resourceType string, resourceID int) bool {
	return b.ItemRarity(resourceType, resourceID) != Common
}

// ItemRarity returns the highest tier an item belongs to.
func (b *Bundle) ItemRarity(resourceType string, resourceID int) Rarity {
	if containsID(b.SuperRareItems[resourceType], resourceID) {
		return SuperRare
	}
	if containsID(b.RareItems[resourceType], resourceID) {
		return Rare
	}
	return Common
}

func containsID(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// musicRecordTexture is shared by every music-record item regardless of id.
const musicRecordTexture = "./icon/Texture2D/item_surplus_music_record.png"

// TextureRef returns the texture reference for an item, falling back to the
// bundle's missing-icon marker when the item has no mapping.
func (b *Bundle) TextureRef(resourceType string, resourceID int) string {
	ref := b.ItemTextures[resourceType][resourceID]
	if resourceType == "mysekai_music_record" {
		ref = musicRecordTexture
	}
	if ref == "" {
		ref = "./missing.png"
	}
	return ref
}

// ResolveTexture maps a texture reference to an existing file path.
// Fallback chain: bundle-relative path, the reference as given, the icon
// directory by base name, the bundle's missing.png. Empty string means
// nothing resolved and the caller draws a placeholder.
func (b *Bundle) ResolveTexture(ref string) string {
	if ref == "" {
		return b.missingIcon()
	}
	rel := strings.TrimPrefix(ref, "./")

	if p := filepath.Join(b.Dir, rel); fileExists(p) {
		return p
	}
	if fileExists(ref) {
		return ref
	}
	if p := filepath.Join(b.Dir, "icon", filepath.Base(rel)); fileExists(p) {
		return p
	}
	return b.missingIcon()
}

// BackgroundImage resolves a scene's background. Fallback chain: the scene's
// configured image, then any PNG in the bundle's img directory. Empty string
// means the renderer uses a blank canvas.
func (b *Bundle) BackgroundImage(key string) string {
	if cfg := b.Scene(key); cfg.ImagePath != "" {
		if p := filepath.Join(b.Dir, strings.TrimPrefix(cfg.ImagePath, "./")); fileExists(p) {
			return p
		}
	}
	return b.AnySceneImage()
}

// AnySceneImage returns the first PNG in the bundle's img directory, if any.
func (b *Bundle) AnySceneImage() string {
	entries, err := os.ReadDir(filepath.Join(b.Dir, "img"))
	if err != nil {
		return ""
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".png") {
			return filepath.Join(b.Dir, "img", e.Name())
		}
	}
	return ""
}

func (b *Bundle) missingIcon() string {
	if p := filepath.Join(b.Dir, "missing.png"); fileExists(p) {
		return p
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
