package harvest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validDocument() map[string]any {
	return map[string]any{
		"updatedResources": map[string]any{
			"userMysekaiHarvestMaps": []any{
				map[string]any{
					"mysekaiSiteId": int64(5),
					"userMysekaiSiteHarvestFixtures": []any{
						map[string]any{
							"mysekaiSiteHarvestFixtureId":         int64(100),
							"positionX":                           int64(0),
							"positionZ":                           int64(0),
							"hp":                                  int64(30),
							"userMysekaiSiteHarvestFixtureStatus": "spawned",
						},
					},
					"userMysekaiSiteHarvestResourceDrops": []any{
						map[string]any{
							"resourceType":                         "material",
							"resourceId":                           uint16(1),
							"positionX":                            int8(0),
							"positionZ":                            float64(0),
							"hp":                                   int64(1),
							"quantity":                             int64(2),
							"seq":                                  int64(1),
							"mysekaiSiteHarvestResourceDropStatus": "before_drop",
						},
					},
				},
			},
		},
	}
}

func TestExtract_ValidDocument(t *testing.T) {
	x := &Extractor{QuarantineDir: t.TempDir()}

	sites, err := x.Extract(validDocument(), "jp", "123")
	require.NoError(t, err)
	require.Len(t, sites, 1)

	site := sites[0]
	require.Equal(t, 5, site.SiteID)
	require.Equal(t, "さいしょの原っぱ", site.SiteName)
	require.Len(t, site.Fixtures, 1)
	require.Equal(t, HarvestFixture{
		FixtureID: 100, PositionX: 0, PositionZ: 0, HP: 30, Status: FixtureSpawned,
	}, site.Fixtures[0])
	require.Len(t, site.Drops, 1)
	require.Equal(t, ResourceDrop{
		ResourceType: "material", ResourceID: 1, HP: 1, Quantity: 2, Seq: 1, Status: "before_drop",
	}, site.Drops[0])
}

// Fixture ids travel under a key prefixed with the full record name, not
// the bare fixture name. A document using the short key must not populate
// ids.
func TestExtract_FixtureIDKeyIsRecordPrefixed(t *testing.T) {
	x := &Extractor{QuarantineDir: t.TempDir()}

	sites, err := x.Extract(validDocument(), "jp", "123")
	require.NoError(t, err)
	require.Equal(t, 100, sites[0].Fixtures[0].FixtureID)

	doc := validDocument()
	fixture := doc["updatedResources"].(map[string]any)["userMysekaiHarvestMaps"].([]any)[0].(map[string]any)["userMysekaiSiteHarvestFixtures"].([]any)[0].(map[string]any)
	delete(fixture, "mysekaiSiteHarvestFixtureId")
	fixture["mysekaiFixtureId"] = int64(100)

	sites, err = x.Extract(doc, "jp", "123")
	require.NoError(t, err)
	require.Zero(t, sites[0].Fixtures[0].FixtureID)
}

func TestExtract_UnknownSiteGetsPlaceholderLabel(t *testing.T) {
	doc := map[string]any{
		"updatedResources": map[string]any{
			"userMysekaiHarvestMaps": []any{
				map[string]any{"mysekaiSiteId": int64(42)},
			},
		},
	}
	x := &Extractor{QuarantineDir: t.TempDir()}

	sites, err := x.Extract(doc, "jp", "123")
	require.NoError(t, err)
	require.Equal(t, "unknown site 42", sites[0].SiteName)
}

func TestExtract_MissingKeyQuarantinesDocument(t *testing.T) {
	dir := t.TempDir()
	fixed := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	x := &Extractor{
		QuarantineDir: dir,
		Now:           func() time.Time { return fixed },
	}

	doc := map[string]any{"suiteMaster": map[string]any{}}
	_, err := x.Extract(doc, "cn", "9876")

	var missing *MissingDataError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, filepath.Join(dir, "cn_9876_20260314_150926.json"), missing.QuarantinePath)

	// Exactly one quarantine file, holding the document verbatim.
	files, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	require.Len(t, files, 1)

	data, readErr := os.ReadFile(missing.QuarantinePath)
	require.NoError(t, readErr)
	require.True(t, strings.Contains(string(data), "suiteMaster"))
}

func TestExtract_QuarantineWriteFailureEscalates(t *testing.T) {
	// A file in place of the quarantine dir makes MkdirAll fail.
	base := t.TempDir()
	blocked := filepath.Join(base, "quarantine")
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0o644))

	x := &Extractor{QuarantineDir: blocked}
	_, err := x.Extract(map[string]any{}, "jp", "1")

	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	require.NotNil(t, errors.Unwrap(ioErr))
}
