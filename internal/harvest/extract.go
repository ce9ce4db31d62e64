package harvest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Document keys of the snapshot variant this pipeline understands.
const (
	keyUpdatedResources = "updatedResources"
	keyHarvestMaps      = "userMysekaiHarvestMaps"
	keySiteID           = "mysekaiSiteId"
	keyFixtures         = "userMysekaiSiteHarvestFixtures"
	keyDrops            = "userMysekaiSiteHarvestResourceDrops"
)

// MissingDataError reports a decoded document that lacks the harvest-map
// collection. The full document is quarantined first; QuarantinePath points
// at the persisted copy for postmortem.
//
// This is a recoverable condition: the client sent a different snapshot
// variant, and the user should exit and re-enter the feature to produce a
// full one.
type MissingDataError struct {
	QuarantinePath string
	Err            error
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("harvest maps missing from document (quarantined at %s): %v", e.QuarantinePath, e.Err)
}

func (e *MissingDataError) Unwrap() error { return e.Err }

// Extractor validates a decoded document and reshapes it into per-site
// harvest records.
type Extractor struct {
	// QuarantineDir receives documents that fail structural validation.
	QuarantineDir string

	// Now is the clock used for quarantine file names. Defaults to time.Now.
	Now func() time.Time
}

// Extract navigates to the harvest-map collection and converts each record.
// On a missing key path it persists the document verbatim under
// {region}_{userID}_{timestamp}.json and returns a MissingDataError naming
// that file.
func (x *Extractor) Extract(doc map[string]any, region, userID string) ([]SiteHarvestMap, error) {
	rawMaps, err := harvestMaps(doc)
	if err != nil {
		qpath, qerr := x.quarantine(doc, region, userID)
		if qerr != nil {
			return nil, qerr
		}
		return nil, &MissingDataError{QuarantinePath: qpath, Err: err}
	}

	sites := make([]SiteHarvestMap, 0, len(rawMaps))
	for _, raw := range rawMaps {
		rec, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		sites = append(sites, extractSite(rec))
	}
	return sites, nil
}

func harvestMaps(doc map[string]any) ([]any, error) {
	updated, ok := doc[keyUpdatedResources].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("key %q absent", keyUpdatedResources)
	}
	maps, ok := updated[keyHarvestMaps].([]any)
	if !ok {
		return nil, fmt.Errorf("key %q absent", keyHarvestMaps)
	}
	return maps, nil
}

func extractSite(rec map[string]any) SiteHarvestMap {
	siteID := asInt(rec[keySiteID])
	site := SiteHarvestMap{
		SiteID:   siteID,
		SiteName: SiteName(siteID),
	}

	if fixtures, ok := rec[keyFixtures].([]any); ok {
		site.Fixtures = make([]HarvestFixture, 0, len(fixtures))
		for _, raw := range fixtures {
			f, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			site.Fixtures = append(site.Fixtures, HarvestFixture{
				FixtureID: asInt(f["mysekaiSiteHarvestFixtureId"]),
				PositionX: asInt(f["positionX"]),
				PositionZ: asInt(f["positionZ"]),
				HP:        asInt(f["hp"]),
				Status:    FixtureStatus(asString(f["userMysekaiSiteHarvestFixtureStatus"])),
			})
		}
	}

	if drops, ok := rec[keyDrops].([]any); ok {
		site.Drops = make([]ResourceDrop, 0, len(drops))
		for _, raw := range drops {
			d, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			site.Drops = append(site.Drops, ResourceDrop{
				ResourceType: asString(d["resourceType"]),
				ResourceID:   asInt(d["resourceId"]),
				PositionX:    asInt(d["positionX"]),
				PositionZ:    asInt(d["positionZ"]),
				HP:           asInt(d["hp"]),
				Quantity:     asInt(d["quantity"]),
				Seq:          asInt(d["seq"]),
				Status:       asString(d["mysekaiSiteHarvestResourceDropStatus"]),
			})
		}
	}

	return site
}

func (x *Extractor) quarantine(doc map[string]any, region, userID string) (string, error) {
	now := time.Now
	if x.Now != nil {
		now = x.Now
	}
	name := fmt.Sprintf("%s_%s_%s.json", region, userID, now().Format("20060102_150405"))
	path := filepath.Join(x.QuarantineDir, name)

	data, err := json.Marshal(doc)
	if err != nil {
		return "", &IOError{Op: "encoding quarantine document", Path: path, Err: err}
	}
	if err := os.MkdirAll(x.QuarantineDir, 0o755); err != nil {
		return "", &IOError{Op: "creating quarantine dir", Path: x.QuarantineDir, Err: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", &IOError{Op: "writing quarantine document", Path: path, Err: err}
	}
	return path, nil
}

// asInt converts the loose numeric types MessagePack and JSON decoding
// produce. Anything unrecognized maps to zero.
func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int8:
		return int(n)
	case int16:
		return int(n)
	case int32:
		return int(n)
	case int64:
		return int(n)
	case uint:
		return int(n)
	case uint8:
		return int(n)
	case uint16:
		return int(n)
	case uint32:
		return int(n)
	case uint64:
		return int(n)
	case float32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
