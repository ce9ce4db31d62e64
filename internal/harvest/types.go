// Package harvest holds the domain model of a MySekai harvest snapshot:
// the raw per-site records pulled out of a decoded document and the
// aggregated per-location inventory the renderers consume.
package harvest

import (
	"encoding/json"
	"fmt"
)

// FixtureStatus is the lifecycle state of a harvest fixture.
type FixtureStatus string

const (
	// FixtureSpawned marks a fixture that is present in the world and
	// therefore visualized. Any other status is carried but not drawn.
	FixtureSpawned FixtureStatus = "spawned"
)

// HarvestFixture is one spawn-able resource node. Immutable after decoding.
type HarvestFixture struct {
	FixtureID int
	PositionX int
	PositionZ int
	HP        int
	Status    FixtureStatus
}

// ResourceDrop is one yield instance at a grid position.
type ResourceDrop struct {
	ResourceType string
	ResourceID   int
	PositionX    int
	PositionZ    int
	HP           int
	Quantity     int
	Seq          int
	Status       string
}

// SiteHarvestMap is one scene's raw record: its fixtures and drops in
// document order.
type SiteHarvestMap struct {
	SiteID   int
	SiteName string
	Fixtures []HarvestFixture
	Drops    []ResourceDrop
}

// Location is a world grid coordinate.
type Location struct {
	X int
	Z int
}

// Reward maps resourceType -> resourceId -> accumulated quantity.
type Reward map[string]map[int]int

// Add accumulates quantity for one (resourceType, resourceId) pair.
func (r Reward) Add(resourceType string, resourceID, quantity int) {
	byID := r[resourceType]
	if byID == nil {
		byID = make(map[int]int)
		r[resourceType] = byID
	}
	byID[resourceID] += quantity
}

// Empty reports whether the reward holds no entries at all.
func (r Reward) Empty() bool {
	for _, byID := range r {
		if len(byID) > 0 {
			return false
		}
	}
	return true
}

// LocationEntry is one spawned fixture with its accumulated rewards.
type LocationEntry struct {
	Location  Location
	FixtureID int
	Reward    Reward
}

// SiteInventory maps a site label to its entries in fixture order.
// This is the pipeline's durable artifact and the renderers' input.
type SiteInventory map[string][]LocationEntry

// locationEntryJSON is the interchange shape:
// {"location":[x,z],"fixtureId":100,"reward":{"material":{"1":5}}}
type locationEntryJSON struct {
	Location  [2]int `json:"location"`
	FixtureID int    `json:"fixtureId"`
	Reward    Reward `json:"reward"`
}

// MarshalJSON encodes the entry in the interchange format.
func (e LocationEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(locationEntryJSON{
		Location:  [2]int{e.Location.X, e.Location.Z},
		FixtureID: e.FixtureID,
		Reward:    e.Reward,
	})
}

// UnmarshalJSON decodes the interchange format.
func (e *LocationEntry) UnmarshalJSON(data []byte) error {
	var raw locationEntryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Location = Location{X: raw.Location[0], Z: raw.Location[1]}
	e.FixtureID = raw.FixtureID
	e.Reward = raw.Reward
	if e.Reward == nil {
		e.Reward = Reward{}
	}
	return nil
}

// IOError reports a failed best-effort write of a quarantine document or a
// pipeline output.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
