package harvest

// Aggregate merges each site's resource drops into its spawned fixtures by
// grid coordinate and keys the result by site label.
//
// Entries keep fixture-array order; that order is the display order and is
// never re-sorted. Drops attach to the first entry whose location matches,
// an ordered linear scan, so duplicate coordinates resolve identically on
// every run. Drops matching no spawned fixture are discarded.
func Aggregate(sites []SiteHarvestMap) SiteInventory {
	inv := make(SiteInventory, len(sites))

	for _, site := range sites {
		entries := make([]LocationEntry, 0, len(site.Fixtures))
		for _, f := range site.Fixtures {
			if f.Status != FixtureSpawned {
				continue
			}
			entries = append(entries, LocationEntry{
				Location:  Location{X: f.PositionX, Z: f.PositionZ},
				FixtureID: f.FixtureID,
				Reward:    Reward{},
			})
		}

		for _, drop := range site.Drops {
			loc := Location{X: drop.PositionX, Z: drop.PositionZ}
			for i := range entries {
				if entries[i].Location == loc {
					entries[i].Reward.Add(drop.ResourceType, drop.ResourceID, drop.Quantity)
					break
				}
			}
		}

		// Sites with no spawned fixtures still appear, with an empty slice.
		inv[site.SiteName] = entries
	}

	return inv
}
