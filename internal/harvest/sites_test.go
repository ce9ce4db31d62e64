package harvest

import "testing"

// The labels are interchange keys: parsed inventories key entries by them,
// and the composite looks scenes up by them. They must match the game's
// area names exactly.
func TestSiteName_KnownSites(t *testing.T) {
	want := map[int]string{
		1: "マイホーム",
		2: "1F",
		3: "2F",
		4: "3F",
		5: "さいしょの原っぱ",
		6: "願いの砂浜",
		7: "彩りの花畑",
		8: "忘れ去られた場所",
	}
	for id, label := range want {
		if got := SiteName(id); got != label {
			t.Errorf("SiteName(%d) = %q, want %q", id, got, label)
		}
	}
}

func TestSiteName_UnknownSite(t *testing.T) {
	if got := SiteName(42); got != "unknown site 42" {
		t.Fatalf("SiteName(42) = %q", got)
	}
}

func TestHarvestSiteIDs(t *testing.T) {
	want := []int{5, 6, 7, 8}
	if len(HarvestSiteIDs) != len(want) {
		t.Fatalf("HarvestSiteIDs = %v", HarvestSiteIDs)
	}
	for i, id := range want {
		if HarvestSiteIDs[i] != id {
			t.Fatalf("HarvestSiteIDs = %v, want %v", HarvestSiteIDs, want)
		}
	}
}
