package harvest

import "fmt"

// siteNames is the fixed table of known MySekai sites. Sites 5-8 are the
// four harvest areas; 1-4 are the home floors that can still appear in
// snapshot variants.
var siteNames = map[int]string{
	1: "マイホーム",
	2: "1F",
	3: "2F",
	4: "3F",
	5: "さいしょの原っぱ",
	6: "願いの砂浜",
	7: "彩りの花畑",
	8: "忘れ去られた場所",
}

// HarvestSiteIDs lists the harvest areas in their composite tiling order.
var HarvestSiteIDs = []int{5, 6, 7, 8}

// SiteName resolves a site id to its label. Unknown ids get a deterministic
// placeholder so unfamiliar snapshot variants still render.
func SiteName(siteID int) string {
	if name, ok := siteNames[siteID]; ok {
		return name
	}
	return fmt.Sprintf("unknown site %d", siteID)
}
