package creature

// Thresholds classifies raw incoming damage into a severity tier using the
// creature's major and severe damage cut points.
type Thresholds struct {
	Major  int `json:"major"`
	Severe int `json:"severe"`
}

// Severity tiers returned by Compare. The tier doubles as the number of
// hit points marked by the hit.
const (
	TierLight    = 1
	TierModerate = 2
	TierSevere   = 3
	TierMassive  = 4
)

// Compare converts a raw damage amount into a severity tier. With the
// massive-damage rule enabled, damage at or above twice the severe
// threshold rates one tier higher.
func (t Thresholds) Compare(damage int, massive bool) int {
	switch {
	case damage < t.Major:
		return TierLight
	case damage < t.Severe:
		return TierModerate
	case massive && damage >= 2*t.Severe:
		return TierMassive
	default:
		return TierSevere
	}
}
