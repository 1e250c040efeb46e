package analytics

import (
	"slices"
)

// DefaultTopN is the number of highlighted materials on the dashboard.
const DefaultTopN = 3

// defaultPilotTarget applies to any material without an explicit pilot target.
const defaultPilotTarget = 200

var pilotTargets = map[string]int64{
	"Plastic Bottle": 500,
	"Battery":        150,
	"Paper Cup":      100,
}

// SortMaterials returns a copy of materials ordered by collected count, highest
// first. Equal counts keep their input order. The input slice is not modified.
func SortMaterials(materials []MaterialStat) []MaterialStat {
	sorted := slices.Clone(materials)
	if sorted == nil {
		sorted = []MaterialStat{}
	}
	slices.SortStableFunc(sorted, func(a, b MaterialStat) int {
		switch {
		case a.Collected > b.Collected:
			return -1
		case a.Collected < b.Collected:
			return 1
		default:
			return 0
		}
	})
	return sorted
}

// TopN returns at most n leading materials. n <= 0 returns an empty slice.
func TopN(materials []MaterialStat, n int) []MaterialStat {
	if n <= 0 {
		return []MaterialStat{}
	}
	if n > len(materials) {
		n = len(materials)
	}
	out := make([]MaterialStat, n)
	copy(out, materials)
	return out
}

// PilotTarget returns the pilot target for a material by exact name.
func PilotTarget(name string) int64 {
	if target, ok := pilotTargets[name]; ok {
		return target
	}
	return defaultPilotTarget
}
