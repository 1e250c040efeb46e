package analytics

// Snapshot is one fetched analytics payload. It is never mutated after decoding;
// a newer poll replaces it as a whole.
type Snapshot struct {
	Totals      Totals      `json:"totals"`
	Recyclables Recyclables `json:"recyclables"`
}

// Totals holds the participation counters. Absent fields decode as zero.
type Totals struct {
	TotalUsers   int64 `json:"total_users"`
	TotalQuests  int64 `json:"total_quests"`
	TotalRewards int64 `json:"total_rewards"`
}

type Recyclables struct {
	Overall               Overall          `json:"overall"`
	TopCollectedMaterials []MaterialRecord `json:"top_collected_materials"`
}

type Overall struct {
	CollectedTotal int64 `json:"collected_total"`
}

// MaterialRecord is the wire form of a material entry. Counts are pointers so that
// null and missing values can be told apart from explicit zeros before normalising.
type MaterialRecord struct {
	Name      string `json:"name"`
	Collected *int64 `json:"collected"`
	Target    *int64 `json:"target"`
}

// MaterialStat is the derived, zero-defaulted form of a material entry.
type MaterialStat struct {
	Name      string `json:"name"`
	Collected int64  `json:"collected"`
	Target    int64  `json:"target"`
}

// NormalizeMaterials maps the snapshot's material records to MaterialStat values,
// replacing missing counts with zero. Input order is preserved.
func NormalizeMaterials(s *Snapshot) []MaterialStat {
	if s == nil {
		return []MaterialStat{}
	}

	out := make([]MaterialStat, 0, len(s.Recyclables.TopCollectedMaterials))
	for _, m := range s.Recyclables.TopCollectedMaterials {
		out = append(out, MaterialStat{
			Name:      m.Name,
			Collected: valueOrZero(m.Collected),
			Target:    valueOrZero(m.Target),
		})
	}
	return out
}

func valueOrZero(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
