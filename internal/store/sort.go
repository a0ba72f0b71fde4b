package store

import (
	"sort"

	"github.com/MikeSquared-Agency/hive/internal/prospect"
)

// sortProspects orders by score descending, then oldest first, matching ListProspectsSince.
func sortProspects(ps []prospect.Prospect) {
	sort.SliceStable(ps, func(i, j int) bool {
		if ps[i].Score != ps[j].Score {
			return ps[i].Score > ps[j].Score
		}
		return ps[i].CreatedAt.Before(ps[j].CreatedAt)
	})
}
