package directory

import (
	"sort"

	"github.com/chargedrops/chargedrops-api/internal/types"
)

// UnassignedSlug buckets venues whose citySlug matches no configured city.
// Orphans render under this bucket instead of being dropped.
const UnassignedSlug = "unassigned"

// CityGroup is one home-page entry: a city and its venues. City is nil for
// the unassigned bucket.
type CityGroup struct {
	Slug   string        `json:"slug"`
	City   *types.City   `json:"city,omitempty"`
	Venues []types.Venue `json:"venues"`
}

// GroupByCity buckets venues under their cities, ordered by city slug with
// the unassigned bucket last. Venues keep their listing order within each
// bucket. Cities without venues still appear.
func GroupByCity(cities []types.City, venues []types.Venue) []CityGroup {
	bySlug := make(map[string]*CityGroup, len(cities)+1)
	ordered := make([]*CityGroup, 0, len(cities)+1)

	for i := range cities {
		group := &CityGroup{
			Slug:   cities[i].Slug,
			City:   &cities[i],
			Venues: []types.Venue{},
		}
		bySlug[cities[i].Slug] = group
		ordered = append(ordered, group)
	}

	var orphans *CityGroup
	for _, v := range venues {
		group, ok := bySlug[v.CitySlug]
		if !ok {
			if orphans == nil {
				orphans = &CityGroup{Slug: UnassignedSlug, Venues: []types.Venue{}}
			}
			group = orphans
		}
		group.Venues = append(group.Venues, v)
	}

	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Slug < ordered[j].Slug })
	if orphans != nil {
		ordered = append(ordered, orphans)
	}

	out := make([]CityGroup, 0, len(ordered))
	for _, g := range ordered {
		out = append(out, *g)
	}
	return out
}
