package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chargedrops/chargedrops-api/internal/types"
)

func TestGroupByCity(t *testing.T) {
	cities := []types.City{
		{Slug: "dallas", DisplayName: "Dallas"},
		{Slug: "austin", DisplayName: "Austin"},
	}
	venues := []types.Venue{
		{ID: "v1", CitySlug: "austin"},
		{ID: "v2", CitySlug: "gone-city"},
		{ID: "v3", CitySlug: "austin"},
	}

	groups := GroupByCity(cities, venues)
	require.Len(t, groups, 3)

	// Ordered by slug, orphan bucket last.
	assert.Equal(t, "austin", groups[0].Slug)
	assert.Equal(t, "dallas", groups[1].Slug)
	assert.Equal(t, UnassignedSlug, groups[2].Slug)

	// Venues keep listing order within the bucket.
	require.Len(t, groups[0].Venues, 2)
	assert.Equal(t, "v1", groups[0].Venues[0].ID)
	assert.Equal(t, "v3", groups[0].Venues[1].ID)

	// Cities without venues still appear, with an empty slice.
	assert.Empty(t, groups[1].Venues)
	assert.NotNil(t, groups[1].Venues)

	require.Len(t, groups[2].Venues, 1)
	assert.Equal(t, "v2", groups[2].Venues[0].ID)
	assert.Nil(t, groups[2].City)
}

func TestGroupByCityNoOrphans(t *testing.T) {
	groups := GroupByCity(
		[]types.City{{Slug: "austin"}},
		[]types.Venue{{ID: "v1", CitySlug: "austin"}},
	)
	require.Len(t, groups, 1)
	assert.Equal(t, "austin", groups[0].Slug)
}

func TestGroupByCityEmpty(t *testing.T) {
	assert.Empty(t, GroupByCity(nil, nil))
}
