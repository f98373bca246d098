package directory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chargedrops/chargedrops-api/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeCities serves canned cities and can block individual slugs until
// released, which lets tests interleave in-flight loads deterministically.
type fakeCities struct {
	mu      sync.Mutex
	cities  map[string]*types.City
	err     error
	blockOn map[string]chan struct{}
}

func (f *fakeCities) GetCityBySlug(ctx context.Context, slug string) (*types.City, error) {
	f.mu.Lock()
	gate := f.blockOn[slug]
	err := f.err
	c, ok := f.cities[slug]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, types.ErrNotFound
	}
	return c, nil
}

type fakeVenues struct {
	mu      sync.Mutex
	venues  map[string][]types.Venue
	err     error
	blockOn map[string]chan struct{}
}

func (f *fakeVenues) ListActiveByCity(ctx context.Context, citySlug string) ([]types.Venue, error) {
	f.mu.Lock()
	gate := f.blockOn[citySlug]
	err := f.err
	vs := f.venues[citySlug]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return vs, nil
}

type fakeOverlays struct {
	mu      sync.Mutex
	details map[string]*types.PlaceDetails
	err     error
	blockOn map[string]chan struct{}
	calls   int
}

func (f *fakeOverlays) Details(ctx context.Context, placeID string) (*types.PlaceDetails, error) {
	f.mu.Lock()
	f.calls++
	gate := f.blockOn[placeID]
	err := f.err
	d := f.details[placeID]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (f *fakeOverlays) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestSession(cities *fakeCities, venues *fakeVenues, overlays *fakeOverlays) *Session {
	if cities == nil {
		cities = &fakeCities{}
	}
	if venues == nil {
		venues = &fakeVenues{}
	}
	if overlays == nil {
		overlays = &fakeOverlays{}
	}
	return NewSession(cities, venues, overlays, testLogger())
}

func waitSettled(t *testing.T, s *Session) State {
	t.Helper()
	require.Eventually(t, func() bool {
		return !s.Snapshot().Loading()
	}, time.Second, 2*time.Millisecond)
	return s.Snapshot()
}

func TestNavigateLoadsCityAndVenues(t *testing.T) {
	cities := &fakeCities{cities: map[string]*types.City{
		"austin": {Slug: "austin", DisplayName: "Austin"},
	}}
	venues := &fakeVenues{venues: map[string][]types.Venue{
		"austin": {{ID: "v1", CitySlug: "austin", VenueName: "Radio Coffee"}},
	}}
	s := newTestSession(cities, venues, nil)

	s.Navigate(context.Background(), "austin")
	state := waitSettled(t, s)

	require.NotNil(t, state.City)
	assert.Equal(t, "Austin", state.City.DisplayName)
	require.Len(t, state.Venues, 1)
	assert.Equal(t, "Radio Coffee", state.Venues[0].VenueName)
	assert.Empty(t, state.CityError)
	assert.Empty(t, state.VenuesError)
}

func TestNavigateCityNotFound(t *testing.T) {
	s := newTestSession(&fakeCities{}, &fakeVenues{}, nil)

	s.Navigate(context.Background(), "atlantis")
	state := waitSettled(t, s)

	assert.Equal(t, MsgCityNotFound, state.CityError)
	assert.Nil(t, state.City)
}

func TestNavigateFailuresAreIndependent(t *testing.T) {
	// The city load fails but the venue load still lands, and vice versa.
	cities := &fakeCities{err: errors.New("boom")}
	venues := &fakeVenues{venues: map[string][]types.Venue{
		"austin": {{ID: "v1", CitySlug: "austin"}},
	}}
	s := newTestSession(cities, venues, nil)

	s.Navigate(context.Background(), "austin")
	state := waitSettled(t, s)

	assert.Equal(t, MsgCityUnavailable, state.CityError)
	assert.Empty(t, state.VenuesError)
	assert.Len(t, state.Venues, 1)
}

func TestNavigateFailureKeepsPreviousData(t *testing.T) {
	cities := &fakeCities{cities: map[string]*types.City{
		"austin": {Slug: "austin", DisplayName: "Austin"},
	}}
	venues := &fakeVenues{venues: map[string][]types.Venue{
		"austin": {{ID: "v1", CitySlug: "austin"}},
	}}
	s := newTestSession(cities, venues, nil)

	s.Navigate(context.Background(), "austin")
	waitSettled(t, s)

	venues.mu.Lock()
	venues.err = errors.New("db down")
	venues.mu.Unlock()

	s.Navigate(context.Background(), "austin")
	state := waitSettled(t, s)

	// Stale-but-present beats blank.
	assert.Equal(t, MsgVenuesUnavailable, state.VenuesError)
	assert.Len(t, state.Venues, 1)
	require.NotNil(t, state.City)
}

func TestStaleNavigationDiscarded(t *testing.T) {
	austinGate := make(chan struct{})
	cities := &fakeCities{
		cities: map[string]*types.City{
			"austin": {Slug: "austin", DisplayName: "Austin"},
			"dallas": {Slug: "dallas", DisplayName: "Dallas"},
		},
		blockOn: map[string]chan struct{}{"austin": austinGate},
	}
	venues := &fakeVenues{
		venues: map[string][]types.Venue{
			"austin": {{ID: "a1", CitySlug: "austin"}},
			"dallas": {{ID: "d1", CitySlug: "dallas"}},
		},
		blockOn: map[string]chan struct{}{"austin": austinGate},
	}
	s := newTestSession(cities, venues, nil)

	// First navigation hangs; the second completes before it.
	s.Navigate(context.Background(), "austin")
	s.Navigate(context.Background(), "dallas")
	state := waitSettled(t, s)
	require.NotNil(t, state.City)
	require.Equal(t, "Dallas", state.City.DisplayName)

	// Now let the stale austin responses land; they must be dropped.
	close(austinGate)
	time.Sleep(20 * time.Millisecond)

	state = s.Snapshot()
	assert.Equal(t, "dallas", state.CitySlug)
	assert.Equal(t, "Dallas", state.City.DisplayName)
	require.Len(t, state.Venues, 1)
	assert.Equal(t, "d1", state.Venues[0].ID)
}

func TestSelectDerivesActiveVenue(t *testing.T) {
	venues := &fakeVenues{venues: map[string][]types.Venue{
		"austin": {
			{ID: "v1", CitySlug: "austin", VenueName: "Radio Coffee"},
			{ID: "v2", CitySlug: "austin", VenueName: "Cosmic"},
		},
	}}
	cities := &fakeCities{cities: map[string]*types.City{"austin": {Slug: "austin"}}}
	s := newTestSession(cities, venues, nil)
	s.Navigate(context.Background(), "austin")
	waitSettled(t, s)

	s.Select(context.Background(), "v2")
	state := s.Snapshot()
	require.NotNil(t, state.ActiveVenue())
	assert.Equal(t, "Cosmic", state.ActiveVenue().VenueName)

	// Selecting an id absent from the list derives no active venue.
	s.Select(context.Background(), "ghost")
	state = s.Snapshot()
	assert.Equal(t, "ghost", state.SelectedID)
	assert.Nil(t, state.ActiveVenue())
}

func TestSelectResetsPhotoIndexAndOverlay(t *testing.T) {
	venues := &fakeVenues{venues: map[string][]types.Venue{
		"austin": {
			{ID: "v1", CitySlug: "austin", PlaceID: "p1"},
			{ID: "v2", CitySlug: "austin"},
		},
	}}
	cities := &fakeCities{cities: map[string]*types.City{"austin": {Slug: "austin"}}}
	overlays := &fakeOverlays{details: map[string]*types.PlaceDetails{
		"p1": {Rating: 4.5},
	}}
	s := newTestSession(cities, venues, overlays)
	s.Navigate(context.Background(), "austin")
	waitSettled(t, s)

	s.Select(context.Background(), "v1")
	s.SetPhotoIndex(3)
	require.Eventually(t, func() bool {
		return s.Snapshot().Overlay != nil
	}, time.Second, 2*time.Millisecond)

	s.Select(context.Background(), "v2")
	state := s.Snapshot()
	assert.Equal(t, 0, state.PhotoIndex)
	assert.Nil(t, state.Overlay)
	// v2 has no place id, so no fetch starts.
	assert.False(t, state.OverlayLoading)
}

func TestLateOverlayResultDiscarded(t *testing.T) {
	p1Gate := make(chan struct{})
	venues := &fakeVenues{venues: map[string][]types.Venue{
		"austin": {
			{ID: "v1", CitySlug: "austin", PlaceID: "p1"},
			{ID: "v2", CitySlug: "austin", PlaceID: "p2"},
		},
	}}
	cities := &fakeCities{cities: map[string]*types.City{"austin": {Slug: "austin"}}}
	overlays := &fakeOverlays{
		details: map[string]*types.PlaceDetails{
			"p1": {Rating: 1.0},
			"p2": {Rating: 5.0},
		},
		blockOn: map[string]chan struct{}{"p1": p1Gate},
	}
	s := newTestSession(cities, venues, overlays)
	s.Navigate(context.Background(), "austin")
	waitSettled(t, s)

	s.Select(context.Background(), "v1")
	s.Select(context.Background(), "v2")
	require.Eventually(t, func() bool {
		return s.Snapshot().Overlay != nil
	}, time.Second, 2*time.Millisecond)

	// The v1 response lands after v2 was selected and must be dropped.
	close(p1Gate)
	time.Sleep(20 * time.Millisecond)

	state := s.Snapshot()
	require.NotNil(t, state.Overlay)
	assert.Equal(t, "v2", state.Overlay.VenueID)
	assert.InDelta(t, 5.0, state.Overlay.Rating, 0.001)
}

func TestOverlayFetchFailureLeavesCachedView(t *testing.T) {
	venues := &fakeVenues{venues: map[string][]types.Venue{
		"austin": {{ID: "v1", CitySlug: "austin", PlaceID: "p1", Rating: 4.2}},
	}}
	cities := &fakeCities{cities: map[string]*types.City{"austin": {Slug: "austin"}}}
	overlays := &fakeOverlays{err: errors.New("quota exceeded")}
	s := newTestSession(cities, venues, overlays)
	s.Navigate(context.Background(), "austin")
	waitSettled(t, s)

	s.Select(context.Background(), "v1")
	require.Eventually(t, func() bool {
		return !s.Snapshot().OverlayLoading
	}, time.Second, 2*time.Millisecond)

	state := s.Snapshot()
	assert.Nil(t, state.Overlay)
	require.NotNil(t, state.ActiveVenue())
	assert.InDelta(t, 4.2, state.ActiveVenue().Rating, 0.001)
}

func TestClearResetsSelection(t *testing.T) {
	venues := &fakeVenues{venues: map[string][]types.Venue{
		"austin": {{ID: "v1", CitySlug: "austin"}},
	}}
	cities := &fakeCities{cities: map[string]*types.City{"austin": {Slug: "austin"}}}
	s := newTestSession(cities, venues, nil)
	s.Navigate(context.Background(), "austin")
	waitSettled(t, s)

	s.Select(context.Background(), "v1")
	s.SetPhotoIndex(2)
	s.Clear()

	state := s.Snapshot()
	assert.Empty(t, state.SelectedID)
	assert.Equal(t, 0, state.PhotoIndex)
	assert.Nil(t, state.Overlay)
	assert.Nil(t, state.ActiveVenue())
}

func TestSelectWithoutPlaceIDSkipsFetch(t *testing.T) {
	venues := &fakeVenues{venues: map[string][]types.Venue{
		"austin": {{ID: "v1", CitySlug: "austin"}},
	}}
	cities := &fakeCities{cities: map[string]*types.City{"austin": {Slug: "austin"}}}
	overlays := &fakeOverlays{}
	s := newTestSession(cities, venues, overlays)
	s.Navigate(context.Background(), "austin")
	waitSettled(t, s)

	s.Select(context.Background(), "v1")
	time.Sleep(10 * time.Millisecond)

	assert.Equal(t, 0, overlays.callCount())
	assert.False(t, s.Snapshot().OverlayLoading)
}
