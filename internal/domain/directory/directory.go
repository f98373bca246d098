// Package directory implements the location directory read model shared by
// every view variant: the city/venue loader with its staleness guard, the
// single-selection state machine, and the live-overlay merge. A Session holds
// one page's private copy of directory state; there is no cross-session
// sharing, and every navigation re-fetches.
package directory

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"

	"github.com/chargedrops/chargedrops-api/internal/types"
)

// User-facing messages for load failures. Failures never clear data that is
// already on screen.
const (
	MsgVenuesUnavailable = "Unable to load locations right now."
	MsgCityNotFound      = "City configuration not found."
	MsgCityUnavailable   = "Unable to load city configuration."
)

// CityLoader is satisfied by city.Service.
type CityLoader interface {
	GetCityBySlug(ctx context.Context, slug string) (*types.City, error)
}

// VenueLoader is satisfied by venue.Service.
type VenueLoader interface {
	ListActiveByCity(ctx context.Context, citySlug string) ([]types.Venue, error)
}

// OverlayFetcher is satisfied by places.Client.
type OverlayFetcher interface {
	Details(ctx context.Context, placeID string) (*types.PlaceDetails, error)
}

// State is a point-in-time copy of a session's directory state.
type State struct {
	CitySlug      string
	City          *types.City
	Venues        []types.Venue
	LoadingCity   bool
	LoadingVenues bool
	CityError     string
	VenuesError   string

	SelectedID     string
	PhotoIndex     int
	Overlay        *types.LiveOverlay
	OverlayLoading bool
}

// Loading reports whether any directory query is still in flight.
func (s State) Loading() bool {
	return s.LoadingCity || s.LoadingVenues
}

// ActiveVenue derives the selected venue by lookup in the current list. It is
// recomputed on every call, never cached, so the list and the detail panel
// cannot diverge: a SelectedID absent from the list yields nil.
func (s State) ActiveVenue() *types.Venue {
	if s.SelectedID == "" {
		return nil
	}
	for i := range s.Venues {
		if s.Venues[i].ID == s.SelectedID {
			v := s.Venues[i]
			return &v
		}
	}
	return nil
}

// Session is one page's directory. Safe for concurrent use.
type Session struct {
	mu     sync.Mutex
	logger *slog.Logger
	cities CityLoader
	venues VenueLoader
	places OverlayFetcher

	// gen counts navigations; overlayGen counts selection changes. A load
	// result carrying a stale generation is discarded on arrival, so an
	// in-flight response can never overwrite state for a newer request.
	gen        uint64
	overlayGen uint64

	state State
}

func NewSession(cities CityLoader, venues VenueLoader, places OverlayFetcher, logger *slog.Logger) *Session {
	return &Session{
		logger: logger,
		cities: cities,
		venues: venues,
		places: places,
	}
}

// Navigate points the session at a city and starts the two independent loads.
// Previously displayed data stays visible until fresh results arrive.
func (s *Session) Navigate(ctx context.Context, slug string) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.state.CitySlug = slug
	s.state.LoadingCity = true
	s.state.LoadingVenues = true
	s.state.CityError = ""
	s.state.VenuesError = ""
	s.mu.Unlock()

	ctx, span := otel.Tracer("Directory").Start(ctx, "Navigate")
	defer span.End()

	go s.loadCity(ctx, gen, slug)
	go s.loadVenues(ctx, gen, slug)
}

func (s *Session) loadCity(ctx context.Context, gen uint64, slug string) {
	city, err := s.cities.GetCityBySlug(ctx, slug)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		// A newer navigation superseded this load.
		return
	}
	s.state.LoadingCity = false
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			s.state.CityError = MsgCityNotFound
		} else {
			s.logger.WarnContext(ctx, "city load failed",
				slog.Any("error", err),
				slog.String("slug", slug))
			s.state.CityError = MsgCityUnavailable
		}
		return
	}
	s.state.City = city
	s.state.CityError = ""
}

func (s *Session) loadVenues(ctx context.Context, gen uint64, slug string) {
	venues, err := s.venues.ListActiveByCity(ctx, slug)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.state.LoadingVenues = false
	if err != nil {
		s.logger.WarnContext(ctx, "venue load failed",
			slog.Any("error", err),
			slog.String("slug", slug))
		s.state.VenuesError = MsgVenuesUnavailable
		return
	}
	s.state.Venues = venues
	s.state.VenuesError = ""
}

// Select transitions to Selected(id). Selecting an id not present in the
// current list is allowed and simply derives no active venue. Every
// transition resets the photo pointer, drops the previous overlay as stale,
// and starts a fresh overlay fetch when the venue carries a place id.
func (s *Session) Select(ctx context.Context, id string) {
	s.mu.Lock()
	s.state.SelectedID = id
	s.state.PhotoIndex = 0
	s.state.Overlay = nil
	s.state.OverlayLoading = false
	s.overlayGen++
	overlayGen := s.overlayGen

	var target *types.Venue
	for i := range s.state.Venues {
		if s.state.Venues[i].ID == id {
			v := s.state.Venues[i]
			target = &v
			break
		}
	}
	if target != nil && target.PlaceID != "" {
		s.state.OverlayLoading = true
	}
	s.mu.Unlock()

	if target != nil && target.PlaceID != "" {
		go s.fetchOverlay(ctx, overlayGen, *target)
	}
}

// Clear transitions back to Unselected.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SelectedID = ""
	s.state.PhotoIndex = 0
	s.state.Overlay = nil
	s.state.OverlayLoading = false
	s.overlayGen++
}

// SetPhotoIndex moves the gallery pointer for the selected venue.
func (s *Session) SetPhotoIndex(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 {
		i = 0
	}
	s.state.PhotoIndex = i
}

func (s *Session) fetchOverlay(ctx context.Context, overlayGen uint64, v types.Venue) {
	details, err := s.places.Details(ctx, v.PlaceID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if overlayGen != s.overlayGen {
		// Selection changed while the fetch was in flight; the result may
		// only populate state for the venue selected when it was issued.
		return
	}
	s.state.OverlayLoading = false
	if err != nil {
		s.logger.WarnContext(ctx, "live overlay fetch failed",
			slog.Any("error", err),
			slog.String("venue_id", v.ID),
			slog.String("place_id", v.PlaceID))
		return
	}
	overlay := MergeOverlay(v, details)
	s.state.Overlay = &overlay
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.state
	state.Venues = append([]types.Venue(nil), s.state.Venues...)
	return state
}
