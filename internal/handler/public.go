package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/chargedrops/chargedrops-api/internal/domain/city"
	"github.com/chargedrops/chargedrops-api/internal/domain/directory"
	"github.com/chargedrops/chargedrops-api/internal/domain/places"
	"github.com/chargedrops/chargedrops-api/internal/domain/venue"
	"github.com/chargedrops/chargedrops-api/internal/types"
)

// PublicHandler serves the visitor-facing directory endpoints.
type PublicHandler struct {
	logger *slog.Logger
	cities city.Service
	venues venue.Service
	places places.Client
}

func NewPublicHandler(cities city.Service, venues venue.Service, placesClient places.Client, logger *slog.Logger) *PublicHandler {
	return &PublicHandler{
		logger: logger,
		cities: cities,
		venues: venues,
		places: placesClient,
	}
}

// Home lists every city with its active venues grouped under it; orphan
// venues land in the unassigned bucket.
func (h *PublicHandler) Home(c echo.Context) error {
	ctx := c.Request().Context()

	cities, err := h.cities.GetAllCities(ctx)
	if err != nil {
		return httpError(err)
	}
	venues, err := h.venues.ListVenues(ctx, venue.ListFilter{})
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"cities": directory.GroupByCity(cities, venues),
	})
}

// SnapshotResponse mirrors the directory read model for one page load. The
// two loads are independent: a city failure does not suppress a successful
// venue load, and vice versa.
type SnapshotResponse struct {
	CitySlug    string        `json:"citySlug"`
	City        *types.City   `json:"city,omitempty"`
	Venues      []types.Venue `json:"venues"`
	CityError   string        `json:"cityError,omitempty"`
	VenuesError string        `json:"venuesError,omitempty"`
}

// MapSnapshot serves the public map page data for one city.
func (h *PublicHandler) MapSnapshot(c echo.Context) error {
	ctx := c.Request().Context()
	slug := c.Param("citySlug")

	resp := SnapshotResponse{CitySlug: slug, Venues: []types.Venue{}}

	var wg sync.WaitGroup
	var mu sync.Mutex
	wg.Add(2)

	go func() {
		defer wg.Done()
		cityDoc, err := h.cities.GetCityBySlug(ctx, slug)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				resp.CityError = directory.MsgCityNotFound
			} else {
				h.logger.WarnContext(ctx, "city load failed", slog.Any("error", err), slog.String("slug", slug))
				resp.CityError = directory.MsgCityUnavailable
			}
			return
		}
		resp.City = cityDoc
	}()

	go func() {
		defer wg.Done()
		venues, err := h.venues.ListActiveByCity(ctx, slug)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			h.logger.WarnContext(ctx, "venue load failed", slog.Any("error", err), slog.String("slug", slug))
			resp.VenuesError = directory.MsgVenuesUnavailable
			return
		}
		if venues != nil {
			resp.Venues = venues
		}
	}()

	wg.Wait()
	return c.JSON(http.StatusOK, resp)
}

// VenueLive returns the live overlay for a selected venue, merged over its
// cached snapshot. A failed or unavailable live lookup degrades to the
// cached values instead of an error page.
func (h *PublicHandler) VenueLive(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	v, err := h.venues.GetVenue(ctx, id)
	if err != nil {
		return httpError(err)
	}

	if v.PlaceID == "" {
		return c.JSON(http.StatusOK, directory.MergeOverlay(*v, nil))
	}

	details, err := h.places.Details(ctx, v.PlaceID)
	if err != nil {
		h.logger.WarnContext(ctx, "live overlay degraded to cached values",
			slog.Any("error", err),
			slog.String("venue_id", id))
		return c.JSON(http.StatusOK, directory.MergeOverlay(*v, nil))
	}
	return c.JSON(http.StatusOK, directory.MergeOverlay(*v, details))
}

// LegacyRedirect sends the historical bare /:citySlug path to /map/:citySlug.
func (h *PublicHandler) LegacyRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/map/"+c.Param("citySlug"))
}
