package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/chargedrops/chargedrops-api/internal/domain/city"
	"github.com/chargedrops/chargedrops-api/internal/domain/places"
	"github.com/chargedrops/chargedrops-api/internal/domain/station"
	"github.com/chargedrops/chargedrops-api/internal/domain/venue"
	"github.com/chargedrops/chargedrops-api/internal/types"
)

// AdminHandler serves the dashboard API: city and venue editing, station
// inventory, and the place search helpers behind the venue form.
type AdminHandler struct {
	logger   *slog.Logger
	cities   city.Service
	venues   venue.Service
	stations station.Repository
	places   places.Client
}

func NewAdminHandler(cities city.Service, venues venue.Service, stations station.Repository, placesClient places.Client, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		logger:   logger,
		cities:   cities,
		venues:   venues,
		stations: stations,
		places:   placesClient,
	}
}

// --- cities ---

func (h *AdminHandler) ListCities(c echo.Context) error {
	cities, err := h.cities.GetAllCities(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"cities": cities})
}

func (h *AdminHandler) GetCity(c echo.Context) error {
	cityDoc, err := h.cities.GetCityBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, cityDoc)
}

func (h *AdminHandler) SaveCity(c echo.Context) error {
	var body types.City
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid city payload")
	}
	if slug := c.Param("slug"); slug != "" {
		body.Slug = slug
	}
	if err := h.cities.SaveCity(c.Request().Context(), body); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, body)
}

// --- venues ---

func (h *AdminHandler) ListVenues(c echo.Context) error {
	includeInactive, _ := strconv.ParseBool(c.QueryParam("includeInactive"))
	venues, err := h.venues.ListVenues(c.Request().Context(), venue.ListFilter{
		CitySlug:        c.QueryParam("city"),
		IncludeInactive: includeInactive,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"venues": venues})
}

func (h *AdminHandler) GetVenue(c echo.Context) error {
	v, err := h.venues.GetVenue(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *AdminHandler) CreateVenue(c echo.Context) error {
	var body types.Venue
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid venue payload")
	}
	body.ID = ""
	saved, err := h.venues.SaveVenue(c.Request().Context(), body)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, saved)
}

func (h *AdminHandler) UpdateVenue(c echo.Context) error {
	var body types.Venue
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid venue payload")
	}
	body.ID = c.Param("id")
	saved, err := h.venues.SaveVenue(c.Request().Context(), body)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, saved)
}

// --- stations ---

func (h *AdminHandler) ListStations(c echo.Context) error {
	onlyUnassigned, _ := strconv.ParseBool(c.QueryParam("unassigned"))
	stations, err := h.stations.ListStations(c.Request().Context(), onlyUnassigned)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"stations": stations})
}

func (h *AdminHandler) CreateStation(c echo.Context) error {
	var body struct {
		Code string `json:"stationid"`
	}
	if err := c.Bind(&body); err != nil || body.Code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "stationid is required")
	}
	st, err := h.stations.CreateStation(c.Request().Context(), body.Code)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, st)
}

// --- place search helpers ---

// Autocomplete backs the venue form's search box. Lookup failures degrade to
// an empty suggestion list so typing never surfaces an error.
func (h *AdminHandler) Autocomplete(c echo.Context) error {
	ctx := c.Request().Context()
	input := c.QueryParam("input")
	if input == "" {
		return c.JSON(http.StatusOK, map[string]any{"predictions": []types.PlacePrediction{}})
	}
	predictions, err := h.places.Autocomplete(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "place autocomplete degraded to empty",
			slog.Any("error", err))
		predictions = nil
	}
	if predictions == nil {
		predictions = []types.PlacePrediction{}
	}
	return c.JSON(http.StatusOK, map[string]any{"predictions": predictions})
}

// PlaceDetails pre-fills the venue form from a chosen suggestion. Unlike
// autocomplete, a failure here is surfaced so the admin knows the form was
// not populated.
func (h *AdminHandler) PlaceDetails(c echo.Context) error {
	details, err := h.places.Details(c.Request().Context(), c.Param("placeID"))
	if err != nil {
		h.logger.WarnContext(c.Request().Context(), "place details lookup failed",
			slog.Any("error", err),
			slog.String("place_id", c.Param("placeID")))
		return echo.NewHTTPError(http.StatusBadGateway, "unable to load place details")
	}
	return c.JSON(http.StatusOK, details)
}
