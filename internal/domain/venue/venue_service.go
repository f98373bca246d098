// Package venue owns the venue documents and the station assignment ledger:
// a venue's stationDetails list is the source of truth for which stations it
// occupies, and every save reconciles the station flags in the same commit.
package venue

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/chargedrops/chargedrops-api/internal/normalize"
	"github.com/chargedrops/chargedrops-api/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	GetVenue(ctx context.Context, id string) (*types.Venue, error)
	ListActiveByCity(ctx context.Context, citySlug string) ([]types.Venue, error)
	ListVenues(ctx context.Context, filter ListFilter) ([]types.Venue, error)
	// SaveVenue creates or updates a venue and reconciles station assignment
	// flags with the edited stationDetails list in one atomic commit.
	SaveVenue(ctx context.Context, v types.Venue) (*types.Venue, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
}

func NewVenueService(repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

func (s *ServiceImpl) GetVenue(ctx context.Context, id string) (*types.Venue, error) {
	ctx, span := otel.Tracer("VenueService").Start(ctx, "GetVenue")
	defer span.End()

	if id == "" {
		return nil, fmt.Errorf("%w: venue id is required", types.ErrBadRequest)
	}

	v, err := s.repo.GetVenue(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Repository operation failed")
		return nil, err
	}

	span.SetStatus(codes.Ok, "Venue retrieved")
	return v, nil
}

func (s *ServiceImpl) ListActiveByCity(ctx context.Context, citySlug string) ([]types.Venue, error) {
	ctx, span := otel.Tracer("VenueService").Start(ctx, "ListActiveByCity", trace.WithAttributes(
		attribute.String("city.slug", citySlug),
	))
	defer span.End()

	venues, err := s.repo.ListActiveByCity(ctx, citySlug)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list active venues",
			slog.Any("error", err),
			slog.String("city_slug", citySlug))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Repository operation failed")
		return nil, err
	}

	span.SetAttributes(attribute.Int("venues.count", len(venues)))
	span.SetStatus(codes.Ok, "Venues retrieved")
	return venues, nil
}

func (s *ServiceImpl) ListVenues(ctx context.Context, filter ListFilter) ([]types.Venue, error) {
	ctx, span := otel.Tracer("VenueService").Start(ctx, "ListVenues")
	defer span.End()

	venues, err := s.repo.ListVenues(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Repository operation failed")
		return nil, err
	}

	span.SetAttributes(attribute.Int("venues.count", len(venues)))
	span.SetStatus(codes.Ok, "Venues retrieved")
	return venues, nil
}

// SaveVenue persists an admin edit. The edited stationDetails list is cleaned
// of blank entries, drives totalChargersAvailable, and is diffed against the
// previously stored list to compute which station flags to flip. Document and
// flag writes commit together or not at all.
func (s *ServiceImpl) SaveVenue(ctx context.Context, v types.Venue) (*types.Venue, error) {
	ctx, span := otel.Tracer("VenueService").Start(ctx, "SaveVenue", trace.WithAttributes(
		attribute.String("venue.id", v.ID),
		attribute.String("city.slug", v.CitySlug),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "SaveVenue"))

	v.StationDetails = normalize.CleanStationDetails(v.StationDetails)
	v.TotalChargersAvailable = len(v.StationDetails)
	if v.Status == "" {
		v.Status = normalize.DefaultStatus
	}
	if v.PhotoURL == "" {
		v.PhotoURL = normalize.PlaceholderPhotoURL
	}

	if v.ID == "" {
		// A brand-new venue has no original list; every selected station is
		// a pure addition.
		assign := stationIDs(v.StationDetails)
		id, err := s.repo.CreateVenue(ctx, v, assign)
		if err != nil {
			l.ErrorContext(ctx, "failed to create venue", slog.Any("error", err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "Create failed")
			return nil, err
		}
		v.ID = id
		v.Version = 1
		span.SetStatus(codes.Ok, "Venue created")
		return &v, nil
	}

	orig, err := s.repo.GetVenue(ctx, v.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Original venue load failed")
		return nil, err
	}

	assign, release := diffStations(orig.StationDetails, v.StationDetails)
	if err := s.repo.UpdateVenue(ctx, v, orig.Version, assign, release); err != nil {
		l.ErrorContext(ctx, "failed to update venue",
			slog.Any("error", err),
			slog.String("venue_id", v.ID))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Update failed")
		return nil, err
	}

	v.Version = orig.Version + 1
	l.InfoContext(ctx, "venue saved",
		slog.String("venue_id", v.ID),
		slog.Int("stations_assigned", len(assign)),
		slog.Int("stations_released", len(release)))
	span.SetStatus(codes.Ok, "Venue saved")
	return &v, nil
}

func stationIDs(details []types.StationDetail) []string {
	ids := make([]string, 0, len(details))
	for _, d := range details {
		ids = append(ids, d.StationID)
	}
	return ids
}

// diffStations computes the set differences between the previously stored and
// the edited station lists: additions get assigned, removals get released.
func diffStations(orig, edited []types.StationDetail) (assign, release []string) {
	origSet := make(map[string]struct{}, len(orig))
	for _, d := range orig {
		origSet[d.StationID] = struct{}{}
	}
	editedSet := make(map[string]struct{}, len(edited))
	for _, d := range edited {
		editedSet[d.StationID] = struct{}{}
	}

	seen := make(map[string]struct{}, len(edited))
	for _, d := range edited {
		if _, dup := seen[d.StationID]; dup {
			continue
		}
		seen[d.StationID] = struct{}{}
		if _, ok := origSet[d.StationID]; !ok {
			assign = append(assign, d.StationID)
		}
	}
	seen = make(map[string]struct{}, len(orig))
	for _, d := range orig {
		if _, dup := seen[d.StationID]; dup {
			continue
		}
		seen[d.StationID] = struct{}{}
		if _, ok := editedSet[d.StationID]; !ok {
			release = append(release, d.StationID)
		}
	}
	return assign, release
}
