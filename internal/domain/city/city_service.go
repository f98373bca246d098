package city

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/chargedrops/chargedrops-api/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	GetCityBySlug(ctx context.Context, slug string) (*types.City, error)
	GetAllCities(ctx context.Context) ([]types.City, error)
	SaveCity(ctx context.Context, city types.City) error
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
}

func NewCityService(repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

func (s *ServiceImpl) GetCityBySlug(ctx context.Context, slug string) (*types.City, error) {
	ctx, span := otel.Tracer("CityService").Start(ctx, "GetCityBySlug")
	defer span.End()

	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, fmt.Errorf("%w: city slug is required", types.ErrBadRequest)
	}

	city, err := s.repo.GetCityBySlug(ctx, slug)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Repository operation failed")
		return nil, err
	}

	span.SetStatus(codes.Ok, "City retrieved")
	return city, nil
}

func (s *ServiceImpl) GetAllCities(ctx context.Context) ([]types.City, error) {
	ctx, span := otel.Tracer("CityService").Start(ctx, "GetAllCities")
	defer span.End()

	l := s.logger.With(slog.String("method", "GetAllCities"))

	cities, err := s.repo.GetAllCities(ctx)
	if err != nil {
		l.ErrorContext(ctx, "failed to retrieve cities", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Repository operation failed")
		return nil, fmt.Errorf("failed to retrieve cities: %w", err)
	}

	span.SetAttributes(attribute.Int("cities.count", len(cities)))
	span.SetStatus(codes.Ok, "Cities retrieved")
	return cities, nil
}

// SaveCity validates and persists an admin edit.
func (s *ServiceImpl) SaveCity(ctx context.Context, city types.City) error {
	ctx, span := otel.Tracer("CityService").Start(ctx, "SaveCity", trace.WithAttributes(
		attribute.String("city.slug", city.Slug),
	))
	defer span.End()

	city.Slug = strings.TrimSpace(strings.ToLower(city.Slug))
	if city.Slug == "" {
		return fmt.Errorf("%w: city slug is required", types.ErrBadRequest)
	}
	if strings.ContainsAny(city.Slug, " /") {
		return fmt.Errorf("%w: city slug must be URL-safe", types.ErrBadRequest)
	}
	if city.MapZoom <= 0 {
		city.MapZoom = 13
	}

	if err := s.repo.SaveCity(ctx, city); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Repository operation failed")
		return err
	}

	s.logger.InfoContext(ctx, "city saved", slog.String("slug", city.Slug))
	span.SetStatus(codes.Ok, "City saved")
	return nil
}
