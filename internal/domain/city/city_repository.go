package city

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/chargedrops/chargedrops-api/internal/normalize"
	"github.com/chargedrops/chargedrops-api/internal/types"
	"github.com/chargedrops/chargedrops-api/pkg/db"
)

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	// GetCityBySlug returns the city keyed by the URL slug.
	// Returns types.ErrNotFound when no city matches.
	GetCityBySlug(ctx context.Context, slug string) (*types.City, error)
	GetAllCities(ctx context.Context) ([]types.City, error)
	// SaveCity inserts or replaces the city document for its slug.
	SaveCity(ctx context.Context, city types.City) error
}

type RepositoryImpl struct {
	logger *slog.Logger
	pgpool db.Pool
}

func NewCityRepository(pgpool db.Pool, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgpool,
	}
}

// GetCityBySlug queries the cities collection filtered by slug equality and
// normalizes the stored document before it crosses into rendering logic.
func (r *RepositoryImpl) GetCityBySlug(ctx context.Context, slug string) (*types.City, error) {
	ctx, span := otel.Tracer("CityRepository").Start(ctx, "GetCityBySlug", trace.WithAttributes(
		attribute.String("city.slug", slug),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "GetCityBySlug"))

	query := `
        SELECT doc
        FROM cities
        WHERE slug = $1
        LIMIT 1
    `

	var raw []byte
	err := r.pgpool.QueryRow(ctx, query, slug).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			l.WarnContext(ctx, "city not found", slog.String("slug", slug))
			span.SetStatus(codes.Error, "City not found")
			return nil, types.ErrNotFound
		}
		l.ErrorContext(ctx, "failed to query city by slug",
			slog.Any("error", err),
			slog.String("slug", slug))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database query failed")
		return nil, fmt.Errorf("failed to query city %q: %w", slug, err)
	}

	city := normalize.City(slug, decodeDoc(raw))

	span.SetStatus(codes.Ok, "City retrieved")
	return &city, nil
}

// GetAllCities retrieves every city ordered by slug.
func (r *RepositoryImpl) GetAllCities(ctx context.Context) ([]types.City, error) {
	ctx, span := otel.Tracer("CityRepository").Start(ctx, "GetAllCities")
	defer span.End()

	l := r.logger.With(slog.String("method", "GetAllCities"))

	query := `
        SELECT slug, doc
        FROM cities
        ORDER BY slug ASC
    `

	rows, err := r.pgpool.Query(ctx, query)
	if err != nil {
		l.ErrorContext(ctx, "failed to query cities", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database query failed")
		return nil, fmt.Errorf("failed to query cities: %w", err)
	}
	defer rows.Close()

	var cities []types.City
	for rows.Next() {
		var slug string
		var raw []byte
		if err := rows.Scan(&slug, &raw); err != nil {
			l.ErrorContext(ctx, "failed to scan city row", slog.Any("error", err))
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan city row: %w", err)
		}
		cities = append(cities, normalize.City(slug, decodeDoc(raw)))
	}
	if err := rows.Err(); err != nil {
		l.ErrorContext(ctx, "error iterating city rows", slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("error iterating city rows: %w", err)
	}

	span.SetAttributes(attribute.Int("results.count", len(cities)))
	span.SetStatus(codes.Ok, "Cities retrieved")
	return cities, nil
}

// SaveCity upserts the city document keyed by slug.
func (r *RepositoryImpl) SaveCity(ctx context.Context, city types.City) error {
	ctx, span := otel.Tracer("CityRepository").Start(ctx, "SaveCity", trace.WithAttributes(
		attribute.String("city.slug", city.Slug),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "SaveCity"))

	doc, err := json.Marshal(cityDoc(city))
	if err != nil {
		return fmt.Errorf("failed to encode city document: %w", err)
	}

	query := `
        INSERT INTO cities (slug, doc)
        VALUES ($1, $2)
        ON CONFLICT (slug) DO UPDATE
        SET doc = EXCLUDED.doc, updated_at = now()
    `

	if _, err := r.pgpool.Exec(ctx, query, city.Slug, doc); err != nil {
		l.ErrorContext(ctx, "failed to save city",
			slog.Any("error", err),
			slog.String("slug", city.Slug))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database write failed")
		return fmt.Errorf("failed to save city %q: %w", city.Slug, err)
	}

	l.InfoContext(ctx, "city saved", slog.String("slug", city.Slug))
	span.SetStatus(codes.Ok, "City saved")
	return nil
}

// cityDoc shapes the document payload written back to storage. The slug lives
// in its own column and is not duplicated into the document.
func cityDoc(city types.City) map[string]any {
	doc := map[string]any{
		"displayName": city.DisplayName,
		"sponsorName": city.SponsorName,
		"mapZoom":     city.MapZoom,
	}
	if city.LogoURL != "" {
		doc["logoUrl"] = city.LogoURL
	}
	if city.MapCenter != nil {
		doc["mapCenter"] = map[string]any{"lat": city.MapCenter.Lat, "lng": city.MapCenter.Lng}
	}
	return doc
}

func decodeDoc(raw []byte) map[string]any {
	var doc map[string]any
	// A malformed document normalizes to defaults rather than failing the page.
	_ = json.Unmarshal(raw, &doc)
	return doc
}
