package venue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/chargedrops/chargedrops-api/internal/domain/station"
	"github.com/chargedrops/chargedrops-api/internal/normalize"
	"github.com/chargedrops/chargedrops-api/internal/types"
	"github.com/chargedrops/chargedrops-api/pkg/db"
)

var _ Repository = (*RepositoryImpl)(nil)

// ListFilter narrows the admin venue listing.
type ListFilter struct {
	CitySlug        string
	IncludeInactive bool
}

type Repository interface {
	// GetVenue returns the venue document by id, including its storage
	// version. Returns types.ErrNotFound when no venue matches.
	GetVenue(ctx context.Context, id string) (*types.Venue, error)
	// ListActiveByCity is the public listing: active venues for the city,
	// ordered by sortOrder ascending.
	ListActiveByCity(ctx context.Context, citySlug string) ([]types.Venue, error)
	// ListVenues is the admin listing with optional filters.
	ListVenues(ctx context.Context, filter ListFilter) ([]types.Venue, error)
	// CreateVenue inserts the venue document and flags every station in
	// assign as taken, all in one transaction.
	CreateVenue(ctx context.Context, v types.Venue, assign []string) (string, error)
	// UpdateVenue writes the venue document and the station flag updates as
	// one atomic commit, guarded by the expected document version.
	// Returns types.ErrConflict when the version no longer matches.
	UpdateVenue(ctx context.Context, v types.Venue, expectedVersion int, assign, release []string) error
}

type RepositoryImpl struct {
	logger *slog.Logger
	pgpool db.Pool
	ledger station.Ledger
}

func NewVenueRepository(pgpool db.Pool, ledger station.Ledger, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgpool,
		ledger: ledger,
	}
}

func (r *RepositoryImpl) GetVenue(ctx context.Context, id string) (*types.Venue, error) {
	ctx, span := otel.Tracer("VenueRepository").Start(ctx, "GetVenue", trace.WithAttributes(
		attribute.String("venue.id", id),
	))
	defer span.End()

	query := `
        SELECT id, city_slug, active, sort_order, version, doc
        FROM venues
        WHERE id = $1
    `

	v, err := r.scanVenue(r.pgpool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "Venue not found")
			return nil, types.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "failed to query venue",
			slog.Any("error", err),
			slog.String("venue_id", id))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database query failed")
		return nil, fmt.Errorf("failed to query venue %q: %w", id, err)
	}

	span.SetStatus(codes.Ok, "Venue retrieved")
	return v, nil
}

func (r *RepositoryImpl) ListActiveByCity(ctx context.Context, citySlug string) ([]types.Venue, error) {
	ctx, span := otel.Tracer("VenueRepository").Start(ctx, "ListActiveByCity", trace.WithAttributes(
		attribute.String("city.slug", citySlug),
	))
	defer span.End()

	query := `
        SELECT id, city_slug, active, sort_order, version, doc
        FROM venues
        WHERE city_slug = $1 AND active = TRUE
        ORDER BY sort_order ASC
    `

	venues, err := r.queryVenues(ctx, query, citySlug)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database query failed")
		return nil, err
	}

	span.SetAttributes(attribute.Int("results.count", len(venues)))
	span.SetStatus(codes.Ok, "Venues retrieved")
	return venues, nil
}

func (r *RepositoryImpl) ListVenues(ctx context.Context, filter ListFilter) ([]types.Venue, error) {
	ctx, span := otel.Tracer("VenueRepository").Start(ctx, "ListVenues", trace.WithAttributes(
		attribute.String("filter.city_slug", filter.CitySlug),
		attribute.Bool("filter.include_inactive", filter.IncludeInactive),
	))
	defer span.End()

	builder := sq.Select("id", "city_slug", "active", "sort_order", "version", "doc").
		From("venues").
		OrderBy("city_slug ASC", "sort_order ASC").
		PlaceholderFormat(sq.Dollar)
	if filter.CitySlug != "" {
		builder = builder.Where(sq.Eq{"city_slug": filter.CitySlug})
	}
	if !filter.IncludeInactive {
		builder = builder.Where(sq.Eq{"active": true})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build venue query: %w", err)
	}

	venues, err := r.queryVenues(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database query failed")
		return nil, err
	}

	span.SetAttributes(attribute.Int("results.count", len(venues)))
	span.SetStatus(codes.Ok, "Venues retrieved")
	return venues, nil
}

func (r *RepositoryImpl) CreateVenue(ctx context.Context, v types.Venue, assign []string) (string, error) {
	ctx, span := otel.Tracer("VenueRepository").Start(ctx, "CreateVenue", trace.WithAttributes(
		attribute.String("city.slug", v.CitySlug),
		attribute.Int("stations.assign", len(assign)),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "CreateVenue"))

	doc, err := json.Marshal(venueDoc(v))
	if err != nil {
		return "", fmt.Errorf("failed to encode venue document: %w", err)
	}

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin venue create transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
        INSERT INTO venues (city_slug, active, sort_order, doc)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `

	var id string
	if err := tx.QueryRow(ctx, query, v.CitySlug, v.Active, v.SortOrder, doc).Scan(&id); err != nil {
		l.ErrorContext(ctx, "failed to insert venue", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database write failed")
		return "", fmt.Errorf("failed to insert venue: %w", err)
	}

	for _, stationID := range assign {
		if err := r.ledger.SetAssignedTx(ctx, tx, stationID, true); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Station assignment failed")
			return "", err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Commit failed")
		return "", fmt.Errorf("failed to commit venue create: %w", err)
	}

	l.InfoContext(ctx, "venue created",
		slog.String("venue_id", id),
		slog.Int("stations_assigned", len(assign)))
	span.SetStatus(codes.Ok, "Venue created")
	return id, nil
}

func (r *RepositoryImpl) UpdateVenue(ctx context.Context, v types.Venue, expectedVersion int, assign, release []string) error {
	ctx, span := otel.Tracer("VenueRepository").Start(ctx, "UpdateVenue", trace.WithAttributes(
		attribute.String("venue.id", v.ID),
		attribute.Int("stations.assign", len(assign)),
		attribute.Int("stations.release", len(release)),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "UpdateVenue"))

	doc, err := json.Marshal(venueDoc(v))
	if err != nil {
		return fmt.Errorf("failed to encode venue document: %w", err)
	}

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin venue update transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// The version guard rejects a save based on a snapshot another admin
	// session has already replaced.
	query := `
        UPDATE venues
        SET city_slug = $1, active = $2, sort_order = $3, doc = $4,
            version = version + 1, updated_at = now()
        WHERE id = $5 AND version = $6
    `

	tag, err := tx.Exec(ctx, query, v.CitySlug, v.Active, v.SortOrder, doc, v.ID, expectedVersion)
	if err != nil {
		l.ErrorContext(ctx, "failed to update venue",
			slog.Any("error", err),
			slog.String("venue_id", v.ID))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database write failed")
		return fmt.Errorf("failed to update venue %q: %w", v.ID, err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "Version conflict")
		return fmt.Errorf("%w: venue %q was modified by another session", types.ErrConflict, v.ID)
	}

	for _, stationID := range release {
		if err := r.ledger.SetAssignedTx(ctx, tx, stationID, false); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Station release failed")
			return err
		}
	}
	for _, stationID := range assign {
		if err := r.ledger.SetAssignedTx(ctx, tx, stationID, true); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Station assignment failed")
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Commit failed")
		return fmt.Errorf("failed to commit venue update: %w", err)
	}

	l.InfoContext(ctx, "venue updated",
		slog.String("venue_id", v.ID),
		slog.Int("stations_assigned", len(assign)),
		slog.Int("stations_released", len(release)))
	span.SetStatus(codes.Ok, "Venue updated")
	return nil
}

func (r *RepositoryImpl) queryVenues(ctx context.Context, query string, args ...any) ([]types.Venue, error) {
	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query venues: %w", err)
	}
	defer rows.Close()

	var venues []types.Venue
	for rows.Next() {
		v, err := r.scanVenue(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan venue row: %w", err)
		}
		venues = append(venues, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating venue rows: %w", err)
	}
	return venues, nil
}

func (r *RepositoryImpl) scanVenue(row pgx.Row) (*types.Venue, error) {
	var (
		id        string
		citySlug  string
		active    bool
		sortOrder int
		version   int
		raw       []byte
	)
	if err := row.Scan(&id, &citySlug, &active, &sortOrder, &version, &raw); err != nil {
		return nil, err
	}

	var doc map[string]any
	// Malformed documents normalize to defaults rather than failing the page.
	_ = json.Unmarshal(raw, &doc)

	v := normalize.Venue(id, doc)
	// Columns win over whatever the document claims.
	v.CitySlug = citySlug
	v.Active = active
	v.SortOrder = sortOrder
	v.Version = version
	return &v, nil
}

// venueDoc shapes the document payload written back to storage. Fields the
// queries filter or order on live in their own columns.
func venueDoc(v types.Venue) map[string]any {
	doc := map[string]any{
		"citySlug":               v.CitySlug,
		"venueName":              v.VenueName,
		"address":                v.Address,
		"phone":                  v.Phone,
		"website":                v.Website,
		"photoUrl":               v.PhotoURL,
		"photos":                 v.Photos,
		"totalChargersAvailable": v.TotalChargersAvailable,
		"totalSlotsFree":         v.TotalSlotsFree,
		"status":                 v.Status,
		"lat":                    v.Lat,
		"lng":                    v.Lng,
		"active":                 v.Active,
		"sortOrder":              v.SortOrder,
		"rating":                 v.Rating,
		"user_ratings_total":     v.UserRatingsTotal,
		"opening_hours_text":     v.OpeningHoursText,
		"stationDetails":         v.StationDetails,
	}
	if v.PlaceID != "" {
		doc["place_id"] = v.PlaceID
	}
	if v.EditorialSummary != "" {
		doc["editorial_summary"] = v.EditorialSummary
	}
	return doc
}
