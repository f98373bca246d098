// Package station manages the physical charging unit inventory. A station is
// assignable to at most one venue; the assigned flag is flipped inside the
// venue save transaction so it can never drift from the venue documents.
package station

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/chargedrops/chargedrops-api/internal/types"
	"github.com/chargedrops/chargedrops-api/pkg/db"
)

var _ Repository = (*RepositoryImpl)(nil)

// Ledger is the transactional slice of the repository the venue save path
// uses to flip assignment flags inside its own transaction.
type Ledger interface {
	SetAssignedTx(ctx context.Context, tx pgx.Tx, stationID string, assigned bool) error
}

type Repository interface {
	Ledger

	// ListStations returns the inventory, optionally restricted to stations
	// not yet referenced by any venue.
	ListStations(ctx context.Context, onlyUnassigned bool) ([]types.Station, error)
	GetStation(ctx context.Context, id string) (*types.Station, error)
	// CreateStation registers a new physical unit by its human-readable code,
	// e.g. "LAX0001".
	CreateStation(ctx context.Context, code string) (*types.Station, error)
}

type RepositoryImpl struct {
	logger *slog.Logger
	pgpool db.Pool
}

func NewStationRepository(pgpool db.Pool, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *RepositoryImpl) ListStations(ctx context.Context, onlyUnassigned bool) ([]types.Station, error) {
	ctx, span := otel.Tracer("StationRepository").Start(ctx, "ListStations", trace.WithAttributes(
		attribute.Bool("filter.only_unassigned", onlyUnassigned),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "ListStations"))

	builder := sq.Select("id", "code", "assigned").
		From("stations").
		OrderBy("code ASC").
		PlaceholderFormat(sq.Dollar)
	if onlyUnassigned {
		builder = builder.Where(sq.Eq{"assigned": false})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build station query: %w", err)
	}

	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		l.ErrorContext(ctx, "failed to query stations", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database query failed")
		return nil, fmt.Errorf("failed to query stations: %w", err)
	}
	defer rows.Close()

	var stations []types.Station
	for rows.Next() {
		var s types.Station
		if err := rows.Scan(&s.ID, &s.Code, &s.Assigned); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan station row: %w", err)
		}
		stations = append(stations, s)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error iterating station rows: %w", err)
	}

	span.SetAttributes(attribute.Int("results.count", len(stations)))
	span.SetStatus(codes.Ok, "Stations retrieved")
	return stations, nil
}

func (r *RepositoryImpl) GetStation(ctx context.Context, id string) (*types.Station, error) {
	ctx, span := otel.Tracer("StationRepository").Start(ctx, "GetStation", trace.WithAttributes(
		attribute.String("station.id", id),
	))
	defer span.End()

	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: invalid station id %q", types.ErrBadRequest, id)
	}

	query := `
        SELECT id, code, assigned
        FROM stations
        WHERE id = $1
    `

	var s types.Station
	err := r.pgpool.QueryRow(ctx, query, id).Scan(&s.ID, &s.Code, &s.Assigned)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "Station not found")
			return nil, types.ErrNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database query failed")
		return nil, fmt.Errorf("failed to query station %q: %w", id, err)
	}

	span.SetStatus(codes.Ok, "Station retrieved")
	return &s, nil
}

func (r *RepositoryImpl) CreateStation(ctx context.Context, code string) (*types.Station, error) {
	ctx, span := otel.Tracer("StationRepository").Start(ctx, "CreateStation", trace.WithAttributes(
		attribute.String("station.code", code),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "CreateStation"))

	code = strings.TrimSpace(strings.ToUpper(code))
	if code == "" {
		return nil, fmt.Errorf("%w: station code is required", types.ErrBadRequest)
	}

	query := `
        INSERT INTO stations (code)
        VALUES ($1)
        ON CONFLICT (code) DO NOTHING
        RETURNING id
    `

	var id string
	err := r.pgpool.QueryRow(ctx, query, code).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// ON CONFLICT DO NOTHING returns no row for duplicates.
			span.SetStatus(codes.Error, "Station code already exists")
			return nil, fmt.Errorf("%w: station code %q", types.ErrConflict, code)
		}
		l.ErrorContext(ctx, "failed to insert station",
			slog.Any("error", err),
			slog.String("code", code))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database write failed")
		return nil, fmt.Errorf("failed to insert station %q: %w", code, err)
	}

	l.InfoContext(ctx, "station created", slog.String("id", id), slog.String("code", code))
	span.SetStatus(codes.Ok, "Station created")
	return &types.Station{ID: id, Code: code, Assigned: false}, nil
}

// SetAssignedTx flips a station's assignment flag inside the caller's
// transaction. The flag must only ever change together with the venue
// document that references the station.
func (r *RepositoryImpl) SetAssignedTx(ctx context.Context, tx pgx.Tx, stationID string, assigned bool) error {
	query := `
        UPDATE stations
        SET assigned = $1, updated_at = now()
        WHERE id = $2
    `

	tag, err := tx.Exec(ctx, query, assigned, stationID)
	if err != nil {
		return fmt.Errorf("failed to update station %q assignment: %w", stationID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: station %q", types.ErrNotFound, stationID)
	}
	return nil
}
