package places

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/chargedrops/chargedrops-api/internal/types"
)

const prewarmConcurrency = 4

// Prewarm fetches place details for every venue that carries a place id so
// the first visitor selection hits a warm cache. Failures are logged and
// skipped; a cold cache entry is not an error.
func Prewarm(ctx context.Context, client Client, venues []types.Venue, logger *slog.Logger) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(prewarmConcurrency)

	warmed := 0
	for _, v := range venues {
		if v.PlaceID == "" {
			continue
		}
		warmed++
		placeID := v.PlaceID
		g.Go(func() error {
			if _, err := client.Details(ctx, placeID); err != nil {
				logger.DebugContext(ctx, "prewarm lookup failed",
					slog.Any("error", err),
					slog.String("place_id", placeID))
			}
			return nil
		})
	}

	_ = g.Wait()
	logger.InfoContext(ctx, "place cache prewarm finished", slog.Int("places", warmed))
}
