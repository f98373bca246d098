package places

import (
	"context"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/singleflight"

	"github.com/chargedrops/chargedrops-api/internal/types"
	"github.com/chargedrops/chargedrops-api/pkg/observability"
)

var _ Client = (*CachedClient)(nil)

// CachedClient decorates a Client with a TTL cache, request coalescing and
// bounded retry. Live-overlay lookups hit the same handful of place ids every
// time a visitor selects a venue, so most calls never leave the process.
type CachedClient struct {
	logger  *slog.Logger
	inner   Client
	cache   *cache.Cache
	group   singleflight.Group
	timeout time.Duration
}

func NewCachedClient(inner Client, ttl, timeout time.Duration, logger *slog.Logger) *CachedClient {
	return &CachedClient{
		logger:  logger,
		inner:   inner,
		cache:   cache.New(ttl, 2*ttl),
		timeout: timeout,
	}
}

func (c *CachedClient) Details(ctx context.Context, placeID string) (*types.PlaceDetails, error) {
	if cached, ok := c.cache.Get(placeID); ok {
		observability.RecordPlacesLookup("hit")
		return cached.(*types.PlaceDetails), nil
	}

	result, err, _ := c.group.Do(placeID, func() (any, error) {
		var details *types.PlaceDetails
		backoff := retry.WithMaxRetries(2, retry.NewExponential(200*time.Millisecond))
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()
			d, err := c.inner.Details(attemptCtx, placeID)
			if err != nil {
				return retry.RetryableError(err)
			}
			details = d
			return nil
		})
		if err != nil {
			return nil, err
		}
		c.cache.Set(placeID, details, cache.DefaultExpiration)
		return details, nil
	})
	if err != nil {
		observability.RecordPlacesLookup("error")
		c.logger.WarnContext(ctx, "place details lookup failed after retries",
			slog.Any("error", err),
			slog.String("place_id", placeID))
		return nil, err
	}

	observability.RecordPlacesLookup("miss")
	return result.(*types.PlaceDetails), nil
}

// Autocomplete is not cached: prefixes rarely repeat and the debouncer
// already bounds request volume.
func (c *CachedClient) Autocomplete(ctx context.Context, input string) ([]types.PlacePrediction, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.inner.Autocomplete(ctx, input)
}
