// Package places wraps the external mapping/places collaborator. Everything
// above this package talks to the Client interface, so handlers and the
// directory session test against fakes instead of the live service.
package places

import (
	"context"
	"errors"

	"github.com/chargedrops/chargedrops-api/internal/types"
)

// ErrDisabled is returned when no places API key is configured.
var ErrDisabled = errors.New("places integration disabled")

// Client is the consumed surface of the places collaborator.
type Client interface {
	// Details fetches the fixed field set for a place identifier.
	Details(ctx context.Context, placeID string) (*types.PlaceDetails, error)
	// Autocomplete returns city predictions for a text prefix.
	Autocomplete(ctx context.Context, input string) ([]types.PlacePrediction, error)
}

// Disabled satisfies Client when the integration is not configured. Details
// fails so callers surface their usual degraded state; autocomplete degrades
// to no results.
type Disabled struct{}

var _ Client = Disabled{}

func (Disabled) Details(ctx context.Context, placeID string) (*types.PlaceDetails, error) {
	return nil, ErrDisabled
}

func (Disabled) Autocomplete(ctx context.Context, input string) ([]types.PlacePrediction, error) {
	return []types.PlacePrediction{}, nil
}
