package places

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"googlemaps.github.io/maps"

	"github.com/chargedrops/chargedrops-api/internal/types"
)

const photoMaxWidth = 800

var _ Client = (*GoogleClient)(nil)

// GoogleClient implements Client against the Google Maps web services.
type GoogleClient struct {
	logger *slog.Logger
	client *maps.Client
	apiKey string
}

func NewGoogleClient(apiKey string, logger *slog.Logger) (*GoogleClient, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleClient{
		logger: logger,
		client: client,
		apiKey: apiKey,
	}, nil
}

func (g *GoogleClient) Details(ctx context.Context, placeID string) (*types.PlaceDetails, error) {
	ctx, span := otel.Tracer("PlacesClient").Start(ctx, "Details", trace.WithAttributes(
		attribute.String("place.id", placeID),
	))
	defer span.End()

	result, err := g.client.PlaceDetails(ctx, &maps.PlaceDetailsRequest{PlaceID: placeID})
	if err != nil {
		g.logger.ErrorContext(ctx, "place details lookup failed",
			slog.Any("error", err),
			slog.String("place_id", placeID))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Place details failed")
		return nil, fmt.Errorf("place details for %q: %w", placeID, err)
	}

	details := &types.PlaceDetails{
		PlaceID:          placeID,
		Name:             result.Name,
		FormattedAddress: result.FormattedAddress,
		Lat:              result.Geometry.Location.Lat,
		Lng:              result.Geometry.Location.Lng,
		Website:          result.Website,
		Phone:            result.FormattedPhoneNumber,
		Rating:           float64(result.Rating),
		UserRatingsTotal: result.UserRatingsTotal,
		MapURL:           result.URL,
	}
	for _, photo := range result.Photos {
		details.PhotoURLs = append(details.PhotoURLs, g.photoURL(photo.PhotoReference))
	}
	if result.OpeningHours != nil {
		details.OpenNow = result.OpeningHours.OpenNow
		details.WeekdayText = result.OpeningHours.WeekdayText
	}

	span.SetStatus(codes.Ok, "Place details retrieved")
	return details, nil
}

func (g *GoogleClient) Autocomplete(ctx context.Context, input string) ([]types.PlacePrediction, error) {
	ctx, span := otel.Tracer("PlacesClient").Start(ctx, "Autocomplete")
	defer span.End()

	resp, err := g.client.PlaceAutocomplete(ctx, &maps.PlaceAutocompleteRequest{
		Input: input,
		Types: maps.AutocompletePlaceTypeCities,
	})
	if err != nil {
		g.logger.WarnContext(ctx, "autocomplete lookup failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Autocomplete failed")
		return nil, fmt.Errorf("autocomplete for %q: %w", input, err)
	}

	predictions := make([]types.PlacePrediction, 0, len(resp.Predictions))
	for _, p := range resp.Predictions {
		predictions = append(predictions, types.PlacePrediction{
			Description: p.Description,
			PlaceID:     p.PlaceID,
		})
	}

	span.SetAttributes(attribute.Int("results.count", len(predictions)))
	span.SetStatus(codes.Ok, "Autocomplete retrieved")
	return predictions, nil
}

// photoURL builds a fetchable URL for a photo reference, the "photos with URL
// generator" half of the collaborator contract.
func (g *GoogleClient) photoURL(ref string) string {
	q := url.Values{}
	q.Set("maxwidth", fmt.Sprint(photoMaxWidth))
	q.Set("photo_reference", ref)
	q.Set("key", g.apiKey)
	return "https://maps.googleapis.com/maps/api/place/photo?" + q.Encode()
}
