// Package normalize converts loosely-typed document payloads into fully
// populated domain values. Every function here is total: a missing or
// wrong-typed field degrades to its documented default instead of failing,
// so the public page renders partial upstream data rather than blocking.
package normalize

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/chargedrops/chargedrops-api/internal/types"
)

const (
	// DefaultMapZoom applies when a city document has no usable mapZoom.
	DefaultMapZoom = 13

	// PlaceholderPhotoURL stands in for venues without a primary photo.
	PlaceholderPhotoURL = "https://storage.googleapis.com/chargedrops-assets/kiosk-placeholder.png"

	// DefaultStatus applies when a venue document carries no status string.
	DefaultStatus = "unknown"
)

// City builds a City from a raw document. The slug argument is the URL slug
// the record was looked up by and wins over whatever the document contains.
func City(slug string, doc map[string]any) types.City {
	c := types.City{
		Slug:        slug,
		DisplayName: str(doc["displayName"], ""),
		SponsorName: str(doc["sponsorName"], ""),
		LogoURL:     str(doc["logoUrl"], ""),
		MapCenter:   latLng(doc["mapCenter"]),
		MapZoom:     integer(doc["mapZoom"], DefaultMapZoom),
	}
	if c.MapZoom <= 0 {
		c.MapZoom = DefaultMapZoom
	}
	return c
}

// Venue builds a Venue from a raw document. The id argument is the storage
// document id and wins over whatever the document contains.
func Venue(id string, doc map[string]any) types.Venue {
	v := types.Venue{
		ID:                     id,
		CitySlug:               str(doc["citySlug"], ""),
		VenueName:              str(doc["venueName"], ""),
		Address:                str(doc["address"], ""),
		Phone:                  str(doc["phone"], ""),
		Website:                str(doc["website"], ""),
		PhotoURL:               str(doc["photoUrl"], PlaceholderPhotoURL),
		Photos:                 strSlice(doc["photos"]),
		TotalChargersAvailable: nonNegative(integer(doc["totalChargersAvailable"], 0)),
		TotalSlotsFree:         nonNegative(integer(doc["totalSlotsFree"], 0)),
		Status:                 str(doc["status"], DefaultStatus),
		Lat:                    floating(doc["lat"], 0),
		Lng:                    floating(doc["lng"], 0),
		Active:                 boolean(doc["active"], false),
		SortOrder:              integer(doc["sortOrder"], 0),
		PlaceID:                str(doc["place_id"], ""),
		Rating:                 floating(doc["rating"], 0),
		UserRatingsTotal:       nonNegative(integer(doc["user_ratings_total"], 0)),
		EditorialSummary:       str(doc["editorial_summary"], ""),
		OpeningHoursText:       strSlice(doc["opening_hours_text"]),
		StationDetails:         stationDetails(doc["stationDetails"]),
	}
	if v.PhotoURL == "" {
		v.PhotoURL = PlaceholderPhotoURL
	}
	return v
}

// CleanStationDetails drops incomplete or blank entries before the admin
// write path persists them.
func CleanStationDetails(details []types.StationDetail) []types.StationDetail {
	out := make([]types.StationDetail, 0, len(details))
	for _, d := range details {
		if strings.TrimSpace(d.StationID) == "" {
			continue
		}
		out = append(out, d)
	}
	return out
}

func str(v any, def string) string {
	s, ok := v.(string)
	if !ok || s == "" {
		return def
	}
	return s
}

func floating(v any, def float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return f
		}
	}
	return def
}

func integer(v any, def int) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case float32:
		return int(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
		if f, err := n.Float64(); err == nil {
			return int(f)
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return int(f)
		}
	}
	return def
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func boolean(v any, def bool) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		if parsed, err := strconv.ParseBool(strings.TrimSpace(b)); err == nil {
			return parsed
		}
	}
	return def
}

func strSlice(v any) []string {
	out := []string{}
	switch items := v.(type) {
	case []string:
		out = append(out, items...)
	case []any:
		for _, item := range items {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// latLng accepts either a {"lat": .., "lng": ..} object or a two-element
// [lat, lng] array. Anything else means "no default map view".
func latLng(v any) *types.LatLng {
	switch c := v.(type) {
	case map[string]any:
		lat, okLat := asFloat(c["lat"])
		lng, okLng := asFloat(c["lng"])
		if okLat && okLng {
			return &types.LatLng{Lat: lat, Lng: lng}
		}
	case []any:
		if len(c) == 2 {
			lat, okLat := asFloat(c[0])
			lng, okLng := asFloat(c[1])
			if okLat && okLng {
				return &types.LatLng{Lat: lat, Lng: lng}
			}
		}
	}
	return nil
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f, true
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func stationDetails(v any) []types.StationDetail {
	out := []types.StationDetail{}
	items, ok := v.([]any)
	if !ok {
		return out
	}
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		detail := types.StationDetail{
			StationID:       str(entry["stationId"], ""),
			StationLocation: str(entry["stationLocation"], ""),
		}
		if detail.StationID == "" {
			continue
		}
		out = append(out, detail)
	}
	return out
}
