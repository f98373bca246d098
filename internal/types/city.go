package types

// LatLng is a geographic coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// City is a sponsor-branded grouping of venues, keyed by a URL-safe slug.
// MapCenter is nil when the city has no default map view; consumers must not
// assume it is present.
type City struct {
	Slug        string  `json:"slug"`
	DisplayName string  `json:"displayName"`
	SponsorName string  `json:"sponsorName"`
	LogoURL     string  `json:"logoUrl,omitempty"`
	MapCenter   *LatLng `json:"mapCenter,omitempty"`
	MapZoom     int     `json:"mapZoom"`
}
