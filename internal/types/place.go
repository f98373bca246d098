package types

// PlaceDetails is the fixed field set returned by the places collaborator.
// OpenNow is nil when the service did not report opening state.
type PlaceDetails struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Lat              float64  `json:"lat"`
	Lng              float64  `json:"lng"`
	Website          string   `json:"website,omitempty"`
	Phone            string   `json:"phone,omitempty"`
	PhotoURLs        []string `json:"photo_urls,omitempty"`
	Rating           float64  `json:"rating"`
	UserRatingsTotal int      `json:"user_ratings_total"`
	OpenNow          *bool    `json:"open_now,omitempty"`
	WeekdayText      []string `json:"weekday_text,omitempty"`
	MapURL           string   `json:"map_url,omitempty"`
	EditorialSummary string   `json:"editorial_summary,omitempty"`
}

// PlacePrediction is one autocomplete suggestion.
type PlacePrediction struct {
	Description string `json:"description"`
	PlaceID     string `json:"place_id"`
}

// LiveOverlay holds the live attributes merged over a venue's cached snapshot
// while that venue is selected.
type LiveOverlay struct {
	VenueID          string  `json:"venueId"`
	OpenNow          *bool   `json:"open_now,omitempty"`
	Rating           float64 `json:"rating"`
	UserRatingsTotal int     `json:"user_ratings_total"`
}
