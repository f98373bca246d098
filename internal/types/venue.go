package types

// StationDetail links a venue to one physical charging unit it occupies.
type StationDetail struct {
	StationID       string `json:"stationId"`
	StationLocation string `json:"stationLocation"`
}

// Venue is a physical kiosk location with charger and slot inventory.
// Lat/Lng of 0,0 means "no coordinates", never a real location in this domain.
type Venue struct {
	ID                     string          `json:"id"`
	CitySlug               string          `json:"citySlug"`
	VenueName              string          `json:"venueName"`
	Address                string          `json:"address"`
	Phone                  string          `json:"phone"`
	Website                string          `json:"website"`
	PhotoURL               string          `json:"photoUrl"`
	Photos                 []string        `json:"photos"`
	TotalChargersAvailable int             `json:"totalChargersAvailable"`
	TotalSlotsFree         int             `json:"totalSlotsFree"`
	Status                 string          `json:"status"`
	Lat                    float64         `json:"lat"`
	Lng                    float64         `json:"lng"`
	Active                 bool            `json:"active"`
	SortOrder              int             `json:"sortOrder"`
	PlaceID                string          `json:"place_id,omitempty"`
	Rating                 float64         `json:"rating"`
	UserRatingsTotal       int             `json:"user_ratings_total"`
	EditorialSummary       string          `json:"editorial_summary,omitempty"`
	OpeningHoursText       []string        `json:"opening_hours_text"`
	StationDetails         []StationDetail `json:"stationDetails"`

	// Version is storage-layer metadata used for optimistic concurrency on
	// the admin save path. It never round-trips through the document payload.
	Version int `json:"-"`
}

// HasCoordinates reports whether the venue carries a usable map position.
func (v *Venue) HasCoordinates() bool {
	return v.Lat != 0 || v.Lng != 0
}
