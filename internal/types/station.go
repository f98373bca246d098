package types

// Station is an individual physical charging unit inventory record.
// Invariant: Assigned agrees with whether some venue's stationDetails
// references the station; the venue save path maintains this in one
// transaction.
type Station struct {
	ID       string `json:"id"`
	Code     string `json:"stationid"`
	Assigned bool   `json:"Assigned"`
}
