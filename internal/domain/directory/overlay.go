package directory

import "github.com/chargedrops/chargedrops-api/internal/types"

// MergeOverlay combines live place attributes with the venue's cached
// snapshot. Field-level precedence: the live value wins when present, else
// the stored value, else a neutral default (a rating of 0 renders no stars).
func MergeOverlay(v types.Venue, details *types.PlaceDetails) types.LiveOverlay {
	overlay := types.LiveOverlay{
		VenueID:          v.ID,
		Rating:           v.Rating,
		UserRatingsTotal: v.UserRatingsTotal,
	}
	if details == nil {
		return overlay
	}

	overlay.OpenNow = details.OpenNow
	if details.Rating > 0 {
		overlay.Rating = details.Rating
	}
	if details.UserRatingsTotal > 0 {
		overlay.UserRatingsTotal = details.UserRatingsTotal
	}
	return overlay
}
