package domain

import "time"

// Overlap records an active booking that shares time with a candidate on the same resource.
type Overlap struct {
	WithBookingID string
	ResourceID    string
	UserID        string
	Start         time.Time
	End           time.Time
}

// DetectOverlaps returns the active bookings in existing that intersect the candidate's
// time range on the same resource. The candidate itself is skipped by id.
func DetectOverlaps(existing []Booking, candidate Booking) []Overlap {
	var overlaps []Overlap
	for _, other := range existing {
		if other.ID != "" && other.ID == candidate.ID {
			continue
		}
		if other.ResourceID != candidate.ResourceID || !other.Status.Active() {
			continue
		}
		if !intersects(other.Start, other.End, candidate.Start, candidate.End) {
			continue
		}
		overlaps = append(overlaps, Overlap{
			WithBookingID: other.ID,
			ResourceID:    other.ResourceID,
			UserID:        other.UserID,
			Start:         other.Start,
			End:           other.End,
		})
	}
	return overlaps
}

func intersects(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}
