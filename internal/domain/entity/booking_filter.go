package entity

import "time"

// BookingFilter is a domain-level filter for querying bookings.
// Used by repository layer to avoid coupling with delivery DTOs.
type BookingFilter struct {
	Status    BookingStatus
	StartDate *time.Time // inclusive lower bound on Date
	EndDate   *time.Time // inclusive upper bound on Date
	Page      int
	Limit     int
}

// Offset returns the number of rows to skip for the current page.
func (f BookingFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}
