// Package expiry classifies products into status buckets from their expiry date.
package expiry

import "time"

// StatusName is a display bucket for a product's remaining shelf life.
type StatusName string

const (
	StatusExpired      StatusName = "Expired"
	StatusExpiringSoon StatusName = "Expiring Soon"
	StatusExpiringWeek StatusName = "Expiring This Week"
	StatusFresh        StatusName = "Fresh"
)

// Display colors, matching the badge palette used by the frontend.
const (
	ColorExpired      = "#dc3545"
	ColorExpiringSoon = "#ffc107"
	ColorExpiringWeek = "#fd7e14"
	ColorFresh        = "#28a745"
)

// Status is the derived classification of a product. It is recomputed on every
// read and never persisted.
type Status struct {
	Status StatusName `json:"status"`
	Color  string     `json:"color"`
	// Days is the reported day count: days remaining for non-expired
	// products, days overdue (positive magnitude) for expired ones.
	Days int `json:"days"`
}

// DaysUntil returns the signed whole-day distance from today to the expiry
// date, midnight-to-midnight. Positive means the expiry date is in the future,
// zero means it expires today, negative means it is overdue. Wall-clock hours
// within the day do not matter.
func DaysUntil(expiryDate, today time.Time) int {
	expiry := truncateToDay(expiryDate)
	now := truncateToDay(today)
	return int(expiry.Sub(now).Hours() / 24)
}

// Classify maps an expiry date and the current date to a status bucket:
//
//	days < 0  -> Expired (red), reported as the overdue magnitude
//	0..3      -> Expiring Soon (amber)
//	4..7      -> Expiring This Week (orange)
//	> 7       -> Fresh (green)
//
// Pure and deterministic; every view that shows an expiry badge goes through
// this one function.
func Classify(expiryDate, today time.Time) Status {
	days := DaysUntil(expiryDate, today)

	switch {
	case days < 0:
		return Status{Status: StatusExpired, Color: ColorExpired, Days: -days}
	case days <= 3:
		return Status{Status: StatusExpiringSoon, Color: ColorExpiringSoon, Days: days}
	case days <= 7:
		return Status{Status: StatusExpiringWeek, Color: ColorExpiringWeek, Days: days}
	default:
		return Status{Status: StatusFresh, Color: ColorFresh, Days: days}
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
