package drop

import "time"

// IsActive reports whether a drop is currently free to claim: the drop
// time has passed and nobody has claimed it. Every place that needs
// "is this item free right now" (listings, detail, checkout) must go
// through this function rather than re-derive the condition.
func IsActive(dropAt time.Time, claimedAt *time.Time, now time.Time) bool {
	return !now.Before(dropAt) && claimedAt == nil
}
