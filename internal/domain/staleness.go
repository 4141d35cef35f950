package domain

import "time"

// StaleAfter is how long synced prices are shown without a "price updating" hint.
const StaleAfter = 24 * time.Hour

// IsStale reports whether prices synced at lastSyncedAt need refreshing at now.
// Never-synced rows are stale.
func IsStale(lastSyncedAt *time.Time, now time.Time) bool {
	if lastSyncedAt == nil {
		return true
	}
	return now.Sub(*lastSyncedAt) > StaleAfter
}
