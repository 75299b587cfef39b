package index

import (
	"sort"
	"strings"

	"github.com/oceandata/argo-explorer/internal/argo"
)

// SearchDateRange returns the slice of records whose observation date lies
// within [startDate, endDate], both inclusive calendar dates in
// YYYY-MM-DD form. The result preserves ascending date order and shares
// backing storage with the snapshot; callers must not mutate it.
func SearchDateRange(snap *Snapshot, startDate, endDate string) []argo.ProfileRecord {
	// Index dates are fixed-width YYYYMMDDHHMMSS, so padding the calendar
	// dates to day boundaries makes lexicographic comparison chronological.
	lower := strings.ReplaceAll(startDate, "-", "") + "000000"
	upper := strings.ReplaceAll(endDate, "-", "") + "235959"

	records := snap.ByDate
	left := sort.Search(len(records), func(i int) bool {
		return records[i].Date >= lower
	})
	right := sort.Search(len(records), func(i int) bool {
		return records[i].Date > upper
	})

	return records[left:right]
}

// FilterBounds keeps the records whose position falls inside the bounding
// box, boundaries included. Linear scan; the input is already narrowed by
// the date filter.
func FilterBounds(records []argo.ProfileRecord, bounds argo.Bounds) []argo.ProfileRecord {
	var out []argo.ProfileRecord
	for _, rec := range records {
		if bounds.Contains(rec.Lat, rec.Lon) {
			out = append(out, rec)
		}
	}
	return out
}
