package index

import (
	"testing"

	"github.com/oceandata/argo-explorer/internal/argo"
)

func snapshotOf(records ...argo.ProfileRecord) *Snapshot {
	return &Snapshot{ByDate: records}
}

func rec(file, date string, lat, lon float64) argo.ProfileRecord {
	return argo.ProfileRecord{File: file, Date: date, Lat: lat, Lon: lon}
}

func TestSearchDateRange(t *testing.T) {
	snap := snapshotOf(
		rec("a", "20221231235959", 0, 0),
		rec("b", "20230101000000", 0, 0),
		rec("c", "20230315120000", 0, 0),
		rec("d", "20230601235959", 0, 0),
		rec("e", "20230602000000", 0, 0),
	)

	got := SearchDateRange(snap, "2023-01-01", "2023-06-01")
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	if got[0].File != "b" || got[2].File != "d" {
		t.Errorf("unexpected slice boundaries: %v ... %v", got[0].File, got[2].File)
	}

	// Ascending date order is preserved.
	for i := 1; i < len(got); i++ {
		if got[i-1].Date > got[i].Date {
			t.Errorf("records out of order at %d: %s > %s", i, got[i-1].Date, got[i].Date)
		}
	}
}

func TestSearchDateRangeEmpty(t *testing.T) {
	snap := snapshotOf(
		rec("a", "20230101000000", 0, 0),
	)

	if got := SearchDateRange(snap, "2024-01-01", "2024-12-31"); len(got) != 0 {
		t.Errorf("expected empty result, got %d records", len(got))
	}
	if got := SearchDateRange(&Snapshot{}, "2023-01-01", "2023-12-31"); len(got) != 0 {
		t.Errorf("expected empty result on empty snapshot, got %d", len(got))
	}
}

func TestFilterBoundsClosedIntervals(t *testing.T) {
	records := []argo.ProfileRecord{
		rec("on-south-west", "20230101000000", 40, 45),
		rec("on-north-east", "20230101000001", 55, 65),
		rec("inside", "20230101000002", 50, 60),
		rec("lat-out", "20230101000003", 39.99, 60),
		rec("lon-out", "20230101000004", 50, 65.01),
	}
	bounds := argo.Bounds{North: 55, South: 40, East: 65, West: 45}

	got := FilterBounds(records, bounds)
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	for _, r := range got {
		if r.File == "lat-out" || r.File == "lon-out" {
			t.Errorf("record %s should have been filtered out", r.File)
		}
	}
}

// Mirrors the reference selection: two records, only the second falls in
// both the date range and the box.
func TestDateAndGeoSelection(t *testing.T) {
	snap := snapshotOf(
		rec("first", "20230101000000", 10, 20),
		rec("second", "20230601000000", 50, 60),
	)

	byDate := SearchDateRange(snap, "2023-03-01", "2023-12-31")
	got := FilterBounds(byDate, argo.Bounds{North: 55, South: 40, East: 65, West: 45})

	if len(got) != 1 || got[0].File != "second" {
		t.Fatalf("expected exactly the second record, got %v", got)
	}
}
