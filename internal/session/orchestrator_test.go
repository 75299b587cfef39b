package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/oceandata/argo-explorer/internal/argo"
	"github.com/oceandata/argo-explorer/internal/extract"
	"github.com/oceandata/argo-explorer/internal/index"
)

type fakeIndex struct {
	snap *index.Snapshot
	err  error
}

func (f *fakeIndex) Load(ctx context.Context) (*index.Snapshot, error) {
	return f.snap, f.err
}

type fakeFetcher struct {
	failFor map[string]error
	fetched []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, fileID string) (string, error) {
	if err, ok := f.failFor[fileID]; ok {
		return "", err
	}
	f.fetched = append(f.fetched, fileID)
	return "/tmp/" + fileID, nil
}

type fakeExtractor struct {
	levelsFor map[string][]extract.Level
}

func (f *fakeExtractor) Extract(path string, sel extract.Selection) ([]extract.Level, error) {
	for suffix, levels := range f.levelsFor {
		if strings.HasSuffix(path, suffix) {
			return levels, nil
		}
	}
	return nil, nil
}

func level(depth, temp float64) extract.Level {
	return extract.Level{
		Depth:  depth,
		Values: map[string]float64{"TEMP": temp},
		Flags:  map[string]string{"TEMP_QC": "1"},
	}
}

func testSnapshot() *index.Snapshot {
	return &index.Snapshot{ByDate: []argo.ProfileRecord{
		{File: "dac/R1_001.nc", Date: "20230101000000", Lat: 10, Lon: 20, Institution: "AO", Ocean: "A"},
		{File: "dac/R2_001.nc", Date: "20230601000000", Lat: 50, Lon: 60, Institution: "AO", Ocean: "A"},
		{File: "dac/R3_001.nc", Date: "20230701000000", Lat: 51, Lon: 61, Institution: "IF", Ocean: "A"},
	}}
}

func testRequest() argo.ProcessRequest {
	return argo.ProcessRequest{
		Bounds: argo.Bounds{North: 55, South: 40, East: 65, West: 45},
		Params: argo.SearchParams{
			StartDate: "2023-03-01",
			EndDate:   "2023-12-31",
			MinDepth:  0,
			MaxDepth:  2000,
			Type:      argo.VariableSetCore,
		},
	}
}

func TestRunCompletes(t *testing.T) {
	orch := New(
		&fakeIndex{snap: testSnapshot()},
		&fakeFetcher{},
		&fakeExtractor{levelsFor: map[string][]extract.Level{
			"R2_001.nc": {level(10, 14.2)},
			"R3_001.nc": {level(20, 13.1)},
		}},
	)

	var logs []string
	res, err := orch.Run(context.Background(), testRequest(), Options{
		Progress: func(m string) { logs = append(logs, m) },
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if res.Profiles != 2 || res.Rows != 2 {
		t.Errorf("expected 2 profiles / 2 rows, got %d / %d", res.Profiles, res.Rows)
	}
	if res.Filename != "argo_complete_dataset_core_2_profiles.csv" {
		t.Errorf("unexpected filename %q", res.Filename)
	}
	if !strings.Contains(res.CSV, "TEMP") || !strings.Contains(res.CSV, "14.2") {
		t.Errorf("csv missing expected data:\n%s", res.CSV)
	}

	// Summary notices precede per-candidate notices.
	if len(logs) < 4 {
		t.Fatalf("expected filter summaries plus per-candidate notices, got %v", logs)
	}
	if !strings.Contains(logs[0], "Date filter found 2") {
		t.Errorf("first notice should be the date-filter count, got %q", logs[0])
	}
	if !strings.Contains(logs[1], "Geo filter reduced to 2") {
		t.Errorf("second notice should be the geo-filter count, got %q", logs[1])
	}
}

func TestRunNoProfiles(t *testing.T) {
	orch := New(&fakeIndex{snap: testSnapshot()}, &fakeFetcher{}, &fakeExtractor{})

	req := testRequest()
	req.Bounds = argo.Bounds{North: -60, South: -70, East: 10, West: 0}

	_, err := orch.Run(context.Background(), req, Options{})
	if !errors.Is(err, ErrNoProfiles) {
		t.Fatalf("expected ErrNoProfiles, got %v", err)
	}
}

func TestRunNoDataIsDistinct(t *testing.T) {
	// Candidates match but extraction yields nothing anywhere.
	orch := New(&fakeIndex{snap: testSnapshot()}, &fakeFetcher{}, &fakeExtractor{})

	_, err := orch.Run(context.Background(), testRequest(), Options{})
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
	if errors.Is(err, ErrNoProfiles) {
		t.Fatal("ErrNoData must be distinct from ErrNoProfiles")
	}
}

func TestRunContainsCandidateFailure(t *testing.T) {
	fetcher := &fakeFetcher{failFor: map[string]error{
		"dac/R2_001.nc": fmt.Errorf("download failed"),
	}}
	orch := New(
		&fakeIndex{snap: testSnapshot()},
		fetcher,
		&fakeExtractor{levelsFor: map[string][]extract.Level{
			"R3_001.nc": {level(20, 13.1)},
		}},
	)

	var logs []string
	res, err := orch.Run(context.Background(), testRequest(), Options{
		Progress: func(m string) { logs = append(logs, m) },
	})
	if err != nil {
		t.Fatalf("run should complete despite one failure: %v", err)
	}

	if res.Rows != 1 {
		t.Errorf("expected rows from the surviving candidate, got %d", res.Rows)
	}
	if len(res.Outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(res.Outcomes))
	}
	if res.Outcomes[0].Err == nil || res.Outcomes[1].Err != nil {
		t.Errorf("unexpected outcome errors: %v, %v", res.Outcomes[0].Err, res.Outcomes[1].Err)
	}

	var skipped bool
	for _, m := range logs {
		if strings.Contains(m, "Skipping dac/R2_001.nc") {
			skipped = true
		}
	}
	if !skipped {
		t.Errorf("expected a skip notice in the progress log, got %v", logs)
	}
}

func TestRunBoundedLimit(t *testing.T) {
	fetcher := &fakeFetcher{}
	orch := New(
		&fakeIndex{snap: testSnapshot()},
		fetcher,
		&fakeExtractor{levelsFor: map[string][]extract.Level{
			"R2_001.nc": {level(10, 14.2)},
		}},
	)

	res, err := orch.Run(context.Background(), testRequest(), Options{Limit: 1})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Profiles != 1 {
		t.Errorf("expected cap of 1 candidate, got %d", res.Profiles)
	}
	// Date order puts R2 first; R3 must not have been touched.
	if len(fetcher.fetched) != 1 || fetcher.fetched[0] != "dac/R2_001.nc" {
		t.Errorf("unexpected fetches %v", fetcher.fetched)
	}
}

func TestRunCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	orch := New(&fakeIndex{snap: testSnapshot()}, &fakeFetcher{}, &fakeExtractor{})
	res, err := orch.Run(ctx, testRequest(), Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if res != nil {
		t.Error("cancelled session must produce no output")
	}
}

func TestRunIndexLoadFailure(t *testing.T) {
	orch := New(&fakeIndex{err: fmt.Errorf("mirror unreachable")}, &fakeFetcher{}, &fakeExtractor{})

	_, err := orch.Run(context.Background(), testRequest(), Options{})
	if err == nil || errors.Is(err, ErrNoProfiles) || errors.Is(err, ErrNoData) {
		t.Fatalf("index failure must surface as its own error, got %v", err)
	}
}
