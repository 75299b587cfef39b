// Package session drives one query end to end: range search, per-candidate
// download and extraction, progress reporting, and final aggregation.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/oceandata/argo-explorer/internal/argo"
	"github.com/oceandata/argo-explorer/internal/extract"
	"github.com/oceandata/argo-explorer/internal/index"
	"github.com/oceandata/argo-explorer/internal/report"
)

var (
	// ErrNoProfiles means the date and geo filters matched nothing.
	ErrNoProfiles = errors.New("no profiles found in selection")

	// ErrNoData means candidates matched but none yielded usable rows.
	ErrNoData = errors.New("no valid data extracted")
)

// IndexLoader provides the immutable profile index snapshot.
type IndexLoader interface {
	Load(ctx context.Context) (*index.Snapshot, error)
}

// Fetcher returns a local path for an archive-relative file identifier.
type Fetcher interface {
	Fetch(ctx context.Context, fileID string) (string, error)
}

// Options select the operating mode for one run. Limit caps the candidate
// set (0 = unbounded); Progress, when set, receives one human-readable
// notice per milestone and per candidate.
type Options struct {
	Limit    int
	Progress func(message string)
}

// Outcome records how one candidate fared; failures are absorbed here
// rather than aborting the batch.
type Outcome struct {
	Record argo.ProfileRecord
	Rows   int
	Err    error
}

// Result is the terminal payload of a completed session.
type Result struct {
	CSV      string
	Filename string
	Profiles int
	Rows     int
	Outcomes []Outcome
}

// Orchestrator runs query sessions against shared process-wide state. Safe
// for concurrent use: the snapshot is read-only and the cache coordinates
// its own writes.
type Orchestrator struct {
	index     IndexLoader
	cache     Fetcher
	extractor extract.Extractor
}

// New creates an Orchestrator.
func New(idx IndexLoader, cache Fetcher, extractor extract.Extractor) *Orchestrator {
	return &Orchestrator{
		index:     idx,
		cache:     cache,
		extractor: extractor,
	}
}

// Run executes one session. Candidates are processed strictly in date
// order, one at a time; a candidate failure is logged and skipped, never
// fatal. Returns ErrNoProfiles or ErrNoData for the two empty terminal
// states, the context error on cancellation, or the index load error.
func (o *Orchestrator) Run(ctx context.Context, req argo.ProcessRequest, opts Options) (*Result, error) {
	sid := uuid.NewString()[:8]
	progress := opts.Progress
	if progress == nil {
		progress = func(string) {}
	}

	snap, err := o.index.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}

	byDate := index.SearchDateRange(snap, req.Params.StartDate, req.Params.EndDate)
	progress(fmt.Sprintf("Date filter found %d candidates.", len(byDate)))

	candidates := index.FilterBounds(byDate, req.Bounds)
	progress(fmt.Sprintf("Geo filter reduced to %d profiles.", len(candidates)))

	if len(candidates) == 0 {
		return nil, ErrNoProfiles
	}

	if opts.Limit > 0 && len(candidates) > opts.Limit {
		progress(fmt.Sprintf("Limiting to the first %d profiles.", opts.Limit))
		candidates = candidates[:opts.Limit]
	}

	sel := extract.Selection{
		Set:      req.Params.Type,
		MinDepth: req.Params.MinDepth,
		MaxDepth: req.Params.MaxDepth,
	}

	var rows []argo.MeasurementRow
	outcomes := make([]Outcome, 0, len(candidates))

	for i, rec := range candidates {
		if err := ctx.Err(); err != nil {
			// Cancelled sessions produce no output.
			log.Printf("session %s: cancelled after %d of %d candidates", sid, i, len(candidates))
			return nil, err
		}

		progress(fmt.Sprintf("Processing %s (%d/%d)...", rec.File, i+1, len(candidates)))

		extracted, err := o.processCandidate(ctx, rec, sel)
		outcome := Outcome{Record: rec, Rows: len(extracted), Err: err}
		outcomes = append(outcomes, outcome)

		if err != nil {
			log.Printf("session %s: candidate %s failed: %v", sid, rec.File, err)
			progress(fmt.Sprintf("Skipping %s: %v", rec.File, err))
			continue
		}
		rows = append(rows, extracted...)
	}

	if len(rows) == 0 {
		return nil, ErrNoData
	}

	result := &Result{
		CSV:      report.Combine(rows),
		Filename: report.Filename(req.Params.Type, len(candidates)),
		Profiles: len(candidates),
		Rows:     len(rows),
		Outcomes: outcomes,
	}
	log.Printf("session %s: completed with %d rows from %d profiles", sid, result.Rows, result.Profiles)
	return result, nil
}

// processCandidate downloads one profile file, extracts its levels, and
// joins them with the record's metadata.
func (o *Orchestrator) processCandidate(ctx context.Context, rec argo.ProfileRecord, sel extract.Selection) ([]argo.MeasurementRow, error) {
	local, err := o.cache.Fetch(ctx, rec.File)
	if err != nil {
		return nil, err
	}

	levels, err := o.extractor.Extract(local, sel)
	if err != nil {
		return nil, err
	}

	platform, cycle := argo.ParseProfileFilename(rec.File)
	rows := make([]argo.MeasurementRow, 0, len(levels))
	for _, lvl := range levels {
		rows = append(rows, argo.MeasurementRow{
			Depth:       lvl.Depth,
			Values:      lvl.Values,
			Flags:       lvl.Flags,
			Date:        rec.Date,
			Lat:         rec.Lat,
			Lon:         rec.Lon,
			File:        rec.File,
			PlatformID:  platform,
			CycleNumber: cycle,
			Institution: rec.Institution,
			Ocean:       rec.Ocean,
		})
	}
	return rows, nil
}
