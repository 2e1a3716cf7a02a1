package services

import (
	"context"
	"fmt"
	"log"

	"festa-events-pipeline/internal/models"
)

// EventFeed is the raw-record source side of the pipeline.
type EventFeed interface {
	Fetch(ctx context.Context) []models.RawEvent
}

// EventSink receives adapted events and answers the dedup query. Implemented
// by the warehouse and document sinks.
type EventSink interface {
	// ExistingSourceIDs returns the source identifiers already stored.
	ExistingSourceIDs(ctx context.Context) (map[string]struct{}, error)
	// InsertEvent stores one adapted event.
	InsertEvent(ctx context.Context, event *models.Event) error
}

// Report summarizes one pipeline run.
type Report struct {
	RunID        string              `json:"run_id"`
	Fetched      int                 `json:"fetched"`
	Existing     int                 `json:"existing"`
	Adapted      []*models.Event     `json:"adapted"`
	Rejected     []*models.Rejection `json:"rejected"`
	Inserted     int                 `json:"inserted"`
	InsertFailed int                 `json:"insert_failed"`
}

// Pipeline orchestrates one batch run: fetch the feed, route already-known
// records aside, adapt the rest, and hand survivors to the sink. Strictly
// sequential; the whole feed is held in memory, which is fine at observed
// feed sizes.
type Pipeline struct {
	feed    EventFeed
	adapter *Adapter
	sink    EventSink
}

// NewPipeline wires a feed, an adapter and a sink together. The sink may be
// nil, in which case adapted events are reported but not persisted.
func NewPipeline(feed EventFeed, adapter *Adapter, sink EventSink) *Pipeline {
	return &Pipeline{feed: feed, adapter: adapter, sink: sink}
}

// Run executes one batch. Per-record sink failures are logged and counted but
// do not abort the remaining batch; the run is best-effort, not transactional.
func (p *Pipeline) Run(ctx context.Context, runID string) (*Report, error) {
	report := &Report{RunID: runID}

	graph := p.feed.Fetch(ctx)
	report.Fetched = len(graph)
	log.Printf("pipeline %s: fetched %d records", runID, len(graph))

	existing := make(map[string]struct{})
	if p.sink != nil {
		ids, err := p.sink.ExistingSourceIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("load existing source ids: %w", err)
		}
		existing = ids
	}

	for _, raw := range graph {
		if _, known := existing[raw.SourceID()]; known && raw.SourceID() != "" {
			report.Existing++
			continue
		}

		event, rejection := p.adapter.Adapt(ctx, raw)
		if rejection != nil {
			report.Rejected = append(report.Rejected, rejection)
			continue
		}
		report.Adapted = append(report.Adapted, event)

		if p.sink == nil {
			continue
		}
		if err := p.sink.InsertEvent(ctx, event); err != nil {
			report.InsertFailed++
			log.Printf("pipeline %s: insert failed for %q: %v", runID, event.Title, err)
			continue
		}
		report.Inserted++
	}

	log.Printf("pipeline %s: %d existing, %d adapted, %d rejected, %d inserted, %d failed",
		runID, report.Existing, len(report.Adapted), len(report.Rejected), report.Inserted, report.InsertFailed)
	return report, nil
}
