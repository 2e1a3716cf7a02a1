package services

import (
	"context"
	"errors"
	"testing"

	"festa-events-pipeline/internal/models"
)

type fakeFeed struct {
	graph []models.RawEvent
}

func (f fakeFeed) Fetch(context.Context) []models.RawEvent { return f.graph }

type fakeSink struct {
	existing    map[string]struct{}
	existingErr error
	insertErr   error
	inserted    []*models.Event
}

func (s *fakeSink) ExistingSourceIDs(context.Context) (map[string]struct{}, error) {
	if s.existingErr != nil {
		return nil, s.existingErr
	}
	if s.existing == nil {
		return map[string]struct{}{}, nil
	}
	return s.existing, nil
}

func (s *fakeSink) InsertEvent(ctx context.Context, event *models.Event) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.inserted = append(s.inserted, event)
	return nil
}

func rawEventWithID(id string) models.RawEvent {
	raw := validRawEvent()
	raw["@id"] = id
	return raw
}

func TestPipelineRun(t *testing.T) {
	rejected := validRawEvent()
	rejected["rdfs:label"] = map[string]interface{}{"@value": "Visite du château"}

	feed := fakeFeed{graph: []models.RawEvent{
		rawEventWithID("evt/new-1"),
		rawEventWithID("evt/known"),
		rejected,
		rawEventWithID("evt/new-2"),
	}}
	sink := &fakeSink{existing: map[string]struct{}{"evt/known": {}}}

	pipeline := NewPipeline(feed, newTestAdapter(NopRegionResolver{}), sink)
	report, err := pipeline.Run(context.Background(), "run_test")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Fetched != 4 {
		t.Errorf("Expected 4 fetched, got %d", report.Fetched)
	}
	if report.Existing != 1 {
		t.Errorf("Expected 1 existing, got %d", report.Existing)
	}
	if len(report.Adapted) != 2 {
		t.Errorf("Expected 2 adapted, got %d", len(report.Adapted))
	}
	if len(report.Rejected) != 1 {
		t.Errorf("Expected 1 rejected, got %d", len(report.Rejected))
	}
	if report.Inserted != 2 || report.InsertFailed != 0 {
		t.Errorf("Expected 2 inserted and 0 failed, got %d/%d", report.Inserted, report.InsertFailed)
	}
	if len(sink.inserted) != 2 {
		t.Errorf("Expected sink to receive 2 events, got %d", len(sink.inserted))
	}

	// Known records are skipped before adaptation: they appear in no bucket
	for _, event := range report.Adapted {
		if event.SourceID == "evt/known" {
			t.Error("Known source id must not be adapted")
		}
	}
}

func TestPipelineRunExistingIDsFailureAborts(t *testing.T) {
	feed := fakeFeed{graph: []models.RawEvent{validRawEvent()}}
	sink := &fakeSink{existingErr: errors.New("table unreachable")}

	pipeline := NewPipeline(feed, newTestAdapter(NopRegionResolver{}), sink)
	if _, err := pipeline.Run(context.Background(), "run_test"); err == nil {
		t.Fatal("Expected run to abort when existing ids cannot be loaded")
	}
}

func TestPipelineRunInsertFailuresDoNotAbort(t *testing.T) {
	feed := fakeFeed{graph: []models.RawEvent{
		rawEventWithID("evt/1"),
		rawEventWithID("evt/2"),
	}}
	sink := &fakeSink{insertErr: errors.New("write refused")}

	pipeline := NewPipeline(feed, newTestAdapter(NopRegionResolver{}), sink)
	report, err := pipeline.Run(context.Background(), "run_test")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.InsertFailed != 2 || report.Inserted != 0 {
		t.Errorf("Expected 2 failed and 0 inserted, got %d/%d", report.InsertFailed, report.Inserted)
	}
	if len(report.Adapted) != 2 {
		t.Errorf("Expected failures to stay in the adapted bucket, got %d", len(report.Adapted))
	}
}

func TestPipelineRunWithoutSink(t *testing.T) {
	feed := fakeFeed{graph: []models.RawEvent{rawEventWithID("evt/1")}}

	pipeline := NewPipeline(feed, newTestAdapter(NopRegionResolver{}), nil)
	report, err := pipeline.Run(context.Background(), "run_test")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(report.Adapted) != 1 {
		t.Errorf("Expected 1 adapted in report-only mode, got %d", len(report.Adapted))
	}
	if report.Inserted != 0 {
		t.Errorf("Expected nothing inserted without a sink, got %d", report.Inserted)
	}
}

func TestPipelineRunEmptyFeed(t *testing.T) {
	pipeline := NewPipeline(fakeFeed{}, newTestAdapter(NopRegionResolver{}), &fakeSink{})
	report, err := pipeline.Run(context.Background(), "run_test")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Fetched != 0 || len(report.Adapted) != 0 || len(report.Rejected) != 0 {
		t.Errorf("Expected empty report, got %+v", report)
	}
}
