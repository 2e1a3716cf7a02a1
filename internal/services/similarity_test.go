package services

import (
	"math"
	"testing"

	"festa-events-pipeline/internal/models"
)

func TestJaccardSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want float64
	}{
		{"identical", []string{"fête", "de", "village"}, []string{"fête", "de", "village"}, 1},
		{"disjoint", []string{"carnaval"}, []string{"feria"}, 0},
		{"half overlap", []string{"fête", "village"}, []string{"fête", "communale", "village", "animations"}, 0.5},
		{"both empty", nil, nil, 1},
		{"one empty", []string{"fête"}, nil, 0},
		{"duplicates collapse", []string{"fête", "fête"}, []string{"fête"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JaccardSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("JaccardSimilarity(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestJaccardSimilaritySymmetric(t *testing.T) {
	a := []string{"fête", "patronale", "de", "saint", "maurice"}
	b := []string{"fête", "de", "saint", "maurice", "sur", "moselle"}
	if JaccardSimilarity(a, b) != JaccardSimilarity(b, a) {
		t.Error("Expected symmetric similarity")
	}
}

func TestEventSimilarityIdenticalEvents(t *testing.T) {
	event := &models.Event{
		Title:     "Fête patronale de Saint Maurice",
		City:      "Saint-Maurice-sur-Moselle",
		StartDate: "2026-09-20",
		EndDate:   "2026-09-21",
	}
	if got := EventSimilarity(event, event); got != 1 {
		t.Errorf("Expected 1 for identical events, got %v", got)
	}
}

func TestEventSimilarityLikelyDuplicate(t *testing.T) {
	// Same event listed twice with slightly different titles and a day's
	// difference in end date should score well above the review threshold.
	a := &models.Event{
		Title:     "Fête patronale de Saint Maurice",
		City:      "Saint-Maurice-sur-Moselle",
		StartDate: "2026-09-20",
		EndDate:   "2026-09-21",
	}
	b := &models.Event{
		Title:     "Fête patronale de Saint Maurice sur Moselle",
		City:      "saint-maurice-sur-moselle",
		StartDate: "2026-09-20",
		EndDate:   "2026-09-22",
	}

	got := EventSimilarity(a, b)
	if got <= 0.8 {
		t.Errorf("Expected score above 0.8 for near-duplicate, got %v", got)
	}
	if sym := EventSimilarity(b, a); math.Abs(got-sym) > 1e-9 {
		t.Errorf("Expected symmetric score, got %v and %v", got, sym)
	}
}

func TestEventSimilarityUnrelatedEvents(t *testing.T) {
	a := &models.Event{
		Title:     "Carnaval de Granville",
		City:      "Granville",
		StartDate: "2026-02-15",
		EndDate:   "2026-02-17",
	}
	b := &models.Event{
		Title:     "Feria de Dax",
		City:      "Dax",
		StartDate: "2026-08-12",
		EndDate:   "2026-08-16",
	}

	if got := EventSimilarity(a, b); got > 0.2 {
		t.Errorf("Expected near-zero score for unrelated events months apart, got %v", got)
	}
}

func TestDateSimilarityClampsAtZero(t *testing.T) {
	// A gap over 30 days must clamp to 0 rather than go negative
	if got := dateSimilarity("2026-01-01", "2026-06-01"); got != 0 {
		t.Errorf("Expected clamp at 0, got %v", got)
	}
	if got := dateSimilarity("2026-01-01", "2026-01-01"); got != 1 {
		t.Errorf("Expected 1 for same day, got %v", got)
	}
	if got := dateSimilarity("2026-01-01", "2026-01-16"); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("Expected 0.5 for 15-day gap, got %v", got)
	}
	if got := dateSimilarity("not a date", "2026-01-01"); got != 0 {
		t.Errorf("Expected 0 for unparsable date, got %v", got)
	}
}
