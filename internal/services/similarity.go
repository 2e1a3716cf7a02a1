package services

import (
	"math"
	"strings"
	"time"

	"festa-events-pipeline/internal/models"
)

// Similarity scoring between adapted events. Advisory only: nothing merges or
// drops events based on these scores, they feed the offline duplicate review.

// JaccardSimilarity computes the Jaccard index over two word lists treated as
// sets. Two empty lists count as identical.
func JaccardSimilarity(a, b []string) float64 {
	setA := make(map[string]struct{}, len(a))
	for _, w := range a {
		setA[w] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, w := range b {
		setB[w] = struct{}{}
	}

	union := len(setB)
	intersection := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			intersection++
		} else {
			union++
		}
	}
	if union == 0 {
		return 1
	}
	return float64(intersection) / float64(union)
}

// EventSimilarity scores how likely two adapted events describe the same
// real-world event, in [0, 1]. The mean of four components: Jaccard title
// similarity over lowercased word sets, binary city equality, and start/end
// date closeness where a 30-day gap counts as fully dissimilar.
func EventSimilarity(a, b *models.Event) float64 {
	titleSim := JaccardSimilarity(
		strings.Fields(strings.ToLower(a.Title)),
		strings.Fields(strings.ToLower(b.Title)),
	)

	citySim := 0.0
	if strings.EqualFold(a.City, b.City) {
		citySim = 1
	}

	startSim := dateSimilarity(a.StartDate, b.StartDate)
	endSim := dateSimilarity(a.EndDate, b.EndDate)

	return (titleSim + citySim + startSim + endSim) / 4
}

// dateSimilarity maps the day gap between two ISO dates onto [0, 1], clamped
// at 0 for gaps over 30 days. Unparsable dates score 0.
func dateSimilarity(a, b string) float64 {
	ta, errA := time.Parse("2006-01-02", a)
	tb, errB := time.Parse("2006-01-02", b)
	if errA != nil || errB != nil {
		return 0
	}
	days := math.Abs(ta.Sub(tb).Hours() / 24)
	return math.Max(0, 1-days/30)
}
