package services

import (
	"iter"
	"slices"
	"time"

	"github.com/soaringjerry/Resilience/internal/models"
)

// TrendPoint is one assessment of a user's history as drawn on the trend chart.
type TrendPoint struct {
	At               time.Time `json:"at"`
	Score            int       `json:"score"`
	OrganizationName string    `json:"organization_name"`
}

func compareRecords(a, b models.AssessmentRecord) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	}
	return 0
}

// OrderedByTime returns a copy of records sorted ascending by CreatedAt, then ID.
func OrderedByTime(records []models.AssessmentRecord) []models.AssessmentRecord {
	out := slices.Clone(records)
	slices.SortStableFunc(out, compareRecords)
	return out
}

// Latest returns the record with the greatest CreatedAt; ties go to the greater ID.
func Latest(records []models.AssessmentRecord) (models.AssessmentRecord, bool) {
	if len(records) == 0 {
		return models.AssessmentRecord{}, false
	}
	return slices.MaxFunc(records, compareRecords), true
}

// TrendSeries yields records' scores in ascending time order. The sequence is
// finite and may be ranged over more than once.
func TrendSeries(records []models.AssessmentRecord) iter.Seq[TrendPoint] {
	ordered := OrderedByTime(records)
	return func(yield func(TrendPoint) bool) {
		for _, r := range ordered {
			if !yield(TrendPoint{At: r.CreatedAt, Score: r.Score, OrganizationName: r.OrganizationName}) {
				return
			}
		}
	}
}

// HasTrend reports whether there are enough records to draw a trend.
func HasTrend(records []models.AssessmentRecord) bool {
	return len(records) >= 2
}

// Remove returns records without id. The input slice is not modified.
func Remove(records []models.AssessmentRecord, id int64) []models.AssessmentRecord {
	out := make([]models.AssessmentRecord, 0, len(records))
	for _, r := range records {
		if r.ID != id {
			out = append(out, r)
		}
	}
	return out
}

// HistoryEntry is a record annotated with its tier, for history listings.
type HistoryEntry struct {
	models.AssessmentRecord
	Tier       models.Tier `json:"tier"`
	Percentage int         `json:"percentage"`
}

// Dashboard summarizes a user's assessment history.
type Dashboard struct {
	Count       int            `json:"count"`
	MaxScore    int            `json:"max_score"`
	LatestScore *int           `json:"latest_score,omitempty"`
	LatestTier  *models.Tier   `json:"latest_tier,omitempty"`
	History     []HistoryEntry `json:"history"`
	Trend       []TrendPoint   `json:"trend"`
	HasTrend    bool           `json:"has_trend"`
}

// Summarize builds the dashboard view. History is newest first.
func Summarize(records []models.AssessmentRecord, tiers []models.Tier, maxScore int) Dashboard {
	d := Dashboard{
		Count:    len(records),
		MaxScore: maxScore,
		History:  make([]HistoryEntry, 0, len(records)),
		Trend:    slices.Collect(TrendSeries(records)),
		HasTrend: HasTrend(records),
	}
	if latest, ok := Latest(records); ok {
		score := latest.Score
		tier := Classify(score, tiers)
		d.LatestScore = &score
		d.LatestTier = &tier
	}
	ordered := OrderedByTime(records)
	for i := len(ordered) - 1; i >= 0; i-- {
		r := ordered[i]
		d.History = append(d.History, HistoryEntry{
			AssessmentRecord: r,
			Tier:             Classify(r.Score, tiers),
			Percentage:       percentOf(r.Score, maxScore),
		})
	}
	return d
}
