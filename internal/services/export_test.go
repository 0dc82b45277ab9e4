package services

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/soaringjerry/Resilience/internal/models"
)

func readCSV(b []byte) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(string(b)))
	return r.ReadAll()
}

func TestExportHistoryCSV(t *testing.T) {
	e := defaultEngine(t)
	set := fill(t, e, 3)
	cat := e.Catalog()
	records := []models.AssessmentRecord{{
		ID:               4,
		CreatedAt:        time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		OrganizationName: "Acme, Inc.",
		Score:            TotalScore(set),
		Answers:          set,
		CategoryScores:   ScoresByTitle(e.CategoryScores(set)),
	}}

	b, err := ExportHistoryCSV(records, cat.Categories(), cat.Tiers())
	if err != nil {
		t.Fatalf("export history: %v", err)
	}
	recs, err := readCSV(b)
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("want 2 rows, got %d", len(recs))
	}
	if got := strings.Join(recs[0][:5], ","); got != "id,created_at,organization,score,tier" {
		t.Fatalf("bad header: %s", got)
	}
	if len(recs[0]) != 5+len(cat.Categories()) {
		t.Fatalf("header width = %d", len(recs[0]))
	}
	row := recs[1]
	if row[0] != "4" || row[1] != "2024-01-02T03:04:05Z" || row[2] != "Acme, Inc." || row[3] != "120" || row[4] != "Resilient" {
		t.Fatalf("unexpected row: %v", row)
	}
	if row[5] != "15" {
		t.Fatalf("first category = %s, want 15", row[5])
	}
}

func TestExportAnswersCSV(t *testing.T) {
	set := models.NewAnswerSet(map[int]int{2: 4, 1: 5})
	records := []models.AssessmentRecord{{ID: 9, CreatedAt: time.Unix(0, 0), Answers: set}}
	b, err := ExportAnswersCSV(records)
	if err != nil {
		t.Fatalf("export answers: %v", err)
	}
	recs, err := readCSV(b)
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("want 3 rows, got %d", len(recs))
	}
	if got := strings.Join(recs[1], ","); got != "9,1,5,1970-01-01T00:00:00Z" {
		t.Fatalf("first row = %s", got)
	}
	if got := strings.Join(recs[2], ","); got != "9,2,4,1970-01-01T00:00:00Z" {
		t.Fatalf("second row = %s", got)
	}
}
