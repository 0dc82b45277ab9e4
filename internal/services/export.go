package services

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	"github.com/soaringjerry/Resilience/internal/models"
)

// ExportHistoryCSV renders one row per record in the given order, with one
// column per category after the fixed columns.
func ExportHistoryCSV(records []models.AssessmentRecord, categories []models.Category, tiers []models.Tier) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"id", "created_at", "organization", "score", "tier"}
	for _, c := range categories {
		header = append(header, c.Title)
	}
	_ = w.Write(header)
	for _, r := range records {
		row := make([]string, 0, len(header))
		row = append(row,
			strconv.FormatInt(r.ID, 10),
			r.CreatedAt.UTC().Format(time.RFC3339),
			r.OrganizationName,
			strconv.Itoa(r.Score),
			Classify(r.Score, tiers).Title,
		)
		for _, c := range categories {
			row = append(row, strconv.Itoa(r.CategoryScores[c.Title]))
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// ExportAnswersCSV renders a long-format CSV with one row per answered question.
func ExportAnswersCSV(records []models.AssessmentRecord) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"record_id", "question_id", "value", "submitted_at"})
	for _, r := range records {
		at := r.CreatedAt.UTC().Format(time.RFC3339)
		for _, qid := range r.Answers.QuestionIDs() {
			v, _ := r.Answers.Value(qid)
			rec := []string{strconv.FormatInt(r.ID, 10), strconv.Itoa(qid), strconv.Itoa(v), at}
			if err := w.Write(rec); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
