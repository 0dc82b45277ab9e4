package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/soaringjerry/Resilience/internal/models"
)

// HistoryService reads and prunes a user's persisted assessments.
type HistoryService struct {
	engine *Engine
	store  RecordStore
	logger *slog.Logger
}

func NewHistoryService(engine *Engine, store RecordStore, logger *slog.Logger) *HistoryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryService{engine: engine, store: store, logger: logger}
}

// Records returns the user's records ascending by time.
func (s *HistoryService) Records(ctx context.Context, userID string) ([]models.AssessmentRecord, error) {
	if userID == "" {
		return nil, ErrAuthRequired
	}
	recs, err := s.store.Query(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return OrderedByTime(recs), nil
}

func (s *HistoryService) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	recs, err := s.Records(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Summarize(recs), nil
}

// Summarize builds a dashboard over an already loaded view.
func (s *HistoryService) Summarize(records []models.AssessmentRecord) *Dashboard {
	cat := s.engine.Catalog()
	d := Summarize(records, cat.Tiers(), cat.MaxScore())
	return &d
}

// Delete removes a record from the store and then from view. When the store
// call fails, view is returned unchanged together with the error.
func (s *HistoryService) Delete(ctx context.Context, userID string, id int64, view []models.AssessmentRecord) ([]models.AssessmentRecord, error) {
	if userID == "" {
		return view, ErrAuthRequired
	}
	if err := s.store.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return view, err
		}
		s.logger.ErrorContext(ctx, "assessment delete failed", "user", userID, "record", id, "error", err)
		return view, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	s.logger.InfoContext(ctx, "assessment deleted", "user", userID, "record", id)
	return Remove(view, id), nil
}

// Export renders the user's history as CSV. Format "long" lists individual
// answers; anything else gives one row per assessment.
func (s *HistoryService) Export(ctx context.Context, userID, format string) ([]byte, error) {
	recs, err := s.Records(ctx, userID)
	if err != nil {
		return nil, err
	}
	if format == "long" {
		return ExportAnswersCSV(recs)
	}
	cat := s.engine.Catalog()
	return ExportHistoryCSV(recs, cat.Categories(), cat.Tiers())
}
