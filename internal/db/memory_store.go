package db

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/soaringjerry/Resilience/internal/models"
	"github.com/soaringjerry/Resilience/internal/services"
)

// MemoryStore keeps records and users in process memory.
type MemoryStore struct {
	mu           sync.RWMutex
	nextID       int64
	records      []models.AssessmentRecord
	usersByEmail map[string]*services.User
	now          func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		usersByEmail: map[string]*services.User{},
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) Insert(_ context.Context, in models.AssessmentRecordInput) (*models.AssessmentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	r := models.AssessmentRecord{
		ID:               s.nextID,
		UserID:           in.UserID,
		CreatedAt:        s.now(),
		OrganizationName: in.OrganizationName,
		Score:            in.Score,
		Answers:          models.NewAnswerSet(in.Answers.Snapshot()),
		CategoryScores:   copyScores(in.CategoryScores),
	}
	s.records = append(s.records, r)
	out := r
	out.CategoryScores = copyScores(r.CategoryScores)
	return &out, nil
}

func (s *MemoryStore) Query(_ context.Context, userID string) ([]models.AssessmentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.AssessmentRecord
	for _, r := range s.records {
		if r.UserID == userID {
			r.CategoryScores = copyScores(r.CategoryScores)
			out = append(out, r)
		}
	}
	return services.OrderedByTime(out), nil
}

func (s *MemoryStore) Delete(_ context.Context, userID string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.records, func(r models.AssessmentRecord) bool {
		return r.ID == id && r.UserID == userID
	})
	if i < 0 {
		return services.ErrNotFound
	}
	s.records = slices.Delete(s.records, i, i+1)
	return nil
}

func (s *MemoryStore) FindUserByEmail(_ context.Context, email string) (*services.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.usersByEmail[email]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) AddUser(_ context.Context, u *services.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.usersByEmail[u.Email]; ok {
		return services.ErrEmailTaken
	}
	cp := *u
	s.usersByEmail[u.Email] = &cp
	return nil
}
