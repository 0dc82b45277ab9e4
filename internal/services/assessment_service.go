package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/soaringjerry/Resilience/internal/models"
)

// DefaultOrganizationName is stored when the user leaves the name blank.
const DefaultOrganizationName = "My organization"

// RecordStore abstracts persistence of completed assessments.
// Insert assigns ID and CreatedAt. Query returns the user's records ascending
// by CreatedAt, then ID. Delete returns ErrNotFound for missing or foreign ids.
type RecordStore interface {
	Insert(ctx context.Context, in models.AssessmentRecordInput) (*models.AssessmentRecord, error)
	Query(ctx context.Context, userID string) ([]models.AssessmentRecord, error)
	Delete(ctx context.Context, userID string, id int64) error
}

// UserProvider resolves the authenticated user for a request, or nil.
type UserProvider interface {
	CurrentUser(ctx context.Context) *User
}

type SessionState string

const (
	StateEmpty      SessionState = "empty"
	StateInProgress SessionState = "in_progress"
	StateComplete   SessionState = "complete"
	StateSubmitted  SessionState = "submitted"
)

// Session is one user's in-progress assessment. Its mutex serializes answer
// events and submission.
type Session struct {
	ID      string
	OwnerID string

	mu       sync.Mutex
	answers  models.AnswerSet
	record   *models.AssessmentRecord
	lastUsed time.Time
}

// SessionView is a consistent snapshot of a session for callers.
type SessionView struct {
	ID      string                   `json:"id"`
	State   SessionState             `json:"state"`
	Answers models.AnswerSet         `json:"answers"`
	Result  Result                   `json:"result"`
	Record  *models.AssessmentRecord `json:"record,omitempty"`
}

// SubmitRequest carries the user-supplied fields of a submission.
type SubmitRequest struct {
	SessionID        string
	OrganizationName string
	// DefaultName overrides DefaultOrganizationName, e.g. with a localized placeholder.
	DefaultName string
}

// IncompleteError reports which questions still need an answer.
type IncompleteError struct {
	Missing []int
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("%s: %d unanswered", ErrIncompleteAssessment, len(e.Missing))
}

func (e *IncompleteError) Unwrap() error { return ErrIncompleteAssessment }

// AssessmentService hosts the answer/submit workflow without HTTP concerns.
type AssessmentService struct {
	engine       *Engine
	store        RecordStore
	users        UserProvider
	logger       *slog.Logger
	now          func() time.Time
	idGenerator  func() string
	sessionTTL   time.Duration
	storeTimeout time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

type AssessmentOption func(*AssessmentService)

func WithSessionTTL(d time.Duration) AssessmentOption {
	return func(s *AssessmentService) { s.sessionTTL = d }
}

func WithStoreTimeout(d time.Duration) AssessmentOption {
	return func(s *AssessmentService) { s.storeTimeout = d }
}

func WithLogger(l *slog.Logger) AssessmentOption {
	return func(s *AssessmentService) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewAssessmentService(engine *Engine, store RecordStore, users UserProvider, opts ...AssessmentOption) *AssessmentService {
	s := &AssessmentService{
		engine:       engine,
		store:        store,
		users:        users,
		logger:       slog.Default(),
		now:          func() time.Time { return time.Now().UTC() },
		idGenerator:  uuid.NewString,
		sessionTTL:   2 * time.Hour,
		storeTimeout: 10 * time.Second,
		sessions:     map[string]*Session{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AssessmentService) Engine() *Engine { return s.engine }

// Preview scores a raw answer map without creating a session.
func (s *AssessmentService) Preview(answers map[int]int) (Result, error) {
	set := models.AnswerSet{}
	for _, qid := range slices.Sorted(maps.Keys(answers)) {
		next, err := s.engine.RecordAnswer(set, qid, answers[qid])
		if err != nil {
			return Result{}, err
		}
		set = next
	}
	return s.engine.Evaluate(set), nil
}

// StartSession creates an empty session owned by ownerID.
func (s *AssessmentService) StartSession(ctx context.Context, ownerID string) (*SessionView, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, ErrAuthRequired
	}
	now := s.now()
	sess := &Session{ID: s.idGenerator(), OwnerID: ownerID, lastUsed: now}

	s.mu.Lock()
	s.pruneLocked(now)
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "assessment session started", "session", sess.ID, "user", ownerID)
	return s.view(sess), nil
}

// Session returns the current view of a session.
func (s *AssessmentService) Session(_ context.Context, ownerID, sessionID string) (*SessionView, error) {
	sess, err := s.lookup(ownerID, sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastUsed = s.now()
	return s.view(sess), nil
}

// Answer applies one answer event. Rejected answers leave the session unchanged.
func (s *AssessmentService) Answer(_ context.Context, ownerID, sessionID string, questionID, value int) (*SessionView, error) {
	sess, err := s.lookup(ownerID, sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.record != nil {
		return nil, ErrSessionClosed
	}
	next, err := s.engine.RecordAnswer(sess.answers, questionID, value)
	if err != nil {
		return nil, err
	}
	sess.answers = next
	sess.lastUsed = s.now()
	return s.view(sess), nil
}

// Discard drops a session; a new assessment starts from an empty set.
func (s *AssessmentService) Discard(_ context.Context, ownerID, sessionID string) error {
	if _, err := s.lookup(ownerID, sessionID); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}

// Submit persists a completed session. A submitted session returns its
// existing record instead of inserting again.
func (s *AssessmentService) Submit(ctx context.Context, req SubmitRequest) (*SessionView, error) {
	if s.store == nil {
		return nil, errors.New("assessment service store is nil")
	}
	var user *User
	if s.users != nil {
		user = s.users.CurrentUser(ctx)
	}
	if user == nil || user.ID == "" {
		return nil, ErrAuthRequired
	}
	sess, err := s.lookup(user.ID, req.SessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastUsed = s.now()
	if sess.record != nil {
		return s.view(sess), nil
	}
	if missing := s.engine.Missing(sess.answers); len(missing) > 0 {
		return nil, &IncompleteError{Missing: missing}
	}

	in := s.buildRecord(user.ID, req, sess.answers)

	// The insert outlives an abandoned request; at most one record results.
	insertCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.storeTimeout)
	defer cancel()
	rec, err := s.store.Insert(insertCtx, in)
	if err != nil {
		s.logger.ErrorContext(ctx, "assessment insert failed", "session", sess.ID, "user", user.ID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	sess.record = rec
	s.logger.InfoContext(ctx, "assessment submitted", "session", sess.ID, "user", user.ID, "record", rec.ID, "score", rec.Score)
	return s.view(sess), nil
}

func (s *AssessmentService) buildRecord(userID string, req SubmitRequest, answers models.AnswerSet) models.AssessmentRecordInput {
	name := strings.TrimSpace(req.OrganizationName)
	if name == "" {
		name = strings.TrimSpace(req.DefaultName)
	}
	if name == "" {
		name = DefaultOrganizationName
	}
	return models.AssessmentRecordInput{
		UserID:           userID,
		OrganizationName: name,
		Score:            TotalScore(answers),
		Answers:          models.NewAnswerSet(answers.Snapshot()),
		CategoryScores:   ScoresByTitle(s.engine.CategoryScores(answers)),
	}
}

func (s *AssessmentService) lookup(ownerID, sessionID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(s.now())
	sess, ok := s.sessions[sessionID]
	if !ok || sess.OwnerID != ownerID {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// pruneLocked drops idle sessions. Callers hold s.mu.
func (s *AssessmentService) pruneLocked(now time.Time) {
	if s.sessionTTL <= 0 {
		return
	}
	for id, sess := range s.sessions {
		if !sess.mu.TryLock() {
			continue
		}
		idle := now.Sub(sess.lastUsed) > s.sessionTTL
		sess.mu.Unlock()
		if idle {
			delete(s.sessions, id)
		}
	}
}

// view must be called with sess.mu held, or before the session is shared.
func (s *AssessmentService) view(sess *Session) *SessionView {
	return &SessionView{
		ID:      sess.ID,
		State:   s.state(sess),
		Answers: sess.answers,
		Result:  s.engine.Evaluate(sess.answers),
		Record:  sess.record,
	}
}

func (s *AssessmentService) state(sess *Session) SessionState {
	switch {
	case sess.record != nil:
		return StateSubmitted
	case sess.answers.Len() == 0:
		return StateEmpty
	case s.engine.IsComplete(sess.answers):
		return StateComplete
	default:
		return StateInProgress
	}
}
