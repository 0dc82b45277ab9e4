package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/soaringjerry/Resilience/internal/models"
	"github.com/soaringjerry/Resilience/internal/services"
)

// queries holds the dialect-specific statements of a sqlStore.
type queries struct {
	insertAssessment string
	listAssessments  string
	deleteAssessment string
	findUser         string
	insertUser       string
}

// sqlStore implements the record and user stores over database/sql.
type sqlStore struct {
	db       *sql.DB
	q        queries
	now      func() time.Time
	isUnique func(error) bool
}

func (s *sqlStore) DB() *sql.DB { return s.db }

func (s *sqlStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *sqlStore) Close() error { return s.db.Close() }

func (s *sqlStore) Insert(ctx context.Context, in models.AssessmentRecordInput) (*models.AssessmentRecord, error) {
	answers, err := json.Marshal(in.Answers)
	if err != nil {
		return nil, fmt.Errorf("encode answers: %w", err)
	}
	cats, err := json.Marshal(in.CategoryScores)
	if err != nil {
		return nil, fmt.Errorf("encode category scores: %w", err)
	}
	createdAt := s.now().UTC()
	var id int64
	err = s.db.QueryRowContext(ctx, s.q.insertAssessment,
		in.UserID, createdAt, in.OrganizationName, in.Score, string(answers), string(cats),
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("insert assessment: %w", err)
	}
	return &models.AssessmentRecord{
		ID:               id,
		UserID:           in.UserID,
		CreatedAt:        createdAt,
		OrganizationName: in.OrganizationName,
		Score:            in.Score,
		Answers:          models.NewAnswerSet(in.Answers.Snapshot()),
		CategoryScores:   copyScores(in.CategoryScores),
	}, nil
}

func (s *sqlStore) Query(ctx context.Context, userID string) ([]models.AssessmentRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.q.listAssessments, userID)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	defer rows.Close()

	var out []models.AssessmentRecord
	for rows.Next() {
		var (
			r       models.AssessmentRecord
			answers []byte
			cats    []byte
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.CreatedAt, &r.OrganizationName, &r.Score, &answers, &cats); err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		if err := json.Unmarshal(answers, &r.Answers); err != nil {
			return nil, fmt.Errorf("decode answers of %d: %w", r.ID, err)
		}
		if err := json.Unmarshal(cats, &r.CategoryScores); err != nil {
			return nil, fmt.Errorf("decode category scores of %d: %w", r.ID, err)
		}
		r.CreatedAt = r.CreatedAt.UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *sqlStore) Delete(ctx context.Context, userID string, id int64) error {
	res, err := s.db.ExecContext(ctx, s.q.deleteAssessment, id, userID)
	if err != nil {
		return fmt.Errorf("delete assessment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete assessment: %w", err)
	}
	if n == 0 {
		return services.ErrNotFound
	}
	return nil
}

func (s *sqlStore) FindUserByEmail(ctx context.Context, email string) (*services.User, error) {
	var u services.User
	err := s.db.QueryRowContext(ctx, s.q.findUser, email).Scan(&u.ID, &u.Email, &u.PassHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

func (s *sqlStore) AddUser(ctx context.Context, u *services.User) error {
	_, err := s.db.ExecContext(ctx, s.q.insertUser, u.ID, u.Email, u.PassHash, u.CreatedAt.UTC())
	if err != nil {
		if s.isUnique != nil && s.isUnique(err) {
			return services.ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func copyScores(in map[string]int) map[string]int {
	if in == nil {
		return nil
	}
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
