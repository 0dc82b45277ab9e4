package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

type PostgresStore struct {
	sqlStore
}

var postgresQueries = queries{
	insertAssessment: `INSERT INTO assessments (user_id, created_at, organization_name, score, answers, category_scores)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
	listAssessments: `SELECT id, user_id, created_at, organization_name, score, answers, category_scores
FROM assessments WHERE user_id = $1 ORDER BY created_at ASC, id ASC`,
	deleteAssessment: `DELETE FROM assessments WHERE id = $1 AND user_id = $2`,
	findUser:         `SELECT id, email, pass_hash, created_at FROM users WHERE email = $1`,
	insertUser:       `INSERT INTO users (id, email, pass_hash, created_at) VALUES ($1, $2, $3, $4)`,
}

func OpenPostgres(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{sqlStore{
		db:       db,
		q:        postgresQueries,
		now:      func() time.Time { return time.Now().UTC() },
		isUnique: isPostgresUnique,
	}}
}

// unique_violation
const pgUniqueViolation = "23505"

func isPostgresUnique(err error) bool {
	var pe *pq.Error
	if errors.As(err, &pe) {
		return pe.Code == pgUniqueViolation
	}
	return false
}
