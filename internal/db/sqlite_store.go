package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"
)

type SQLiteStore struct {
	sqlStore
}

var sqliteQueries = queries{
	insertAssessment: `INSERT INTO assessments (user_id, created_at, organization_name, score, answers, category_scores)
VALUES (?, ?, ?, ?, ?, ?) RETURNING id`,
	listAssessments: `SELECT id, user_id, created_at, organization_name, score, answers, category_scores
FROM assessments WHERE user_id = ? ORDER BY created_at ASC, id ASC`,
	deleteAssessment: `DELETE FROM assessments WHERE id = ? AND user_id = ?`,
	findUser:         `SELECT id, email, pass_hash, created_at FROM users WHERE email = ?`,
	insertUser:       `INSERT INTO users (id, email, pass_hash, created_at) VALUES (?, ?, ?, ?)`,
}

// OpenSQLite opens (creating if needed) the database file at path.
func OpenSQLite(path string) (*sql.DB, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return db, nil
}

// sqliteDSN sets the pragmas as connection parameters so every pooled
// connection gets them, not only the one that happened to run a PRAGMA.
func sqliteDSN(path string) string {
	return fmt.Sprintf("file:%s?cache=shared&_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL",
		filepath.ToSlash(path))
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	return &SQLiteStore{sqlStore{
		db:       db,
		q:        sqliteQueries,
		now:      func() time.Time { return time.Now().UTC() },
		isUnique: isSQLiteUnique,
	}}, nil
}

func isSQLiteUnique(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
