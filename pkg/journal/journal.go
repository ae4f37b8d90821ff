// Package journal keeps a SQLite log of reinforcement decisions.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS decisions (
	id TEXT PRIMARY KEY,
	session TEXT,
	fen TEXT,
	side TEXT,
	piece TEXT,
	verdict TEXT,
	reason TEXT,
	score REAL,
	threshold REAL,
	evaluation REAL,
	has_evaluation INTEGER,
	square TEXT,
	created_at DATETIME
);
`

type Entry struct {
	ID            string
	Session       string
	FEN           string
	Side          string
	Piece         string
	Verdict       string
	Reason        string
	Score         float64
	Threshold     float64
	Evaluation    float64
	HasEvaluation bool
	Square        string
	CreatedAt     time.Time
}

type Journal struct {
	db *sql.DB
}

// Open creates the database file, its directory and table when missing.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// sqlite allows one writer at a time
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create journal table: %w", err)
	}
	return &Journal{db: db}, nil
}

// Record stores e, filling in the id and timestamp when unset. A nil
// journal records nothing.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	if j == nil {
		return nil
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO decisions (id, session, fen, side, piece, verdict, reason, score, threshold, evaluation, has_evaluation, square, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Session, e.FEN, e.Side, e.Piece, e.Verdict, e.Reason,
		e.Score, e.Threshold, e.Evaluation, e.HasEvaluation, e.Square, e.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("record decision: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if j == nil {
		return nil, nil
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, session, fen, side, piece, verdict, reason, score, threshold, evaluation, has_evaluation, square, created_at
		FROM decisions ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		err := rows.Scan(&e.ID, &e.Session, &e.FEN, &e.Side, &e.Piece, &e.Verdict, &e.Reason,
			&e.Score, &e.Threshold, &e.Evaluation, &e.HasEvaluation, &e.Square, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	return j.db.Close()
}
