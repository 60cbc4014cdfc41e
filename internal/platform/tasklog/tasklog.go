package tasklog

import (
	"context"
	"time"

	"riffraff/internal/platform/database"
)

// Failure is one background task that did not complete.
type Failure struct {
	ID       int64  `json:"id"`
	TaskID   string `json:"task_id"`
	TaskName string `json:"task_name"`
	Subject  string `json:"subject"`
	Error    string `json:"error"`
	FailedAt int64  `json:"failed_at"`
}

// Logger persists background task failures so they stay observable after
// the request that scheduled the task has returned.
type Logger struct {
	db *database.DB
}

func NewLogger(db *database.DB) *Logger {
	return &Logger{db: db}
}

func (l *Logger) Record(ctx context.Context, f Failure) error {
	if f.FailedAt == 0 {
		f.FailedAt = time.Now().Unix()
	}

	query := l.db.Dialect.Rebind(`
		INSERT INTO background_task_failures (task_id, task_name, subject, error, failed_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	_, err := l.db.ExecContext(ctx, query, f.TaskID, f.TaskName, f.Subject, f.Error, f.FailedAt)
	return err
}

// Recent returns the latest failures, newest first.
func (l *Logger) Recent(ctx context.Context, limit int) ([]Failure, error) {
	query := l.db.Dialect.Rebind(`
		SELECT id, task_id, task_name, COALESCE(subject, ''), error, failed_at
		FROM background_task_failures
		ORDER BY failed_at DESC, id DESC
		LIMIT ?
	`)

	rows, err := l.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var failures []Failure
	for rows.Next() {
		var f Failure
		if err := rows.Scan(&f.ID, &f.TaskID, &f.TaskName, &f.Subject, &f.Error, &f.FailedAt); err != nil {
			return nil, err
		}
		failures = append(failures, f)
	}
	return failures, rows.Err()
}
