package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/kangchainx/puredo/internal/task"
)

// Store persists tasks in a local sqlite database.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	s := &Store{db: db}
	if err := s.configure(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) configure() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return fmt.Errorf("sqlite pragma %q: %w", p, err)
		}
	}
	return nil
}

func (s *Store) initSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			date TEXT NOT NULL,
			priority TEXT NOT NULL DEFAULT 'blue',
			is_completed INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			completed_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_created ON tasks(created_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Insert(t *task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO tasks (id, name, date, priority, is_completed, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, t.ID.String(), t.Name, encodeTime(t.Date), string(t.Priority),
		boolToInt(t.IsCompleted), encodeTime(t.CreatedAt), encodeTimePtr(t.CompletedAt))
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// Update rewrites the mutable columns of an existing task. A missing row
// is not an error here; the repository resolves unknown ids before writing.
func (s *Store) Update(t *task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		UPDATE tasks SET is_completed = ?, completed_at = ? WHERE id = ?
	`, boolToInt(t.IsCompleted), encodeTimePtr(t.CompletedAt), t.ID.String())
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

func (s *Store) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// FetchAll returns every task ordered by creation time, newest first.
func (s *Store) FetchAll() ([]*task.Task, error) {
	rows, err := s.db.Query(`
		SELECT id, name, date, priority, is_completed, created_at, completed_at
		FROM tasks
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("fetch tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

func scanTask(rows *sql.Rows) (*task.Task, error) {
	var (
		id, name, date, priority, createdAt string
		completed                           int
		completedAt                         sql.NullString
	)
	if err := rows.Scan(&id, &name, &date, &priority, &completed, &createdAt, &completedAt); err != nil {
		return nil, fmt.Errorf("scan task: %w", err)
	}

	parsedID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse task id %q: %w", id, err)
	}
	parsedDate, err := decodeTime(date)
	if err != nil {
		return nil, fmt.Errorf("parse task date: %w", err)
	}
	parsedCreated, err := decodeTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse task created_at: %w", err)
	}

	t := &task.Task{
		ID:          parsedID,
		Name:        name,
		Date:        parsedDate,
		Priority:    task.ParsePriority(priority),
		IsCompleted: completed != 0,
		CreatedAt:   parsedCreated,
	}
	if completedAt.Valid && completedAt.String != "" {
		parsed, err := decodeTime(completedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse task completed_at: %w", err)
		}
		t.CompletedAt = &parsed
	}
	return t, nil
}

// Timestamps are stored as fixed-width UTC strings so lexical order in the
// index matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func encodeTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func encodeTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return encodeTime(*t)
}

func decodeTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.Local(), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
