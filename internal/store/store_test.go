package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/kangchainx/puredo/internal/task"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "tasks.db"))
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_ReopenSamePath(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "tasks.db")

	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	// Schema init is idempotent across reopens.
	s2, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open reopen error: %v", err)
	}
	defer s2.Close()
}

func TestInsertFetchRoundTrip(t *testing.T) {
	s := openTestStore(t)

	now := time.Now()
	tk := task.NewAt("buy milk", task.Red, now)
	if err := s.Insert(tk); err != nil {
		t.Fatalf("Insert error: %v", err)
	}

	tasks, err := s.FetchAll()
	if err != nil {
		t.Fatalf("FetchAll error: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("len = %d, want 1", len(tasks))
	}
	got := tasks[0]
	if got.ID != tk.ID {
		t.Errorf("id = %v, want %v", got.ID, tk.ID)
	}
	if got.Name != "buy milk" {
		t.Errorf("name = %q", got.Name)
	}
	if got.Priority != task.Red {
		t.Errorf("priority = %q", got.Priority)
	}
	if got.IsCompleted {
		t.Error("task should be pending")
	}
	if got.CompletedAt != nil {
		t.Error("completedAt should be nil")
	}
	if !got.CreatedAt.Equal(tk.CreatedAt) {
		t.Errorf("createdAt = %v, want %v", got.CreatedAt, tk.CreatedAt)
	}
}

func TestFetchAll_OrderedByCreatedAtDesc(t *testing.T) {
	s := openTestStore(t)

	base := time.Now()
	older := task.NewAt("older", task.Blue, base.Add(-time.Hour))
	newer := task.NewAt("newer", task.Blue, base)
	for _, tk := range []*task.Task{older, newer} {
		if err := s.Insert(tk); err != nil {
			t.Fatalf("Insert error: %v", err)
		}
	}

	tasks, err := s.FetchAll()
	if err != nil {
		t.Fatalf("FetchAll error: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("len = %d, want 2", len(tasks))
	}
	if tasks[0].Name != "newer" || tasks[1].Name != "older" {
		t.Errorf("order = [%s, %s], want [newer, older]", tasks[0].Name, tasks[1].Name)
	}
}

func TestUpdate_CompletionRoundTrip(t *testing.T) {
	s := openTestStore(t)

	tk := task.NewAt("call dentist", task.Yellow, time.Now())
	if err := s.Insert(tk); err != nil {
		t.Fatalf("Insert error: %v", err)
	}

	done := time.Now()
	tk.IsCompleted = true
	tk.CompletedAt = &done
	if err := s.Update(tk); err != nil {
		t.Fatalf("Update error: %v", err)
	}

	tasks, err := s.FetchAll()
	if err != nil {
		t.Fatalf("FetchAll error: %v", err)
	}
	got := tasks[0]
	if !got.IsCompleted {
		t.Error("task should be completed")
	}
	if got.CompletedAt == nil {
		t.Fatal("completedAt should be set")
	}

	// Flip back: completedAt must clear.
	tk.IsCompleted = false
	tk.CompletedAt = nil
	if err := s.Update(tk); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	tasks, err = s.FetchAll()
	if err != nil {
		t.Fatalf("FetchAll error: %v", err)
	}
	if tasks[0].IsCompleted || tasks[0].CompletedAt != nil {
		t.Error("completion state did not clear")
	}
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)

	tk := task.NewAt("gone", task.Blue, time.Now())
	if err := s.Insert(tk); err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if err := s.Delete(tk.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}

	tasks, err := s.FetchAll()
	if err != nil {
		t.Fatalf("FetchAll error: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("len = %d, want 0", len(tasks))
	}
}

func TestFetchAll_UnknownPriorityDecodesBlue(t *testing.T) {
	s := openTestStore(t)

	tk := task.NewAt("odd", task.Blue, time.Now())
	if err := s.Insert(tk); err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if _, err := s.db.Exec(`UPDATE tasks SET priority = 'green' WHERE id = ?`, tk.ID.String()); err != nil {
		t.Fatalf("raw update error: %v", err)
	}

	tasks, err := s.FetchAll()
	if err != nil {
		t.Fatalf("FetchAll error: %v", err)
	}
	if tasks[0].Priority != task.Blue {
		t.Errorf("priority = %q, want blue", tasks[0].Priority)
	}
}
