package repo

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kangchainx/puredo/internal/task"
)

var (
	// ErrEmptyName is returned when Add is called with a blank task name.
	ErrEmptyName = errors.New("task name is empty")
	// ErrNotFound is returned when an id does not match any loaded task.
	ErrNotFound = errors.New("task not found")
)

// TaskStore is the persistence boundary for tasks.
type TaskStore interface {
	Insert(t *task.Task) error
	Update(t *task.Task) error
	Delete(id uuid.UUID) error
	FetchAll() ([]*task.Task, error)
}

// SnapshotPublisher receives the full working set after every mutation.
type SnapshotPublisher interface {
	Publish(tasks []*task.Task)
}

// Repository owns the in-memory reflection of the task store and the
// filtered views the presentation surfaces render. Every mutation is
// committed to the store, then the working set is re-fetched wholesale
// and the widget snapshot republished. One mutex serializes mutations
// and reads, so a reload always reflects strictly-prior writes.
type Repository struct {
	store TaskStore
	pub   SnapshotPublisher

	mu    sync.Mutex
	tasks []*task.Task
	now   func() time.Time
}

func New(store TaskStore, pub SnapshotPublisher) *Repository {
	return &Repository{store: store, pub: pub, now: time.Now}
}

// LoadAll replaces the working set from the store. On fetch failure the
// set falls back to empty and an empty snapshot is still published, so
// the widget agrees with the blank list instead of holding stale data.
func (r *Repository) LoadAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reloadLocked()
}

func (r *Repository) reloadLocked() error {
	tasks, err := r.store.FetchAll()
	if err != nil {
		log.Printf("[repo] fetch tasks: %v", err)
		r.tasks = nil
		r.publishLocked()
		return fmt.Errorf("fetch tasks: %w", err)
	}
	r.tasks = tasks
	r.publishLocked()
	return nil
}

func (r *Repository) publishLocked() {
	if r.pub == nil {
		return
	}
	working := make([]*task.Task, len(r.tasks))
	copy(working, r.tasks)
	r.pub.Publish(working)
}

// Add creates a pending task dated today and persists it. The name is
// re-validated here even though the UI refuses blank names before calling.
func (r *Repository) Add(name string, p task.Priority) (*task.Task, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t := task.NewAt(name, p, r.now())
	if err := r.store.Insert(t); err != nil {
		insertErr := fmt.Errorf("insert task: %w", err)
		_ = r.reloadLocked()
		return nil, insertErr
	}
	if err := r.reloadLocked(); err != nil {
		return t, err
	}
	return t, nil
}

// ToggleComplete flips the completion state of the task with the given id.
// CompletedAt is set the instant the task becomes completed and cleared
// the instant it becomes pending again. On a store write failure the
// working set is reloaded so memory reverts to the store's truth rather
// than diverging until the next load.
func (r *Repository) ToggleComplete(id uuid.UUID) (*task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.findLocked(id)
	if cur == nil {
		return nil, ErrNotFound
	}

	updated := *cur
	updated.IsCompleted = !cur.IsCompleted
	if updated.IsCompleted {
		done := r.now()
		updated.CompletedAt = &done
	} else {
		updated.CompletedAt = nil
	}

	if err := r.store.Update(&updated); err != nil {
		updateErr := fmt.Errorf("update task: %w", err)
		_ = r.reloadLocked()
		return nil, updateErr
	}
	if err := r.reloadLocked(); err != nil {
		return &updated, err
	}
	return &updated, nil
}

// Delete removes the task unconditionally. There is no soft-delete; the
// id never reappears.
func (r *Repository) Delete(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findLocked(id) == nil {
		return ErrNotFound
	}
	if err := r.store.Delete(id); err != nil {
		deleteErr := fmt.Errorf("delete task: %w", err)
		_ = r.reloadLocked()
		return deleteErr
	}
	return r.reloadLocked()
}

func (r *Repository) findLocked(id uuid.UUID) *task.Task {
	for _, t := range r.tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// Tasks returns a copy of the current working set, newest first.
func (r *Repository) Tasks() []*task.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*task.Task, len(r.tasks))
	copy(out, r.tasks)
	return out
}

// FilteredView is the daily list: today's tasks, optionally narrowed by a
// case-insensitive substring match on the name, with pending tasks first
// (priority asc, createdAt desc) and completed tasks after (completedAt
// desc). Recomputed on every call; never cached.
func (r *Repository) FilteredView(searchText string) []*task.Task {
	r.mu.Lock()
	defer r.mu.Unlock()

	today := r.now()
	needle := strings.ToLower(searchText)

	var result []*task.Task
	for _, t := range r.tasks {
		if !t.DueOn(today) {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(t.Name), needle) {
			continue
		}
		result = append(result, t)
	}
	return orderForDisplay(result)
}

// DayGroup is one calendar day's tasks, ordered like the daily view.
type DayGroup struct {
	Day   time.Time
	Tasks []*task.Task
}

// HistoricalView groups every task by calendar day, newest day first.
func (r *Repository) HistoricalView() []DayGroup {
	r.mu.Lock()
	defer r.mu.Unlock()

	buckets := make(map[time.Time][]*task.Task)
	for _, t := range r.tasks {
		day := startOfDay(t.Date)
		buckets[day] = append(buckets[day], t)
	}

	days := make([]time.Time, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	groups := make([]DayGroup, 0, len(days))
	for _, day := range days {
		groups = append(groups, DayGroup{Day: day, Tasks: orderForDisplay(buckets[day])})
	}
	return groups
}

// TasksOn returns the tasks scheduled on the given calendar day, ordered
// like the daily view.
func (r *Repository) TasksOn(day time.Time) []*task.Task {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*task.Task
	for _, t := range r.tasks {
		if t.DueOn(day) {
			result = append(result, t)
		}
	}
	return orderForDisplay(result)
}

// orderForDisplay returns pending tasks (priority asc, createdAt desc)
// followed by completed tasks (completedAt desc, falling back to
// createdAt desc when a completedAt is missing).
func orderForDisplay(tasks []*task.Task) []*task.Task {
	var pending, completed []*task.Task
	for _, t := range tasks {
		if t.IsCompleted {
			completed = append(completed, t)
		} else {
			pending = append(pending, t)
		}
	}

	sort.SliceStable(pending, func(i, j int) bool {
		a, b := pending[i], pending[j]
		if a.Priority.SortOrder() != b.Priority.SortOrder() {
			return a.Priority.SortOrder() < b.Priority.SortOrder()
		}
		return a.CreatedAt.After(b.CreatedAt)
	})

	sort.SliceStable(completed, func(i, j int) bool {
		a, b := completed[i], completed[j]
		if a.CompletedAt != nil && b.CompletedAt != nil {
			return a.CompletedAt.After(*b.CompletedAt)
		}
		return a.CreatedAt.After(b.CreatedAt)
	})

	return append(pending, completed...)
}

func startOfDay(t time.Time) time.Time {
	local := t.Local()
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.Local)
}
