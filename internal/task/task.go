package task

import (
	"time"

	"github.com/google/uuid"
)

// Priority is the urgency tag on a task. Lower sort order renders first.
type Priority string

const (
	Red    Priority = "red"
	Yellow Priority = "yellow"
	Blue   Priority = "blue"
)

// ParsePriority maps a raw stored value to a Priority. Unknown or empty
// values decode to Blue.
func ParsePriority(raw string) Priority {
	switch Priority(raw) {
	case Red, Yellow, Blue:
		return Priority(raw)
	default:
		return Blue
	}
}

func (p Priority) Valid() bool {
	switch p {
	case Red, Yellow, Blue:
		return true
	}
	return false
}

// SortOrder returns the display rank: red before yellow before blue.
func (p Priority) SortOrder() int {
	switch p {
	case Red:
		return 0
	case Yellow:
		return 1
	default:
		return 2
	}
}

// Color returns the fixed hex color for the priority tag.
func (p Priority) Color() string {
	switch p {
	case Red:
		return "#FF3B30"
	case Yellow:
		return "#FFCC00"
	default:
		return "#007AFF"
	}
}

func (p Priority) DisplayName() string {
	switch p {
	case Red:
		return "Red"
	case Yellow:
		return "Yellow"
	default:
		return "Blue"
	}
}

// Task is a single dated to-do item. ID, Date and CreatedAt are fixed at
// construction; only IsCompleted/CompletedAt change afterwards, and always
// together: CompletedAt is present exactly when IsCompleted is true.
type Task struct {
	ID          uuid.UUID
	Name        string
	Date        time.Time
	Priority    Priority
	IsCompleted bool
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// New constructs a pending task scheduled for today.
func New(name string, p Priority) *Task {
	return NewAt(name, p, time.Now())
}

// NewAt constructs a pending task with Date and CreatedAt pinned to now.
func NewAt(name string, p Priority, now time.Time) *Task {
	if !p.Valid() {
		p = Blue
	}
	return &Task{
		ID:        uuid.New(),
		Name:      name,
		Date:      now,
		Priority:  p,
		CreatedAt: now,
	}
}

// DueOn reports whether the task is scheduled on the same calendar day as
// the given time, in the local timezone.
func (t *Task) DueOn(day time.Time) bool {
	return SameDay(t.Date, day)
}

// SameDay reports whether two times fall on the same local calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}
