package snapshot

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kangchainx/puredo/internal/task"
)

// Key is the well-known key the snapshot blob is published under. The
// widget reader resolves the same key against the shared blob store.
const Key = "widget.task.snapshot"

// MaxItems caps how many pending tasks one snapshot carries.
const MaxItems = 8

// Item is the lightweight projection of one pending task. Field names are
// part of the wire contract with the widget surface.
type Item struct {
	ID               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	PriorityRawValue string    `json:"priorityRawValue"`
}

// Snapshot is the wire record consumed by the widget surface. It is
// regenerated wholesale on every publish, never patched.
type Snapshot struct {
	UpdatedAt time.Time `json:"updatedAt"`
	Tasks     []Item    `json:"tasks"`
}

// Build computes the snapshot for the given working set: pending tasks due
// on the current calendar day, ordered by priority then recency, capped at
// MaxItems.
func Build(tasks []*task.Task, now time.Time) Snapshot {
	var pending []*task.Task
	for _, t := range tasks {
		if !t.IsCompleted && t.DueOn(now) {
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

	if len(pending) > MaxItems {
		pending = pending[:MaxItems]
	}

	items := make([]Item, 0, len(pending))
	for _, t := range pending {
		items = append(items, Item{
			ID:               t.ID,
			Title:            t.Name,
			PriorityRawValue: string(t.Priority),
		})
	}
	return Snapshot{UpdatedAt: now, Tasks: items}
}

// Decode parses a published blob. Any failure yields an empty snapshot;
// the widget surface renders a blank list instead of an error.
func Decode(data []byte) Snapshot {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{Tasks: []Item{}}
	}
	if snap.Tasks == nil {
		snap.Tasks = []Item{}
	}
	return snap
}
