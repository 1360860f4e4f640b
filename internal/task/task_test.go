package task

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestParsePriority(t *testing.T) {
	cases := []struct {
		raw  string
		want Priority
	}{
		{"red", Red},
		{"yellow", Yellow},
		{"blue", Blue},
		{"", Blue},
		{"purple", Blue},
		{"RED", Blue},
	}
	for _, tc := range cases {
		if got := ParsePriority(tc.raw); got != tc.want {
			t.Errorf("ParsePriority(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestPrioritySortOrder(t *testing.T) {
	if Red.SortOrder() >= Yellow.SortOrder() || Yellow.SortOrder() >= Blue.SortOrder() {
		t.Errorf("sort order not red < yellow < blue: %d %d %d",
			Red.SortOrder(), Yellow.SortOrder(), Blue.SortOrder())
	}
}

func TestPriorityColor(t *testing.T) {
	if Red.Color() != "#FF3B30" {
		t.Errorf("red color = %q", Red.Color())
	}
	if Yellow.Color() != "#FFCC00" {
		t.Errorf("yellow color = %q", Yellow.Color())
	}
	if Blue.Color() != "#007AFF" {
		t.Errorf("blue color = %q", Blue.Color())
	}
}

func TestNewAt(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.Local)
	tk := NewAt("write report", Red, now)

	if tk.ID == uuid.Nil {
		t.Error("id not assigned")
	}
	if tk.Name != "write report" {
		t.Errorf("name = %q", tk.Name)
	}
	if !tk.Date.Equal(now) || !tk.CreatedAt.Equal(now) {
		t.Error("date/createdAt not pinned to now")
	}
	if tk.IsCompleted {
		t.Error("new task must be pending")
	}
	if tk.CompletedAt != nil {
		t.Error("new task must have no completedAt")
	}
}

func TestNewAt_InvalidPriorityDefaultsBlue(t *testing.T) {
	tk := NewAt("x", Priority("green"), time.Now())
	if tk.Priority != Blue {
		t.Errorf("priority = %q, want blue", tk.Priority)
	}
}

func TestSameDay(t *testing.T) {
	morning := time.Date(2026, 3, 14, 0, 0, 1, 0, time.Local)
	night := time.Date(2026, 3, 14, 23, 59, 59, 0, time.Local)
	nextDay := time.Date(2026, 3, 15, 0, 0, 0, 0, time.Local)

	if !SameDay(morning, night) {
		t.Error("same calendar day not detected")
	}
	if SameDay(night, nextDay) {
		t.Error("midnight boundary not respected")
	}
}

func TestDueOn(t *testing.T) {
	now := time.Now()
	tk := NewAt("today", Blue, now)
	if !tk.DueOn(now) {
		t.Error("task created now should be due today")
	}
	if tk.DueOn(now.AddDate(0, 0, 1)) {
		t.Error("task should not be due tomorrow")
	}
}
