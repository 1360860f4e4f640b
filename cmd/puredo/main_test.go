package main

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kangchainx/puredo/internal/task"
)

func TestResolveID_FullID(t *testing.T) {
	tk := task.New("x", task.Blue)

	got, err := resolveID([]*task.Task{tk}, tk.ID.String())
	if err != nil {
		t.Fatalf("resolveID error: %v", err)
	}
	if got != tk.ID {
		t.Errorf("id = %v, want %v", got, tk.ID)
	}
}

func TestResolveID_Prefix(t *testing.T) {
	tk := task.New("x", task.Blue)

	got, err := resolveID([]*task.Task{tk}, tk.ID.String()[:8])
	if err != nil {
		t.Fatalf("resolveID error: %v", err)
	}
	if got != tk.ID {
		t.Errorf("id = %v, want %v", got, tk.ID)
	}
}

func TestResolveID_NoMatch(t *testing.T) {
	if _, err := resolveID(nil, "deadbeef"); err == nil {
		t.Fatal("expected error for unknown id")
	}
}

func TestResolveID_Ambiguous(t *testing.T) {
	a := task.New("a", task.Blue)
	b := task.New("b", task.Blue)
	// Empty prefix matches everything.
	if _, err := resolveID([]*task.Task{a, b}, ""); err == nil {
		t.Fatal("expected error for ambiguous prefix")
	}
}

func TestRenderLine(t *testing.T) {
	tk := task.NewAt("Buy milk", task.Red, time.Now())

	line := renderLine(tk, false)
	if !strings.HasPrefix(line, "[ ] ") {
		t.Errorf("pending marker missing: %q", line)
	}
	if !strings.Contains(line, "Buy milk") || !strings.Contains(line, "red") {
		t.Errorf("line = %q", line)
	}

	done := time.Now()
	tk.IsCompleted = true
	tk.CompletedAt = &done
	if !strings.HasPrefix(renderLine(tk, false), "[x] ") {
		t.Error("completed marker missing")
	}
}

func TestRenderLine_Minimal(t *testing.T) {
	tk := task.NewAt("Buy milk", task.Yellow, time.Now())
	if got := renderLine(tk, true); got != "Buy milk" {
		t.Errorf("minimal line = %q, want name only", got)
	}
}

func TestShortID(t *testing.T) {
	id := uuid.New()
	short := shortID(id)
	if len(short) != 8 || !strings.HasPrefix(id.String(), short) {
		t.Errorf("shortID = %q for %v", short, id)
	}
}
