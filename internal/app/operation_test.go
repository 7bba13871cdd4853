package app

import (
	"testing"
	"time"
)

func TestNewOperation(t *testing.T) {
	op := NewOperation("Index")

	if op.Name != "Index" {
		t.Errorf("Name = %q, want %q", op.Name, "Index")
	}
	if op.ID == "" {
		t.Error("ID is empty")
	}

	// The ID is the start time in compact UTC form.
	parsed, err := time.Parse("20060102T150405Z", op.ID)
	if err != nil {
		t.Fatalf("ID %q does not parse: %v", op.ID, err)
	}
	if parsed.Format("20060102T150405Z") != op.StartedAt.Format("20060102T150405Z") {
		t.Errorf("ID %q does not match StartedAt %v", op.ID, op.StartedAt)
	}
}
