package app

import "time"

// Operation identifies one CLI invocation. Every log line of a run carries
// its ID, so interleaved runs can be told apart in a shared log file.
type Operation struct {
	ID        string
	Name      string
	StartedAt time.Time
}

// NewOperation creates an Operation stamped with the current UTC time.
func NewOperation(name string) *Operation {
	now := time.Now().UTC()
	return &Operation{
		ID:        now.Format("20060102T150405Z"),
		Name:      name,
		StartedAt: now,
	}
}
