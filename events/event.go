package events

import "time"

// Event is a progress notification raised during a run
type Event interface {
	// Execution returns the id of the run which raised the event
	Execution() string
	Time() time.Time
}

// Base carries the fields shared by every event
type Base struct {
	ExecutionId string
	Timestamp   time.Time
}

func newBase(executionId string) Base {
	return Base{ExecutionId: executionId, Timestamp: time.Now()}
}

func (b *Base) Execution() string {
	return b.ExecutionId
}

func (b *Base) Time() time.Time {
	return b.Timestamp
}
