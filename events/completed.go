package events

import "time"

type Completed struct {
	Base
	Published int
	RowCount  int64
	Duration  time.Duration
	Err       error
}

func NewCompletedEvent(executionId string, published int, rowCount int64, duration time.Duration, err error) *Completed {
	return &Completed{
		Base:      newBase(executionId),
		Published: published,
		RowCount:  rowCount,
		Duration:  duration,
		Err:       err,
	}
}
