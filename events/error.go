package events

// Error is raised for a failure which does not end the run
type Error struct {
	Base
	Path string
	Err  error
}

func NewErrorEvent(executionId, path string, err error) *Error {
	return &Error{
		Base: newBase(executionId),
		Path: path,
		Err:  err,
	}
}
