package events

type Started struct {
	Base
	// Source is the URL or path of the archive being processed
	Source string
	Mode   string
}

func NewStartedEvent(executionId, source, mode string) *Started {
	return &Started{
		Base:   newBase(executionId),
		Source: source,
		Mode:   mode,
	}
}
