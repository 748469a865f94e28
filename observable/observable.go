package observable

import (
	"context"

	"github.com/dsa-lake/data-lander/events"
)

// Observer receives the events raised during a run
type Observer interface {
	Notify(context.Context, events.Event) error
}

// ObserverFunc adapts a function to an Observer
type ObserverFunc func(context.Context, events.Event) error

func (f ObserverFunc) Notify(ctx context.Context, e events.Event) error {
	return f(ctx, e)
}

// Only adapts fn to an Observer which receives the events of type T and ignores the rest
func Only[T events.Event](fn func(context.Context, T) error) Observer {
	return ObserverFunc(func(ctx context.Context, e events.Event) error {
		if ev, ok := e.(T); ok {
			return fn(ctx, ev)
		}
		return nil
	})
}
