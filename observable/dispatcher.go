package observable

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/dsa-lake/data-lander/events"
	"github.com/turbot/go-kit/helpers"
)

// Dispatcher delivers events to its observers in the order they were added.
// It is embedded in the pipeline.
type Dispatcher struct {
	lock      sync.RWMutex
	observers []Observer
}

func (d *Dispatcher) AddObserver(o Observer) error {
	if o == nil {
		return errors.New("observer must not be nil")
	}
	d.lock.Lock()
	defer d.lock.Unlock()
	d.observers = append(d.observers, o)
	return nil
}

func (d *Dispatcher) ObserverCount() int {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return len(d.observers)
}

// NotifyObservers delivers e to every observer, including those after one which fails or panics.
// The lock is not held during delivery so an observer may add further observers; these
// receive the next event.
func (d *Dispatcher) NotifyObservers(ctx context.Context, e events.Event) error {
	d.lock.RLock()
	observers := slices.Clone(d.observers)
	d.lock.RUnlock()

	var errs []error
	for i, o := range observers {
		if err := deliver(ctx, o, e); err != nil {
			errs = append(errs, fmt.Errorf("observer %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

func deliver(ctx context.Context, o Observer, e events.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic handling %T: %w", e, helpers.ToError(r))
		}
	}()
	return o.Notify(ctx, e)
}
