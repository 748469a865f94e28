package observable

import (
	"context"
	"errors"
	"testing"

	"github.com/dsa-lake/data-lander/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_NotifyObservers(t *testing.T) {
	var d Dispatcher
	var got []string

	boom := errors.New("boom")
	require.NoError(t, d.AddObserver(ObserverFunc(func(context.Context, events.Event) error {
		got = append(got, "first")
		return boom
	})))
	require.NoError(t, d.AddObserver(ObserverFunc(func(context.Context, events.Event) error {
		panic("observer bug")
	})))
	require.NoError(t, d.AddObserver(ObserverFunc(func(context.Context, events.Event) error {
		got = append(got, "last")
		return nil
	})))
	assert.Equal(t, 3, d.ObserverCount())

	err := d.NotifyObservers(context.Background(), events.NewStartedEvent("exec", "sor-global-2024-01-01-full.zip", "consolidate"))

	// every observer is notified, in order, even when one fails or panics
	assert.Equal(t, []string{"first", "last"}, got)
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "observer bug")
}

func TestDispatcher_AddObserverDuringDelivery(t *testing.T) {
	var d Dispatcher
	var late int
	require.NoError(t, d.AddObserver(ObserverFunc(func(context.Context, events.Event) error {
		return d.AddObserver(ObserverFunc(func(context.Context, events.Event) error {
			late++
			return nil
		}))
	})))

	e := events.NewFileSkippedEvent("exec", "a.csv", "no matching rows")
	require.NoError(t, d.NotifyObservers(context.Background(), e))
	assert.Equal(t, 0, late)
	assert.Equal(t, 2, d.ObserverCount())

	require.NoError(t, d.NotifyObservers(context.Background(), e))
	assert.Equal(t, 1, late)
}

func TestDispatcher_NilObserver(t *testing.T) {
	var d Dispatcher
	assert.Error(t, d.AddObserver(nil))
	assert.Equal(t, 0, d.ObserverCount())
}

func TestOnly(t *testing.T) {
	var paths []string
	o := Only(func(_ context.Context, e *events.Error) error {
		paths = append(paths, e.Path)
		return nil
	})

	ctx := context.Background()
	require.NoError(t, o.Notify(ctx, events.NewErrorEvent("exec", "bad.csv", errors.New("missing column"))))
	require.NoError(t, o.Notify(ctx, events.NewFileSkippedEvent("exec", "empty.csv", "no matching rows")))
	assert.Equal(t, []string{"bad.csv"}, paths)
}

func TestEventBase(t *testing.T) {
	e := events.NewArtifactPublishedEvent("exec-1", "p/x.parquet", 3, 512)
	assert.Equal(t, "exec-1", e.Execution())
	assert.False(t, e.Time().IsZero())
}
