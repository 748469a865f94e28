package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dsa-lake/data-lander/lander_error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestRun(t *testing.T) {
	p := NewPool(2)

	v, err := Run(context.Background(), p, "a.csv", func() (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	boom := errors.New("boom")
	_, err = Run(context.Background(), p, "a.csv", func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
}

func TestRun_Panic(t *testing.T) {
	p := NewPool(1)

	_, err := Run(context.Background(), p, "a.csv", func() (string, error) {
		panic("corrupt input")
	})
	require.Error(t, err)
	assert.True(t, lander_error.IsKind(err, lander_error.KindTask))
	assert.ErrorIs(t, err, lander_error.ErrWorkerPanic)
	assert.Contains(t, err.Error(), "corrupt input")
	assert.Contains(t, err.Error(), "a.csv")

	// the slot is released after a panic
	v, err := Run(context.Background(), p, "b.csv", func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestRun_Cancelled(t *testing.T) {
	p := NewPool(1)
	ctx, cancel := context.WithCancel(context.Background())

	release := make(chan struct{})
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := Run(ctx, p, "slow.csv", func() (int, error) {
		<-release
		return 1, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	close(release)

	// a cancelled context never acquires a slot
	_, err = Run(ctx, p, "a.csv", func() (int, error) { return 1, nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_Bounded(t *testing.T) {
	p := NewPool(2)
	var running, peak atomic.Int32

	g := errgroup.Group{}
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			_, err := Run(context.Background(), p, "x", func() (struct{}, error) {
				n := running.Add(1)
				for {
					old := peak.Load()
					if n <= old || peak.CompareAndSwap(old, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				running.Add(-1)
				return struct{}{}, nil
			})
			return err
		})
	}
	require.NoError(t, g.Wait())
	assert.LessOrEqual(t, peak.Load(), int32(2))
}
