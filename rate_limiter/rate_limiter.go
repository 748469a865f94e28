package rate_limiter

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Limiter throttles outbound requests by rate and by concurrency
type Limiter struct {
	Name string

	limiter *rate.Limiter
	sem     *semaphore.Weighted
	def     Definition
}

func NewLimiter(d *Definition) (*Limiter, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	res := &Limiter{
		Name: d.Name,
		def:  *d,
	}
	if d.FillRate > 0 {
		res.limiter = rate.NewLimiter(d.FillRate, int(d.BucketSize))
	}
	if d.MaxConcurrency > 0 {
		res.sem = semaphore.NewWeighted(d.MaxConcurrency)
	}
	return res, nil
}

func (l *Limiter) String() string {
	return fmt.Sprintf("%s: %s", l.Name, l.def.String())
}

// Acquire blocks until a request may be made and returns the function which must be
// called once the request has completed
func (l *Limiter) Acquire(ctx context.Context) (release func(), err error) {
	release = func() {}
	if l.sem != nil {
		if err := l.sem.Acquire(ctx, 1); err != nil {
			return nil, fmt.Errorf("error acquiring %s: %w", l.Name, err)
		}
		release = func() { l.sem.Release(1) }
	}
	if l.limiter != nil {
		if err := l.limiter.Wait(ctx); err != nil {
			release()
			return nil, fmt.Errorf("error waiting for %s: %w", l.Name, err)
		}
	}
	return release, nil
}
