package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dsa-lake/data-lander/lander_error"
	"github.com/dsa-lake/data-lander/rate_limiter"
	"github.com/dsa-lake/data-lander/storage"
	"github.com/dsa-lake/data-lander/types"
)

const (
	DefaultPutTimeout     = 5 * time.Minute
	DefaultMaxConcurrency = 4
)

// Result describes one published artifact
type Result struct {
	Key      string
	Source   string
	Rows     int64
	Bytes    int
	Duration time.Duration
}

type PublisherOption func(*Publisher)

// WithPutTimeout bounds each put; zero disables the timeout
func WithPutTimeout(timeout time.Duration) PublisherOption {
	return func(p *Publisher) {
		p.timeout = timeout
	}
}

func WithLimiter(limiter *rate_limiter.Limiter) PublisherOption {
	return func(p *Publisher) {
		p.limiter = limiter
	}
}

// Publisher writes artifacts to a bucket of a store
type Publisher struct {
	store   storage.Store
	bucket  string
	timeout time.Duration
	limiter *rate_limiter.Limiter
}

func NewPublisher(store storage.Store, bucket string, opts ...PublisherOption) (*Publisher, error) {
	limiter, err := rate_limiter.NewLimiter(&rate_limiter.Definition{
		Name:           "publish_limiter",
		MaxConcurrency: DefaultMaxConcurrency,
	})
	if err != nil {
		return nil, err
	}
	p := &Publisher{
		store:   store,
		bucket:  bucket,
		timeout: DefaultPutTimeout,
		limiter: limiter,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *Publisher) Bucket() string {
	return p.bucket
}

// Publish writes the artifact to key. Any storage failure is returned as a Transmission error.
func (p *Publisher) Publish(ctx context.Context, key string, a *types.Artifact) (*Result, error) {
	if a == nil {
		return nil, fmt.Errorf("no artifact to publish for key %s", key)
	}

	release, err := p.limiter.Acquire(ctx)
	if err != nil {
		return nil, lander_error.Transmission(p.bucket, key, storage.KindOf(err), err)
	}
	defer release()

	putCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		putCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	slog.Debug("publishing artifact", "backend", p.store.Identifier(), "bucket", p.bucket, "key", key, "bytes", a.Size())
	start := time.Now()
	if err := p.store.Put(putCtx, p.bucket, key, a.Data); err != nil {
		kind := storage.KindOf(err)
		if errors.Is(putCtx.Err(), context.DeadlineExceeded) {
			kind = lander_error.TransmissionTimeout
		}
		slog.Error("failed to publish artifact", "bucket", p.bucket, "key", key, "kind", kind, "hint", kind.Hint(p.bucket), "error", err)
		return nil, lander_error.Transmission(p.bucket, key, kind, err)
	}

	res := &Result{
		Key:      key,
		Source:   a.Source,
		Rows:     a.RowCount,
		Bytes:    a.Size(),
		Duration: time.Since(start),
	}
	slog.Info("published artifact", "bucket", p.bucket, "key", key, "rows", res.Rows, "bytes", res.Bytes, "duration", res.Duration)
	return res, nil
}
