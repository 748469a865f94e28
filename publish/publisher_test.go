package publish

import (
	"context"
	"testing"
	"time"

	"github.com/dsa-lake/data-lander/lander_error"
	"github.com/dsa-lake/data-lander/storage"
	"github.com/dsa-lake/data-lander/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	tests := []struct {
		prefix string
		name   string
		want   string
	}{
		{"global-full/2024-01-01/", "google-maps", "global-full/2024-01-01/google-maps.parquet"},
		{"global-full/2024-01-01", "Google Maps", "global-full/2024-01-01/google-maps.parquet"},
		{"/global-light/2024/01/01/", "sor-global-2024-01-01-light-00000", "global-light/2024/01/01/sor-global-2024-01-01-light-00000.parquet"},
		{"", "Discord Netherlands B.V.", "discord-netherlands-b-v.parquet"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Key(tt.prefix, tt.name))
		})
	}

	assert.Equal(t, "global-full/2024-01-01/google-maps/sor-global-2024-01-01-full-00001.parquet",
		SplitKey("global-full/2024-01-01/", "google-maps", "sor-global-2024-01-01-full-00001"))
}

type blockingStore struct{}

func (blockingStore) Identifier() string { return "blocking" }

func (blockingStore) Put(ctx context.Context, _, _ string, _ []byte) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestPublisher_Publish(t *testing.T) {
	store := storage.NewMemoryStore()
	p, err := NewPublisher(store, "lake")
	require.NoError(t, err)

	a := types.NewArtifact("facebook", "facebook", []byte("PAR1"), 3)
	res, err := p.Publish(context.Background(), "global-full/2024-01-01/facebook.parquet", a)
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Rows)
	assert.Equal(t, 4, res.Bytes)
	assert.Equal(t, "global-full/2024-01-01/facebook.parquet", res.Key)

	data, ok := store.Get("lake", "global-full/2024-01-01/facebook.parquet")
	require.True(t, ok)
	assert.Equal(t, []byte("PAR1"), data)
}

func TestPublisher_PublishFailure(t *testing.T) {
	store := storage.NewMemoryStore()
	store.FailOn("k", &storage.Error{Kind: lander_error.TransmissionLocation, StatusCode: 301, Code: "PermanentRedirect"})
	p, err := NewPublisher(store, "lake")
	require.NoError(t, err)

	_, err = p.Publish(context.Background(), "k", types.NewArtifact("x", "x", []byte("PAR1"), 1))
	require.Error(t, err)
	assert.True(t, lander_error.IsKind(err, lander_error.KindTransmission))

	var landerErr *lander_error.Error
	require.ErrorAs(t, err, &landerErr)
	assert.Equal(t, lander_error.TransmissionLocation, landerErr.Transmission)
	assert.Equal(t, "lake", landerErr.Bucket)
	assert.Contains(t, err.Error(), "REGION MISMATCH")
}

func TestPublisher_PublishTimeout(t *testing.T) {
	p, err := NewPublisher(blockingStore{}, "lake", WithPutTimeout(10*time.Millisecond))
	require.NoError(t, err)

	_, err = p.Publish(context.Background(), "k", types.NewArtifact("x", "x", []byte("PAR1"), 1))
	var landerErr *lander_error.Error
	require.ErrorAs(t, err, &landerErr)
	assert.Equal(t, lander_error.TransmissionTimeout, landerErr.Transmission)
}

func TestPublisher_PublishNil(t *testing.T) {
	p, err := NewPublisher(storage.NewMemoryStore(), "lake")
	require.NoError(t, err)
	_, err = p.Publish(context.Background(), "k", nil)
	assert.Error(t, err)
}
