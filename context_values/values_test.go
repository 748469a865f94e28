package context_values

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutionId(t *testing.T) {
	_, err := ExecutionIdFromContext(context.Background())
	assert.Error(t, err)

	id := NewExecutionId()
	_, err = uuid.Parse(id)
	require.NoError(t, err)

	got, err := ExecutionIdFromContext(WithExecutionId(context.Background(), id))
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestTempDir(t *testing.T) {
	_, ok := TempDirFromContext(context.Background())
	assert.False(t, ok)

	dir, ok := TempDirFromContext(WithTempDir(context.Background(), "/tmp/run"))
	assert.True(t, ok)
	assert.Equal(t, "/tmp/run", dir)
}
