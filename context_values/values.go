package context_values

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/turbot/pipe-fittings/contexthelpers"
)

var (
	contextKeyExecutionId = contexthelpers.ContextKey("execution_id")
	contextKeyTempDir     = contexthelpers.ContextKey("temp_dir")
)

// NewExecutionId returns a new random execution id
func NewExecutionId() string {
	return uuid.New().String()
}

// WithExecutionId adds the execution id to the context
func WithExecutionId(ctx context.Context, executionId string) context.Context {
	return context.WithValue(ctx, contextKeyExecutionId, executionId)
}

// ExecutionIdFromContext returns the execution id from the context
func ExecutionIdFromContext(ctx context.Context) (string, error) {
	if ctx == nil {
		return "", fmt.Errorf("context is nil")
	}
	val, ok := ctx.Value(contextKeyExecutionId).(string)
	if !ok {
		return "", fmt.Errorf("no execution id in context")
	}
	return val, nil
}

// WithTempDir adds the run temp directory to the context
func WithTempDir(ctx context.Context, dir string) context.Context {
	return context.WithValue(ctx, contextKeyTempDir, dir)
}

// TempDirFromContext returns the run temp directory from the context
func TempDirFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	val, ok := ctx.Value(contextKeyTempDir).(string)
	return val, ok
}
