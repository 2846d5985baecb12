package infrastructure

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTraceID(t *testing.T) {
	id := GenerateTraceID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	assert.NotEqual(t, id, GenerateTraceID())
}

func TestTraceIDRoundTrip(t *testing.T) {
	ctx := WithTraceID(context.Background(), "abc")
	assert.Equal(t, "abc", GetTraceID(ctx))

	assert.Empty(t, GetTraceID(context.Background()))
}

func TestEnsureTraceID(t *testing.T) {
	ctx := EnsureTraceID(context.Background())
	assert.NotEmpty(t, GetTraceID(ctx))

	// An existing trace ID is preserved.
	ctx2 := EnsureTraceID(ctx)
	assert.Equal(t, GetTraceID(ctx), GetTraceID(ctx2))
}

func TestContextWithTraceID(t *testing.T) {
	ctx := ContextWithTraceID(context.Background())
	_, err := uuid.Parse(GetTraceID(ctx))
	assert.NoError(t, err)
}
