package shared

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceID(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))

	ctx := SetTraceID(context.Background())
	traceID := GetTraceID(ctx)
	require.NotEmpty(t, traceID)
	_, err := uuid.Parse(traceID)
	assert.NoError(t, err)

	other := GetTraceID(SetTraceID(context.Background()))
	assert.NotEqual(t, traceID, other)

	assert.Equal(t, "abc", GetTraceID(WithTraceID(context.Background(), "abc")))
}
