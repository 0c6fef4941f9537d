package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cvpro/pkg/adapters/memory"
	"github.com/aretw0/cvpro/pkg/core"
)

func TestBackend(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewBackend("")

	_, ok, err := backend.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, backend.Store(ctx, "blob"))
	data, ok, err := backend.Load(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "blob", data)
}

func TestBackend_Seed(t *testing.T) {
	backend := memory.NewBackend("cv").Seed(`{"summary":"seeded"}`)
	store, err := core.Open(context.Background(), backend, core.Config{})
	require.NoError(t, err)
	defer store.Close(context.Background())

	summary, _ := store.Get("summary")
	assert.Equal(t, "seeded", summary)
}
