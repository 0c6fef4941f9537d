package lifecycle_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cvpro/pkg/adapters/lifecycle"
	"github.com/aretw0/cvpro/pkg/adapters/memory"
	"github.com/aretw0/cvpro/pkg/core"
)

func TestSource(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := core.Open(ctx, memory.NewBackend(""), core.Config{})
	require.NoError(t, err)
	defer store.Close(context.Background())

	source := lifecycle.NewSource(store, 4)
	require.NoError(t, source.Start(ctx))

	store.Set("summary", "streamed")

	select {
	case e := <-source.Events():
		assert.Equal(t, "FIELD_CHANGED summary", e.String())
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for event")
	}

	cancel()
	select {
	case _, open := <-source.Events():
		assert.False(t, open, "channel closes after cancel")
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for close")
	}
}

func TestSource_DropsWhenFull(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := core.Open(ctx, memory.NewBackend(""), core.Config{})
	require.NoError(t, err)
	defer store.Close(context.Background())

	source := lifecycle.NewSource(store, 1)
	require.NoError(t, source.Start(ctx))

	// Nobody reads: one event parks in the forwarder, one in the buffer.
	for i := range 10 {
		store.Set("summary", i)
	}
	require.Eventually(t, func() bool { return source.Dropped() > 0 }, time.Second, 5*time.Millisecond)
}
