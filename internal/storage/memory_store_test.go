package storage

import (
	"context"
	"testing"

	"clinic_queue/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T, clock *fakeClock) Store {
		return NewMemoryStore(WithClock(clock.Now))
	})
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	f := newFixture(t, func(t *testing.T, clock *fakeClock) Store {
		return NewMemoryStore(WithClock(clock.Now))
	})
	e := f.add(t, 0, models.PriorityNormal)

	e.Status = models.StatusCompleted
	got, err := f.store.GetEntry(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusWaiting, got.Status)
}
