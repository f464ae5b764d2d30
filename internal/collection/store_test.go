package collection

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardforge-bot/internal/card"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cards.db")
	store, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

func sampleCard(number int64, title string) card.Card {
	return card.New(number, title, "A sample description.", "https://example/img.png", []card.StatEntry{
		{Category: "Type", Value: card.StringValue("Natural 🌿")},
		{Category: "Strength", Value: card.IntValue(40)},
		{Category: "Stamina", Value: card.IntValue(70)},
		{Category: "Agility", Value: card.IntValue(20)},
	})
}

func TestAddAndList(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	c := sampleCard(1, "Barkchu")
	require.NoError(t, store.Add(ctx, c))

	got, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, c.ID, got[0].ID)
	assert.Equal(t, c.DisplayNumber, got[0].DisplayNumber)
	assert.Equal(t, c.Title, got[0].Title)
	assert.Equal(t, c.Description, got[0].Description)
	assert.Equal(t, c.ImageRef, got[0].ImageRef)
	assert.Equal(t, c.Stats, got[0].Stats)
	assert.WithinDuration(t, c.CreatedAt, got[0].CreatedAt, time.Second)
}

func TestAddIsIdempotent(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	c := sampleCard(1, "Barkchu")
	require.NoError(t, store.Add(ctx, c))
	require.NoError(t, store.Add(ctx, c))

	got, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestContainsAndRemove(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	c := sampleCard(1, "Barkchu")
	require.NoError(t, store.Add(ctx, c))

	ok, err := store.Contains(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Remove(ctx, c.ID))

	ok, err = store.Contains(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	// Removing an absent card is not an error.
	require.NoError(t, store.Remove(ctx, c.ID))
}

func TestListOrdersByDisplayNumber(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	for _, n := range []int64{3, 1, 2} {
		require.NoError(t, store.Add(ctx, sampleCard(n, "Card")))
	}

	got, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(1), got[0].DisplayNumber)
	assert.Equal(t, int64(2), got[1].DisplayNumber)
	assert.Equal(t, int64(3), got[2].DisplayNumber)
}

func TestNextDisplayNumberIsMonotonic(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	for want := int64(1); want <= 5; want++ {
		n, err := store.NextDisplayNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}
}

func TestCounterSurvivesReopen(t *testing.T) {
	store, path := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := store.NextDisplayNumber(ctx)
		require.NoError(t, err)
	}
	c := sampleCard(3, "Barkchu")
	require.NoError(t, store.Add(ctx, c))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	// The counter never reuses a number, even after a restart.
	n, err := reopened.NextDisplayNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	got, err := reopened.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, c.ID, got[0].ID)
}
