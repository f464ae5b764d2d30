package pending

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardforge-bot/internal/card"
)

func testEntry(ownerID int64) Entry {
	c := card.New(1, "Barkchu", "Birch tree.", "https://example/img.png", nil)
	return Entry{Card: c, OwnerID: ownerID, ChatID: 42}
}

func TestPutAndTake(t *testing.T) {
	store := NewStore(Options{})
	e := testEntry(7)
	store.Put(e)

	got, ok := store.Take(e.Card.ID, 7)
	require.True(t, ok)
	assert.Equal(t, e.Card.ID, got.Card.ID)
	assert.Equal(t, int64(42), got.ChatID)

	// Take removes the entry; a second claim finds nothing.
	_, ok = store.Take(e.Card.ID, 7)
	assert.False(t, ok)
}

func TestTakeRejectsWrongOwner(t *testing.T) {
	store := NewStore(Options{})
	e := testEntry(7)
	store.Put(e)

	_, ok := store.Take(e.Card.ID, 99)
	assert.False(t, ok)

	// The entry stays available to its real owner.
	_, ok = store.Take(e.Card.ID, 7)
	assert.True(t, ok)
}

func TestTakeUnknownCard(t *testing.T) {
	store := NewStore(Options{})
	_, ok := store.Take("nope", 7)
	assert.False(t, ok)
}

func TestExpiredEntriesArePruned(t *testing.T) {
	store := NewStore(Options{TTL: time.Minute})

	e := testEntry(7)
	e.CreatedAt = time.Now().Add(-2 * time.Minute)
	store.Put(e)

	_, ok := store.Take(e.Card.ID, 7)
	assert.False(t, ok)
}
