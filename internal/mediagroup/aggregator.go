// Package mediagroup collects the photos of a Telegram album, which
// arrive as separate updates, into one debounced batch. Each photo in a
// batch becomes its own card generation attempt.
package mediagroup

import (
	"fmt"
	"sync"
	"time"
)

type Item struct {
	ChatID       int64
	UserID       int64
	Username     string
	MediaGroupID string
	FileID       string
}

type Batch struct {
	ChatID   int64
	UserID   int64
	Username string
	FileIDs  []string
}

type Options struct {
	Debounce time.Duration
	OnFlush  func(Batch)
}

type Aggregator struct {
	mu       sync.Mutex
	debounce time.Duration
	onFlush  func(Batch)
	batches  map[string]*pendingBatch
}

type pendingBatch struct {
	batch Batch
	timer *time.Timer
}

func New(opts Options) *Aggregator {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 1200 * time.Millisecond
	}

	return &Aggregator{
		debounce: debounce,
		onFlush:  opts.OnFlush,
		batches:  make(map[string]*pendingBatch),
	}
}

func (a *Aggregator) Add(item Item) {
	if item.MediaGroupID == "" || item.FileID == "" {
		return
	}

	key := makeKey(item.ChatID, item.MediaGroupID)

	a.mu.Lock()
	defer a.mu.Unlock()

	pb, ok := a.batches[key]
	if !ok {
		pb = &pendingBatch{
			batch: Batch{
				ChatID:   item.ChatID,
				UserID:   item.UserID,
				Username: item.Username,
				FileIDs:  []string{item.FileID},
			},
		}
		a.batches[key] = pb
	} else {
		pb.batch.FileIDs = append(pb.batch.FileIDs, item.FileID)
	}

	if pb.timer != nil {
		pb.timer.Stop()
	}
	pb.timer = time.AfterFunc(a.debounce, func() {
		a.flush(key)
	})
}

func (a *Aggregator) flush(key string) {
	a.mu.Lock()
	pb, ok := a.batches[key]
	if !ok {
		a.mu.Unlock()
		return
	}
	delete(a.batches, key)
	batch := pb.batch
	onFlush := a.onFlush
	a.mu.Unlock()

	if onFlush != nil {
		onFlush(batch)
	}
}

func makeKey(chatID int64, mediaGroupID string) string {
	return fmt.Sprintf("%d:%s", chatID, mediaGroupID)
}
