// Package handlers routes Telegram updates into the card pipeline.
package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"cardforge-bot/internal/collection"
	"cardforge-bot/internal/forge"
	"cardforge-bot/internal/mediagroup"
	"cardforge-bot/internal/pending"
	"cardforge-bot/internal/telegram"
)

type Options struct {
	Telegram   *telegram.Client
	Forge      *forge.Factory
	Collection *collection.Store
	Pending    *pending.Store
	Logger     *slog.Logger

	// MaxBatch bounds how many album photos are forged concurrently.
	MaxBatch int
}

type Handler struct {
	tg         *telegram.Client
	forge      *forge.Factory
	collection *collection.Store
	pending    *pending.Store
	logger     *slog.Logger
	aggregator *mediagroup.Aggregator
	maxBatch   int
}

func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	maxBatch := opts.MaxBatch
	if maxBatch < 1 {
		maxBatch = 2
	}

	return &Handler{
		tg:         opts.Telegram,
		forge:      opts.Forge,
		collection: opts.Collection,
		pending:    opts.Pending,
		logger:     logger,
		maxBatch:   maxBatch,
	}
}

func (h *Handler) SetMediaGroupAggregator(ag *mediagroup.Aggregator) {
	h.aggregator = ag
}

func (h *Handler) HandleUpdate(ctx context.Context, update telegram.Update) error {
	if update.CallbackQuery != nil {
		return h.handleCallback(ctx, update.CallbackQuery)
	}

	if update.Message == nil {
		return nil
	}

	msg := update.Message
	chatID := msg.Chat.ID
	userID := msg.From.ID

	if msg.IsCommand() {
		return h.handleCommand(ctx, chatID, msg.Command())
	}

	if len(msg.Photo) > 0 {
		// The largest size is last in the slice.
		photo := msg.Photo[len(msg.Photo)-1]

		if msg.MediaGroupID != "" && h.aggregator != nil {
			h.aggregator.Add(mediagroup.Item{
				ChatID:       chatID,
				UserID:       userID,
				Username:     msg.From.UserName,
				MediaGroupID: msg.MediaGroupID,
				FileID:       photo.FileID,
			})
			return nil
		}

		return h.processPhotos(ctx, chatID, userID, []string{photo.FileID})
	}

	if msg.Text != "" {
		return h.tg.SendText(chatID, "Send me a photo and I'll forge a trading card out of it. /help for details.")
	}

	return nil
}

func (h *Handler) HandleMediaBatch(ctx context.Context, batch mediagroup.Batch) {
	if err := h.processPhotos(ctx, batch.ChatID, batch.UserID, batch.FileIDs); err != nil {
		h.logger.Error("media batch processing failed", "err", err)
	}
}

func (h *Handler) handleCommand(ctx context.Context, chatID int64, command string) error {
	switch command {
	case "start":
		return h.tg.SendText(chatID,
			"🃏 CardForge\n\n"+
				"Send me a photo of anything and I'll turn it into a collectible trading card: "+
				"the subject gets scanned, named, given stats, and painted.\n\n"+
				"Commands:\n"+
				"/start - this message\n"+
				"/help - how it works\n"+
				"/collection - cards you kept",
		)
	case "help":
		return h.tg.SendText(chatID,
			"🃏 How it works\n\n"+
				"1. Send a photo (albums work too, one card per photo).\n"+
				"2. I analyze the subject, invent a name, roll the stats, and generate the artwork.\n"+
				"3. Keep the card into your collection or discard it.\n\n"+
				"If a step fails, nothing is saved. Just send the photo again.",
		)
	case "collection":
		return h.sendCollection(ctx, chatID)
	default:
		return h.tg.SendText(chatID, "Unknown command. Try /help.")
	}
}

// processPhotos forges one card per photo. Each photo gets its own
// assembler, so album photos may run concurrently.
func (h *Handler) processPhotos(ctx context.Context, chatID int64, userID int64, fileIDs []string) error {
	h.tg.SendTyping(chatID)

	var eg errgroup.Group
	eg.SetLimit(h.maxBatch)
	for _, fileID := range fileIDs {
		fileID := fileID
		eg.Go(func() error {
			return h.forgeCard(ctx, chatID, userID, fileID)
		})
	}
	return eg.Wait()
}

func (h *Handler) sendCollection(ctx context.Context, chatID int64) error {
	cards, err := h.collection.List(ctx)
	if err != nil {
		h.logger.Error("collection list failed", "err", err)
		return h.tg.SendText(chatID, "❌ Couldn't read your collection. Try again.")
	}

	if len(cards) == 0 {
		return h.tg.SendText(chatID, "Your collection is empty. Send a photo to forge your first card!")
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("🗂 Your collection (%d):\n", len(cards)))
	for _, c := range cards {
		b.WriteString(fmt.Sprintf("#%d %s", c.DisplayNumber, c.Title))
		for _, s := range c.Stats {
			if s.Category == "Type" {
				b.WriteString(" · " + s.Value.Display())
				break
			}
		}
		b.WriteString("\n")
	}
	return h.tg.SendText(chatID, strings.TrimRight(b.String(), "\n"))
}
