package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"cardforge-bot/internal/card"
	"cardforge-bot/internal/forge"
	"cardforge-bot/internal/pending"
)

const cardCallbackPrefix = "card"

// forgeCard runs one full generation attempt for one photo, narrating
// progress by editing a status message in place. Pipeline failures are
// reported in-chat and never bubble up as handler errors.
func (h *Handler) forgeCard(ctx context.Context, chatID int64, userID int64, fileID string) error {
	statusID, err := h.tg.SendStatus(chatID, statusLine(forge.PhaseAnalyzing))
	if err != nil {
		return err
	}

	photo, _, err := h.tg.DownloadFile(ctx, fileID)
	if err != nil {
		h.logger.Error("photo download failed", "err", err)
		return h.tg.EditText(chatID, statusID, "❌ Couldn't download the photo. Send it again.")
	}

	onProgress := func(p forge.Progress) {
		if p.State == forge.StateWorking {
			_ = h.tg.EditText(chatID, statusID, statusLine(p.Phase))
		}
	}

	asm := h.forge.New(onProgress)
	c, err := asm.Generate(ctx, photo)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		h.logger.Error("card generation failed", "err", err)
		return h.tg.EditText(chatID, statusID,
			"❌ The forge failed while "+failedPhase(err)+". Nothing was saved. Send the photo again to retry.")
	}

	keyboard := cardKeyboard(userID, c.ID)
	if _, err := h.tg.SendPhotoDataURL(chatID, c.ImageRef, formatCaption(c), &keyboard); err != nil {
		h.logger.Error("card send failed", "err", err)
		return h.tg.EditText(chatID, statusID, "❌ The card was forged but could not be delivered. Send the photo again.")
	}
	h.tg.DeleteMessage(chatID, statusID)

	h.pending.Put(pending.Entry{Card: c, OwnerID: userID, ChatID: chatID})
	return nil
}

func (h *Handler) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) error {
	if q == nil || q.Message == nil {
		return nil
	}
	data := strings.TrimSpace(q.Data)
	if !strings.HasPrefix(data, cardCallbackPrefix+":") {
		return nil
	}

	// card:<ownerID>:<action>:<cardID>
	parts := strings.SplitN(data, ":", 4)
	if len(parts) != 4 {
		return nil
	}
	owner := parts[1]
	action := parts[2]
	cardID := parts[3]

	if owner != fmt.Sprintf("%d", q.From.ID) {
		return h.tg.AnswerCallback(q.ID, "This card belongs to someone else.", true)
	}

	entry, ok := h.pending.Take(cardID, q.From.ID)
	if !ok {
		return h.tg.AnswerCallback(q.ID, "This card is no longer pending.", false)
	}

	chatID := q.Message.Chat.ID
	msgID := q.Message.MessageID

	switch action {
	case "keep":
		if err := h.collection.Add(ctx, entry.Card); err != nil {
			h.logger.Error("collection add failed", "err", err)
			h.pending.Put(entry)
			return h.tg.AnswerCallback(q.ID, "Saving failed, try again.", true)
		}
		_ = h.tg.EditCaption(chatID, msgID, formatCaption(entry.Card)+"\n\n✅ Kept in your collection.")
		return h.tg.AnswerCallback(q.ID, fmt.Sprintf("Card #%d saved!", entry.Card.DisplayNumber), false)
	case "discard":
		_ = h.tg.EditCaption(chatID, msgID, formatCaption(entry.Card)+"\n\n🗑 Discarded.")
		return h.tg.AnswerCallback(q.ID, "Discarded.", false)
	default:
		h.pending.Put(entry)
		return nil
	}
}

func cardKeyboard(ownerID int64, cardID string) tgbotapi.InlineKeyboardMarkup {
	cb := func(action string) string {
		return fmt.Sprintf("%s:%d:%s:%s", cardCallbackPrefix, ownerID, action, cardID)
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("✅ Keep", cb("keep")),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Discard", cb("discard")),
		},
	)
}

func formatCaption(c card.Card) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🃏 #%d %s\n", c.DisplayNumber, c.Title))
	b.WriteString(c.Description + "\n\n")
	for _, s := range c.Stats {
		b.WriteString(fmt.Sprintf("%s: %s\n", s.Category, s.Value.Display()))
	}
	return strings.TrimRight(b.String(), "\n")
}

func statusLine(phase forge.Phase) string {
	return "🔥 Forging your card: " + string(phase) + "..."
}

// failedPhase pulls the phase label out of a typed forge error for the
// user-facing failure line.
func failedPhase(err error) string {
	var fe *forge.Error
	if errors.As(err, &fe) && fe.Phase != "" {
		return string(fe.Phase)
	}
	return "forging"
}
