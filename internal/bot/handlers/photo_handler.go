package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/plexybot/internal/conversation"
	"github.com/edgard/plexybot/internal/engine"
	"github.com/edgard/plexybot/internal/generative"
	"github.com/edgard/plexybot/internal/knowledge"
)

const (
	photoLookupTimeout = 30 * time.Second
	telegramFileURL    = "https://api.telegram.org/file/bot%s/%s"
)

// largestPhoto picks the size with the most pixels.
func largestPhoto(sizes []models.PhotoSize) (models.PhotoSize, bool) {
	if len(sizes) == 0 {
		return models.PhotoSize{}, false
	}
	best := sizes[0]
	for _, p := range sizes[1:] {
		if p.Width*p.Height > best.Width*best.Height {
			best = p
		}
	}
	return best, true
}

// photoRef resolves a Telegram file id to a download URL the model can read.
func photoRef(ctx context.Context, b *bot.Bot, token, fileID string) (generative.ImageRef, error) {
	if fileID == "" {
		return generative.ImageRef{}, fmt.Errorf("empty fileID provided")
	}
	lookupCtx, cancel := context.WithTimeout(ctx, photoLookupTimeout)
	defer cancel()
	file, err := b.GetFile(lookupCtx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return generative.ImageRef{}, fmt.Errorf("failed to get file: %w", err)
	}
	if file.FilePath == "" {
		return generative.ImageRef{}, fmt.Errorf("empty file path returned from Telegram")
	}
	return generative.ImageRef{URL: fmt.Sprintf(telegramFileURL, token, file.FilePath), Private: true}, nil
}

// handlePhoto recognizes the plant in a photo. Photos are analyzed in any
// state; a pending photo request is consumed.
func handlePhoto(ctx context.Context, b *bot.Bot, deps HandlerDeps, msg *models.Message) {
	log := deps.Logger.With("handler", "photo")
	chatID := msg.Chat.ID

	photo, _ := largestPhoto(msg.Photo)
	log.InfoContext(ctx, "Handling plant photo",
		"chat_id", chatID, "user_id", msg.From.ID, "width", photo.Width, "height", photo.Height)

	err := deps.Sessions.Do(ctx, msg.From.ID, func(ctx context.Context, sess *conversation.Session) error {
		if sess.State == conversation.AwaitingPlantImage {
			if err := sess.Apply(conversation.ReplyConsumed, ""); err != nil {
				return err
			}
		}

		processing, err := send(ctx, b, log, chatID, plainReply(deps.Config.Messages.PhotoProcessing, nil))
		if err != nil {
			log.WarnContext(ctx, "Failed to send processing message", "error", err, "chat_id", chatID)
		}

		stop := keepTyping(ctx, b, log, chatID)
		rec, err := recognize(ctx, b, deps, photo.FileID)
		stop()

		if err != nil {
			log.ErrorContext(ctx, "Failed to prepare photo", "error", err, "chat_id", chatID)
			failed := plainReply(deps.Config.Messages.PhotoError, nil)
			if processing != nil && edit(ctx, b, log, chatID, processing.ID, failed) == nil {
				return nil
			}
			respond(ctx, b, log, chatID, failed)
			return nil
		}

		if processing != nil {
			if _, err := b.DeleteMessage(ctx, &bot.DeleteMessageParams{ChatID: chatID, MessageID: processing.ID}); err != nil {
				log.WarnContext(ctx, "Failed to delete processing message", "error", err, "chat_id", chatID)
			}
		}

		var markup models.ReplyMarkup
		if rec.Recognized {
			sess.LastPlant = rec.Plant.Name
			markup = plantActionsKeyboard(rec.Plant.Name)
		}
		recordInteraction(ctx, deps, msg.From, knowledge.SectionPhoto, photoQuery(rec))
		respond(ctx, b, log, chatID, engineReply(rec.Reply, markup))
		return nil
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to process photo", "error", err, "chat_id", chatID, "user_id", msg.From.ID)
	}
}

func recognize(ctx context.Context, b *bot.Bot, deps HandlerDeps, fileID string) (engine.Recognition, error) {
	img, err := photoRef(ctx, b, deps.Config.Telegram.Token, fileID)
	if err != nil {
		return engine.Recognition{}, err
	}
	aiCtx, cancel := context.WithTimeout(ctx, aiProcessingTimeout)
	defer cancel()
	return deps.Engine.RecognizePlant(aiCtx, img), nil
}

func photoQuery(rec engine.Recognition) string {
	if rec.Recognized {
		return rec.Plant.Name
	}
	return ""
}
