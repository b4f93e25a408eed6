package services

import (
	"context"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/ad/go-telegram-broadcast/internal/models"
	"github.com/ad/go-telegram-broadcast/internal/telegram"
)

// Broadcaster fans a finalized draft out to a recipient snapshot. Each
// recipient gets exactly one delivery attempt; failures are counted, never
// retried, and never abort the batch.
type Broadcaster struct {
	courier telegram.Courier
	workers int
	log     zerolog.Logger
}

func NewBroadcaster(courier telegram.Courier, workers int, log zerolog.Logger) *Broadcaster {
	if workers < 1 {
		workers = 1
	}
	return &Broadcaster{
		courier: courier,
		workers: workers,
		log:     log.With().Str("component", "broadcaster").Logger(),
	}
}

// Broadcast delivers draft to every ID in recipients and returns the tally.
// Invariant: tally.Successful + tally.Failed == len(recipients).
func (b *Broadcaster) Broadcast(ctx context.Context, draft models.Draft, recipients []int64) models.DeliveryTally {
	var tally models.DeliveryTally
	if len(recipients) == 0 {
		return tally
	}

	start := time.Now()
	b.log.Info().Int("total", len(recipients)).Str("media", string(draft.MediaKind)).Msg("broadcast started")

	workers := b.workers
	if workers > len(recipients) {
		workers = len(recipients)
	}

	jobs := make(chan int64)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for chatID := range jobs {
				err := b.sendOne(ctx, chatID, draft)

				mu.Lock()
				if err != nil {
					tally.Failed++
				} else {
					tally.Successful++
				}
				mu.Unlock()

				if err != nil {
					b.log.Debug().Int64("chat_id", chatID).Err(err).Msg("delivery failed")
				}
			}
		}()
	}

	for _, chatID := range recipients {
		jobs <- chatID
	}
	close(jobs)
	wg.Wait()

	event := b.log.Info()
	if tally.Failed > 0 {
		event = b.log.Warn()
	}
	event.
		Int("successful", tally.Successful).
		Int("failed", tally.Failed).
		Dur("duration", time.Since(start)).
		Msg("broadcast finished")

	return tally
}

func (b *Broadcaster) sendOne(ctx context.Context, chatID int64, draft models.Draft) error {
	switch draft.MediaKind {
	case models.MediaPhoto:
		_, err := b.courier.SendPhoto(ctx, &bot.SendPhotoParams{
			ChatID:          chatID,
			Photo:           &tgmodels.InputFileString{Data: draft.MediaFileID},
			Caption:         draft.Text,
			CaptionEntities: draft.Entities,
		})
		return err
	case models.MediaVideo:
		_, err := b.courier.SendVideo(ctx, &bot.SendVideoParams{
			ChatID:          chatID,
			Video:           &tgmodels.InputFileString{Data: draft.MediaFileID},
			Caption:         draft.Text,
			CaptionEntities: draft.Entities,
		})
		return err
	default:
		_, err := b.courier.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:   chatID,
			Text:     draft.Text,
			Entities: draft.Entities,
		})
		return err
	}
}
